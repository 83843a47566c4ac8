// Package mysqlsource provides the MySQL dialect and driver registration
// for sqlsource, using the go-sql-driver/mysql driver.
package mysqlsource

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"

	rowcache "github.com/karupanerura/row-cache"
	"github.com/karupanerura/row-cache/source/sqlsource"
)

// Dialect is the MySQL identifier quoting and placeholder style.
var Dialect = sqlsource.Dialect{Quote: "`", Placeholder: "?"}

// Open opens a MySQL database, e.g. Open("user:pass@tcp(localhost:3306)/app").
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}

// New creates a MySQL-backed RowSource for a custom query.
func New[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db sqlsource.Querier, query string, scan sqlsource.ScanFunc[V]) (*sqlsource.RowSource[K, V], error) {
	return sqlsource.New[K, V](db, Dialect, query, scan)
}

// ForTable creates a MySQL-backed RowSource for a table whose key column is named "id".
func ForTable[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db sqlsource.Querier, table string, scan sqlsource.ScanFunc[V]) (*sqlsource.RowSource[K, V], error) {
	return sqlsource.ForTable[K, V](db, Dialect, table, scan)
}

// ForColumn creates a MySQL-backed RowSource for a table with the named key column.
func ForColumn[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db sqlsource.Querier, table, column string, scan sqlsource.ScanFunc[V]) (*sqlsource.RowSource[K, V], error) {
	return sqlsource.ForColumn[K, V](db, Dialect, table, column, scan)
}
