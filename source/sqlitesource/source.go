// Package sqlitesource provides the SQLite dialect and driver registration
// for sqlsource, using the CGO-free modernc.org/sqlite driver.
package sqlitesource

import (
	"database/sql"

	_ "modernc.org/sqlite"

	rowcache "github.com/karupanerura/row-cache"
	"github.com/karupanerura/row-cache/source/sqlsource"
)

// Dialect is the SQLite identifier quoting and placeholder style.
var Dialect = sqlsource.Dialect{Quote: `"`, Placeholder: "?"}

// Open opens a SQLite database, e.g. Open("file:app.db") or Open(":memory:").
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite", dsn)
}

// New creates a SQLite-backed RowSource for a custom query.
func New[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db sqlsource.Querier, query string, scan sqlsource.ScanFunc[V]) (*sqlsource.RowSource[K, V], error) {
	return sqlsource.New[K, V](db, Dialect, query, scan)
}

// ForTable creates a SQLite-backed RowSource for a table whose key column is named "id".
func ForTable[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db sqlsource.Querier, table string, scan sqlsource.ScanFunc[V]) (*sqlsource.RowSource[K, V], error) {
	return sqlsource.ForTable[K, V](db, Dialect, table, scan)
}

// ForColumn creates a SQLite-backed RowSource for a table with the named key column.
func ForColumn[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db sqlsource.Querier, table, column string, scan sqlsource.ScanFunc[V]) (*sqlsource.RowSource[K, V], error) {
	return sqlsource.ForColumn[K, V](db, Dialect, table, column, scan)
}
