// Package sqlsource provides a database/sql backed RowSource performing
// parameterized single-key point lookups.
//
// A source is configured once with a query template holding exactly one key
// placeholder. Malformed configuration (a query without the placeholder, an
// identifier containing the quote character) is rejected at construction
// time, never at lookup time. Database drivers are registered by the
// per-database wrapper packages sqlitesource, postgressource, and
// mysqlsource, which also carry the matching Dialect values.
package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	rowcache "github.com/karupanerura/row-cache"
)

var (
	// ErrMissingPlaceholder is returned when a custom query lacks the
	// dialect's key placeholder.
	ErrMissingPlaceholder = errors.New("sqlsource: query has no key placeholder")

	// ErrInvalidIdentifier is returned when a table or column name contains
	// the dialect's identifier quote character.
	ErrInvalidIdentifier = errors.New("sqlsource: identifier contains the quote character")
)

// Dialect describes how a database quotes identifiers and binds the key
// parameter.
type Dialect struct {
	// Quote is the character used to quote identifiers (table and column names).
	Quote string

	// Placeholder is the bind placeholder for the key parameter.
	Placeholder string
}

// Querier is the subset of *sql.DB that the source needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ScanFunc decodes the current row of the result set into a value.
type ScanFunc[V rowcache.ValueConstraint] func(*sql.Rows) (V, error)

// RowSource is a rowcache.RowSource that performs the configured point lookup
// against a SQL database.
type RowSource[K rowcache.KeyConstraint, V rowcache.ValueConstraint] struct {
	db    Querier
	query string
	scan  ScanFunc[V]
}

var _ rowcache.RowSource[uint8, struct{}] = (*RowSource[uint8, struct{}])(nil)

// New creates a RowSource for a custom query.
// The query must contain the dialect's key placeholder exactly where the key
// binds, e.g. `SELECT * FROM users WHERE id = ?` for SQLite/MySQL or
// `SELECT * FROM users WHERE id = $1` for PostgreSQL.
func New[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db Querier, dialect Dialect, query string, scan ScanFunc[V]) (*RowSource[K, V], error) {
	if !strings.Contains(query, dialect.Placeholder) {
		return nil, fmt.Errorf("%w: %q", ErrMissingPlaceholder, query)
	}
	return &RowSource[K, V]{db: db, query: query, scan: scan}, nil
}

// ForTable creates a RowSource for a table whose key column is named "id".
func ForTable[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db Querier, dialect Dialect, table string, scan ScanFunc[V]) (*RowSource[K, V], error) {
	return ForColumn[K, V](db, dialect, table, "id", scan)
}

// ForColumn creates a RowSource for a table with the named key column.
// It generates a `SELECT * FROM {table} WHERE {column} = {placeholder}` query
// with identifiers quoted for the dialect.
func ForColumn[K rowcache.KeyConstraint, V rowcache.ValueConstraint](db Querier, dialect Dialect, table, column string, scan ScanFunc[V]) (*RowSource[K, V], error) {
	if strings.Contains(table, dialect.Quote) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	if strings.Contains(column, dialect.Quote) {
		return nil, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column)
	}

	q := dialect.Quote
	query := fmt.Sprintf("SELECT * FROM %s%s%s WHERE %s%s%s = %s", q, table, q, q, column, q, dialect.Placeholder)
	return New[K, V](db, dialect, query, scan)
}

// Get performs the point lookup for the given key.
// It returns nil as the Entry when the query matches no row. Only the first
// row of the result set is read; a query matching more than one row violates
// the point lookup contract and the extra rows are not consumed.
func (s *RowSource[K, V]) Get(ctx context.Context, key K) (*rowcache.Entry[K, V], error) {
	rows, err := s.db.QueryContext(ctx, s.query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	value, err := s.scan(rows)
	if err != nil {
		return nil, err
	}
	return &rowcache.Entry[K, V]{Key: key, Value: value}, nil
}
