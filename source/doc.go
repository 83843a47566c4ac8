// Package source provides adapters and utilities for backing store sources
// of the row-cache library.
//
// This package contains adapters for implementing the RowSource interface:
// FunctionSource wraps a plain function, and LintSource wraps another source
// to validate that it honors the RowSource contract. SQL-backed sources live
// in the sqlsource subpackage and its per-database wrappers.
package source
