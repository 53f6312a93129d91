// Package postgres provides PostgreSQL-specific implementations of the
// storage interfaces defined in the internal/store package. It handles query
// execution, mapping between domain entities and rows, translation of
// PostgreSQL error codes into store errors, and the embedded goose schema
// migrations.
package postgres
