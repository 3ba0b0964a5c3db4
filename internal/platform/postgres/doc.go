// Package postgres provides PostgreSQL implementations of the sandbox
// storage interfaces defined in internal/store, plus connection setup and
// embedded goose migrations. The server uses it when a database URL is
// configured and falls back to the in-memory stores otherwise.
package postgres
