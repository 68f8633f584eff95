// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose migrations from an embedded filesystem, a health
// check closure, and error classification helpers for common SQLSTATE codes.
package pg
