// Package httpserver provides a thin wrapper around net/http's Server with
// graceful shutdown on context cancellation or OS signals, functional
// options, env-based configuration, and probe handlers for health endpoints.
package httpserver
