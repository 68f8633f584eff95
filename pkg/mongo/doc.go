// Package mongo wraps mongo-driver client setup with startup retries and a
// health check closure. MongoDB backs the alternative document-based
// notification store.
package mongo
