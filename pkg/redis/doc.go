// Package redis wraps go-redis connection setup with startup retries and a
// health check closure. The service uses Redis to fan notification publishes
// out to sibling instances.
package redis
