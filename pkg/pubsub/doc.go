// Package pubsub provides best-effort fan-out of messages to logical
// destinations.
//
// Hub is the in-process implementation: subscribers attach to a destination
// string and receive every message published to it until they close or fall
// too far behind. RedisPublisher mirrors publishes onto Redis pub/sub
// channels for multi-instance deployments, and MultiPublisher combines
// backends with per-backend failure isolation.
//
// Destinations are plain strings chosen by the caller, for example
// "/notification/user@example.com". Nothing here is durable; persistent
// state belongs to the caller's storage layer.
package pubsub
