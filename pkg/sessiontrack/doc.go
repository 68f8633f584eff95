// Package sessiontrack tracks live real-time connections per user identity.
//
// Registry is a concurrent sessionID->identity map with a consistent
// snapshot for iteration. EventHandler translates transport connect and
// disconnect events into registry mutations. The package does no I/O and
// holds no lock across calls into other components.
package sessiontrack
