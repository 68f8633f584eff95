package sessiontrack

import (
	"maps"
	"sync"
)

// Registry maps live connection session IDs to the user identity (email)
// that opened them. It is the only structure in the service mutated from the
// connection lifecycle path and read from the dispatch path, so every method
// is safe for concurrent use.
//
// State is purely in-memory and lives as long as the process: after a
// restart every client is considered disconnected until it reconnects.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]string // sessionID -> user identity
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]string),
	}
}

// Register records a session for the given identity. Registering the same
// session ID again overwrites the prior mapping; a session never changes
// identity in place, it is replaced.
func (r *Registry) Register(sessionID, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = identity
}

// Unregister removes the mapping for the session ID. Unregistering an
// unknown session is a no-op, not an error.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
}

// Snapshot returns a point-in-time copy of the sessionID->identity mapping.
// The copy is safe to iterate while writers continue on the registry.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.sessions))
	maps.Copy(out, r.sessions)
	return out
}

// CountSessionsFor returns the number of live sessions registered for the
// identity. The count is read fresh on every call; sessions come and go
// concurrently, so callers must not cache it beyond a single decision.
func (r *Registry) CountSessionsFor(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, id := range r.sessions {
		if id == identity {
			count++
		}
	}
	return count
}

// Len returns the total number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
