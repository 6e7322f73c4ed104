// -----------------------------------------------------------------------
// Session Registry - Per-session index resolution
// -----------------------------------------------------------------------

package sessions

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/vectorindex"
)

// DefaultSessionID is used when a request carries no session identifier
const DefaultSessionID = "default"

// Registry maps session identifiers to their active vector index. Sessions
// without an uploaded document resolve to the shared base index. The registry
// is the only mutable shared structure in the service; a RWMutex gives
// entry-level atomic replace. Indexes themselves are immutable, so a resolved
// index stays valid even if the session is replaced or reset mid-request.
//
// Entries are never evicted; a long-running process accumulates one index per
// session that uploaded a document.
type Registry struct {
	mu      sync.RWMutex
	base    *vectorindex.Index
	entries map[string]*vectorindex.Index
	logger  arbor.ILogger
}

// NewRegistry creates a registry backed by the given base index.
// The base index may be nil when no artifact could be loaded; sessions then
// resolve to nil until a document is uploaded.
func NewRegistry(base *vectorindex.Index, logger arbor.ILogger) *Registry {
	return &Registry{
		base:    base,
		entries: make(map[string]*vectorindex.Index),
		logger:  logger,
	}
}

// normalize maps an empty session id to the default session
func normalize(sessionID string) string {
	if sessionID == "" {
		return DefaultSessionID
	}
	return sessionID
}

// Resolve returns the session's active index, falling back to the base index
// when the session has no upload. Never errors; a nil result means no index
// is available at all.
func (r *Registry) Resolve(sessionID string) *vectorindex.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if idx, ok := r.entries[normalize(sessionID)]; ok {
		return idx
	}
	return r.base
}

// Set installs the index as the session's active index, replacing any
// previous upload for the session.
func (r *Registry) Set(sessionID string, idx *vectorindex.Index) {
	key := normalize(sessionID)

	r.mu.Lock()
	_, replaced := r.entries[key]
	r.entries[key] = idx
	r.mu.Unlock()

	r.logger.Info().
		Str("session_id", key).
		Int("chunks", idx.Len()).
		Bool("replaced", replaced).
		Msg("Session index installed")
}

// Reset drops the session's upload so it resolves to the base index again.
// Resetting a session that never uploaded is a no-op.
func (r *Registry) Reset(sessionID string) {
	key := normalize(sessionID)

	r.mu.Lock()
	_, existed := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()

	r.logger.Info().
		Str("session_id", key).
		Bool("existed", existed).
		Msg("Session reset to base index")
}

// Base returns the shared base index; nil when no artifact was loaded
func (r *Registry) Base() *vectorindex.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.base
}

// SessionCount returns the number of sessions holding an uploaded index
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
