// Package presence keeps the in-process record of which user holds which
// live realtime connection.
package presence

import (
	"sort"
	"sync"
)

// Handle is a delivery target for one open connection.
type Handle interface {
	ID() string
	Send(payload []byte) error
	Close(reason string)
}

type Entry struct {
	UserID string
	Handle Handle
}

// Registry maps user ids to their current handle. The most recent Register
// for a user wins. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Handle)}
}

// Register stores h for userID and returns the handle it replaced, or nil
// when there was none or it was h itself.
func (r *Registry) Register(userID string, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.entries[userID]
	r.entries[userID] = h
	if !ok || prev.ID() == h.ID() {
		return nil
	}
	return prev
}

// Unregister removes the entry for userID; no-op if absent.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.entries, userID)
	r.mu.Unlock()
}

// Release removes the entry only while it still points at h, so a stale
// connection closing late cannot evict its replacement. It reports whether
// an entry was removed.
func (r *Registry) Release(userID string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[userID]
	if !ok || cur.ID() != h.ID() {
		return false
	}
	delete(r.entries, userID)
	return true
}

func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.entries[userID]
	return h, ok
}

// Snapshot returns the online user ids in sorted order.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Entries copies the current mapping for fan-out outside the lock.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for id, h := range r.entries {
		out = append(out, Entry{UserID: id, Handle: h})
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
