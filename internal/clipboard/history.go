package clipboard

import "sync"

// DefaultCapacity is the number of entries the agent keeps.
const DefaultCapacity = 5

// History is a bounded, most-recent-first list of clipboard contents.
// Adjacent entries are never equal. Safe for one writer and many readers.
type History struct {
	mu       sync.Mutex
	entries  []string
	capacity int
}

// NewHistory creates a History holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		entries:  make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Push stores entry at the front unless it equals the current head.
// It reports whether the history changed.
func (h *History) Push(entry string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) > 0 && h.entries[0] == entry {
		return false
	}

	if len(h.entries) < h.capacity {
		h.entries = append(h.entries, "")
	}
	// shift right, dropping the oldest entry when full
	copy(h.entries[1:], h.entries[:len(h.entries)-1])
	h.entries[0] = entry
	return true
}

// Head returns the most recent entry.
func (h *History) Head() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[0], true
}

// Snapshot returns a copy of the entries, newest first.
func (h *History) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Capacity returns the maximum number of entries.
func (h *History) Capacity() int {
	return h.capacity
}
