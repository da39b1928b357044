package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a transcript entry and determines how it renders.
type Kind string

const (
	// KindStatus is intermediate agent progress narration.
	KindStatus Kind = "status"
	// KindFinal is the terminal payload of a task.
	KindFinal Kind = "final"
	// KindError is a gateway-signaled application error.
	KindError Kind = "error"
)

// Entry is one displayed message derived from the event stream.
type Entry struct {
	// ID is generated locally, never derived from server data.
	ID string `json:"id"`
	// Content is the resolved human-readable text (Markdown).
	Content string `json:"content"`
	// Timestamp is the client-side receipt time.
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
}

// IDGenerator produces unique identifiers for entries and outbound
// messages. It is injected so tests can supply deterministic IDs.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// Transcript is an ordered, append-only list of entries. Entries are never
// mutated or removed after insertion; readers only ever see copies.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// Append adds an entry at the end of the transcript.
func (t *Transcript) Append(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Snapshot returns a copy of all entries in arrival order.
func (t *Transcript) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
