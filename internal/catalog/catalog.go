// Package catalog holds the searchable universe of launchable targets.
// A discovery collaborator produces snapshots; the engine only ever reads
// them. Snapshots are replaced wholesale, never mutated in place.
package catalog

import (
	"sync/atomic"

	"github.com/runger/beacon/internal/result"
)

// Entry is a single launchable target. Entries are immutable once produced.
type Entry struct {
	Name        string      `json:"name"`
	Target      string      `json:"target"` // opaque launch identifier: path or URI
	Description string      `json:"description"`
	Kind        result.Kind `json:"kind"` // KindApp or KindFile only
}

// Snapshot is an ordered, read-only collection of entries. Order is not
// semantically significant beyond stable tie-breaking in the matcher.
type Snapshot struct {
	Entries []Entry
}

// NewSnapshot wraps entries in a Snapshot. The caller must not retain or
// mutate the slice afterwards.
func NewSnapshot(entries []Entry) *Snapshot {
	return &Snapshot{Entries: entries}
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Holder publishes catalog snapshots to concurrent readers. There is a
// single writer (the discovery task); a search in flight during a swap
// observes either the old or the new snapshot in full, never a torn mix.
type Holder struct {
	snap atomic.Pointer[Snapshot]
}

// NewHolder returns a Holder primed with an empty snapshot so readers
// never observe nil.
func NewHolder() *Holder {
	h := &Holder{}
	h.snap.Store(NewSnapshot(nil))
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Snapshot {
	return h.snap.Load()
}

// Replace atomically swaps in a new snapshot.
func (h *Holder) Replace(s *Snapshot) {
	if s == nil {
		s = NewSnapshot(nil)
	}
	h.snap.Store(s)
}
