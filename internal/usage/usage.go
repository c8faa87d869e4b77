// Package usage tracks how often each catalog entry has been activated.
// Counts feed the matcher's MRU bonus. The daemon is the single writer;
// readers during a search may observe a stale count.
package usage

// Reader provides read-only access to usage counts for the matcher.
type Reader interface {
	// Count returns the recorded activation count for the entry name,
	// or 0 when the entry has never been activated.
	Count(name string) uint32
}

// MemReader is a map-backed Reader for tests and engine callers that do
// not need persistence.
type MemReader map[string]uint32

// Count implements Reader.
func (m MemReader) Count(name string) uint32 {
	return m[name]
}
