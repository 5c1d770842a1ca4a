// Package dirty tracks the set of blocks an operation stages or rewrites.
//
// The engine provides no durability of its own: a split dirties several
// blocks (leaf halves, parent index, sometimes a grandparent), and making
// those writes atomic across a crash belongs to the caller's transaction
// or journal layer. The tracker exposes exactly which block addresses an
// operation touched so that layer knows what to commit or discard.
package dirty

import "sort"

// defaultCapacity is the pre-allocated address capacity. A two-level split
// dirties at most a handful of blocks, so this avoids reallocation in every
// realistic workload.
const defaultCapacity = 8

// Tracker accumulates dirty block addresses.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	addrs []uint32
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{addrs: make([]uint32, 0, defaultCapacity)}
}

// Add records addr as dirtied. Duplicates are coalesced at read time.
func (t *Tracker) Add(addr uint32) {
	t.addrs = append(t.addrs, addr)
}

// Blocks returns the dirtied addresses, sorted and deduplicated. The
// returned slice is freshly allocated.
func (t *Tracker) Blocks() []uint32 {
	if len(t.addrs) == 0 {
		return nil
	}
	out := make([]uint32, len(t.addrs))
	copy(out, t.addrs)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// Len returns the number of recorded (possibly duplicated) dirty marks.
func (t *Tracker) Len() int { return len(t.addrs) }

// Reset clears the tracker for the next operation, keeping capacity.
func (t *Tracker) Reset() {
	t.addrs = t.addrs[:0]
}
