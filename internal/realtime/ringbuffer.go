// Package realtime wraps the alignment engine for live input: a
// bounded ring buffer of ingested note events, a sliding window, and a
// periodic recompute trigger that emits RealTimeFeedback.
package realtime

import (
	"sync"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// RingBuffer is a fixed-capacity circular buffer of performance note
// events. Single-writer (note-ingestion callback), multi-reader
// (the recompute worker and any diagnostics) per spec.md §5.
type RingBuffer struct {
	mu       sync.RWMutex
	data     []notemodel.PerformanceNote
	capacity int
	head     int
	size     int
	full     bool
	dropped  int
}

// NewRingBuffer creates a ring buffer of fixed capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		data:     make([]notemodel.PerformanceNote, capacity),
		capacity: capacity,
	}
}

// Add inserts a note event, overwriting the oldest entry once full.
// O(1), never blocks, matching the <= 1ms ingestion latency target.
func (rb *RingBuffer) Add(note notemodel.PerformanceNote) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.data[rb.head] = note
	rb.head = (rb.head + 1) % rb.capacity
	if rb.full {
		rb.dropped++
	} else {
		rb.size++
		if rb.size == rb.capacity {
			rb.full = true
		}
	}
}

// Window returns a copy of the events with StartTimeMs >= sinceMs, in
// chronological order.
func (rb *RingBuffer) Window(sinceMs float64) []notemodel.PerformanceNote {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	all := rb.snapshotLocked()
	var windowed []notemodel.PerformanceNote
	for _, n := range all {
		if n.StartTimeMs >= sinceMs {
			windowed = append(windowed, n)
		}
	}
	return windowed
}

// All returns a copy of every retained event in chronological order.
func (rb *RingBuffer) All() []notemodel.PerformanceNote {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.snapshotLocked()
}

func (rb *RingBuffer) snapshotLocked() []notemodel.PerformanceNote {
	if rb.size == 0 {
		return nil
	}
	out := make([]notemodel.PerformanceNote, 0, rb.size)
	if !rb.full {
		out = append(out, rb.data[:rb.head]...)
	} else {
		out = append(out, rb.data[rb.head:]...)
		out = append(out, rb.data[:rb.head]...)
	}
	return out
}

// SetDuration patches the DurationMs of the named event in place, if
// it is still retained. Used by note-off reconciliation; a no-op if
// the note-on has already aged out of the buffer.
func (rb *RingBuffer) SetDuration(id string, durationMs float64) bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for i := range rb.data {
		if rb.data[i].ID == id {
			rb.data[i].DurationMs = durationMs
			return true
		}
	}
	return false
}

// Dropped returns the count of events overwritten because the buffer
// was full, whether or not they had been read, the tail-drop
// diagnostic signal from spec.md §7.
func (rb *RingBuffer) Dropped() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.dropped
}

// Size returns the current number of retained events.
func (rb *RingBuffer) Size() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}
