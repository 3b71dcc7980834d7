package notemodel

// PerformanceNote is a single captured keyboard event.
type PerformanceNote struct {
	ID          string  `json:"id"`
	Pitch       int     `json:"pitch"`
	Velocity    int     `json:"velocity"`
	StartTimeMs float64 `json:"start_time_ms"`
	DurationMs  float64 `json:"duration_ms"`
	StartTick   *int64  `json:"start_tick,omitempty"` // optional; nil when not estimated
}

// PitchClass returns pitch mod 12.
func (n PerformanceNote) PitchClass() int {
	return ((n.Pitch % 12) + 12) % 12
}

// PedalEvent is a single sustain/sostenuto/soft pedal transition.
type PedalEvent struct {
	TimeMs float64 `json:"time_ms"`
	Kind   string  `json:"kind"` // "sustain" | "sostenuto" | "soft"
	Value  int     `json:"value"` // 0-127
}

// Performance is an immutable, ordered collection of PerformanceNote
// captured during a take.
type Performance struct {
	Notes          []PerformanceNote
	Pedal          []PedalEvent
	CaptureStartMs float64
}

// NewPerformance validates and constructs a Performance, copying the
// supplied notes defensively.
func NewPerformance(notes []PerformanceNote, pedal []PedalEvent, captureStartMs float64) (*Performance, error) {
	notesCopy := make([]PerformanceNote, len(notes))
	copy(notesCopy, notes)

	seen := make(map[string]struct{}, len(notesCopy))
	prev := -1.0
	for i, n := range notesCopy {
		if i > 0 && n.StartTimeMs < prev {
			return nil, &NonMonotonicPerformanceError{Index: i, PrevTimeMs: prev, ThisTimeMs: n.StartTimeMs}
		}
		if n.Pitch < 0 || n.Pitch > 127 {
			return nil, &InvalidPitchError{NoteID: n.ID, Pitch: n.Pitch}
		}
		if _, dup := seen[n.ID]; dup {
			return nil, &DuplicateIDError{ID: n.ID}
		}
		seen[n.ID] = struct{}{}
		prev = n.StartTimeMs
	}

	pedalCopy := make([]PedalEvent, len(pedal))
	copy(pedalCopy, pedal)

	return &Performance{Notes: notesCopy, Pedal: pedalCopy, CaptureStartMs: captureStartMs}, nil
}

// Len returns the number of notes in the performance.
func (p *Performance) Len() int { return len(p.Notes) }

// Empty reports whether the performance contains no notes.
func (p *Performance) Empty() bool { return len(p.Notes) == 0 }

// NoteByID returns the note with the given id, or false if absent.
func (p *Performance) NoteByID(id string) (PerformanceNote, bool) {
	for _, n := range p.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return PerformanceNote{}, false
}
