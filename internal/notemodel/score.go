package notemodel

import "sort"

// RhythmicValue names the notated duration of a score note (quarter,
// eighth, dotted-eighth, ...). It is opaque to the alignment engine and
// carried through purely for feedback/reporting purposes.
type RhythmicValue string

// ScoreNote is a single note from the ground-truth score.
//
// Aria-style invariant: pitch_class = pitch mod 12. Within a Score,
// start_ticks and start_time_ms are monotone with notes in insertion
// order grouped by onset.
type ScoreNote struct {
	ID            string        `json:"id"`
	Pitch         int           `json:"pitch"` // 0-127
	Velocity      int           `json:"velocity"` // 0-127
	StartTick     int64         `json:"start_tick"`
	DurationTicks int64         `json:"duration_ticks"`
	StartTimeMs   float64       `json:"start_time_ms"`
	DurationMs    float64       `json:"duration_ms"`
	Measure       int           `json:"measure"`
	Beat          float64       `json:"beat"`
	Voice         int           `json:"voice"` // 0 = unassigned
	IsGraceNote   bool          `json:"is_grace_note"`
	RhythmicValue RhythmicValue `json:"rhythmic_value,omitempty"`
}

// PitchClass returns pitch mod 12.
func (n ScoreNote) PitchClass() int {
	return ((n.Pitch % 12) + 12) % 12
}

// TempoEvent maps a tick to a tempo in microseconds per quarter note.
type TempoEvent struct {
	Tick          int64 `json:"tick"`
	MicrosPerBeat int64 `json:"micros_per_beat"`
}

// TimeSignatureEvent maps a tick to a time signature.
type TimeSignatureEvent struct {
	Tick        int64 `json:"tick"`
	Numerator   int   `json:"numerator"`
	Denominator int   `json:"denominator"`
}

// Score is an immutable, ordered collection of ScoreNote plus the
// timing metadata needed to translate ticks to wall-clock time.
type Score struct {
	Notes          []ScoreNote
	PPQ            int
	TempoMap       []TempoEvent // sorted ascending by Tick
	TimeSigMap     []TimeSignatureEvent
	TotalMeasures  int
}

// NewScore validates and constructs a Score, copying the supplied notes
// defensively so the caller cannot mutate the result afterward.
func NewScore(notes []ScoreNote, ppq int, tempoMap []TempoEvent, timeSigMap []TimeSignatureEvent, totalMeasures int) (*Score, error) {
	if len(notes) == 0 {
		return nil, &EmptyScoreError{}
	}
	if ppq <= 0 {
		return nil, &InvalidPPQError{PPQ: ppq}
	}

	seen := make(map[string]struct{}, len(notes))
	notesCopy := make([]ScoreNote, len(notes))
	copy(notesCopy, notes)
	for _, n := range notesCopy {
		if n.StartTick < 0 {
			return nil, &NegativeTickError{NoteID: n.ID, Tick: n.StartTick}
		}
		if n.DurationTicks <= 0 {
			return nil, &NonPositiveDurationError{NoteID: n.ID, Duration: float64(n.DurationTicks)}
		}
		if n.DurationMs <= 0 {
			return nil, &NonPositiveDurationError{NoteID: n.ID, Duration: n.DurationMs}
		}
		if n.Pitch < 0 || n.Pitch > 127 {
			return nil, &InvalidPitchError{NoteID: n.ID, Pitch: n.Pitch}
		}
		if _, dup := seen[n.ID]; dup {
			return nil, &DuplicateIDError{ID: n.ID}
		}
		seen[n.ID] = struct{}{}
	}

	tempoCopy := make([]TempoEvent, len(tempoMap))
	copy(tempoCopy, tempoMap)
	sort.Slice(tempoCopy, func(i, j int) bool { return tempoCopy[i].Tick < tempoCopy[j].Tick })
	if len(tempoCopy) == 0 {
		tempoCopy = []TempoEvent{{Tick: 0, MicrosPerBeat: 500000}} // 120 BPM default
	}

	sigCopy := make([]TimeSignatureEvent, len(timeSigMap))
	copy(sigCopy, timeSigMap)
	sort.Slice(sigCopy, func(i, j int) bool { return sigCopy[i].Tick < sigCopy[j].Tick })

	return &Score{
		Notes:         notesCopy,
		PPQ:           ppq,
		TempoMap:      tempoCopy,
		TimeSigMap:    sigCopy,
		TotalMeasures: totalMeasures,
	}, nil
}

// TempoAt returns the microseconds-per-quarter-note tempo in effect at
// the given tick. Defined for every tick, including before the first
// tempo event (which falls back to that event's tempo).
func (s *Score) TempoAt(tick int64) int64 {
	active := s.TempoMap[0].MicrosPerBeat
	for _, ev := range s.TempoMap {
		if ev.Tick > tick {
			break
		}
		active = ev.MicrosPerBeat
	}
	return active
}

// Len returns the number of notes in the score.
func (s *Score) Len() int { return len(s.Notes) }

// MaxVoice returns the highest explicit voice number assigned in the
// score, or 0 if no note carries an explicit voice assignment.
func (s *Score) MaxVoice() int {
	max := 0
	for _, n := range s.Notes {
		if n.Voice > max {
			max = n.Voice
		}
	}
	return max
}
