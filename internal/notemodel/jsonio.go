package notemodel

import "encoding/json"

// scoreDoc is the on-the-wire shape of a Score, per spec.md §6: pitch
// 0-127, ticks as non-negative integers, times in milliseconds as doubles.
type scoreDoc struct {
	Notes         []ScoreNote          `json:"notes"`
	PPQ           int                  `json:"ppq"`
	TempoMap      []TempoEvent         `json:"tempo_map"`
	TimeSigMap    []TimeSignatureEvent `json:"time_signature_map"`
	TotalMeasures int                  `json:"total_measures"`
}

// MarshalJSON encodes the Score per the documented interchange shape.
func (s *Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoreDoc{
		Notes:         s.Notes,
		PPQ:           s.PPQ,
		TempoMap:      s.TempoMap,
		TimeSigMap:    s.TimeSigMap,
		TotalMeasures: s.TotalMeasures,
	})
}

// UnmarshalScoreJSON parses and validates a Score document, running
// the same invariant checks as NewScore.
func UnmarshalScoreJSON(data []byte) (*Score, error) {
	var doc scoreDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return NewScore(doc.Notes, doc.PPQ, doc.TempoMap, doc.TimeSigMap, doc.TotalMeasures)
}

type performanceDoc struct {
	Notes          []PerformanceNote `json:"notes"`
	Pedal          []PedalEvent      `json:"pedal,omitempty"`
	CaptureStartMs float64           `json:"capture_start_ms"`
}

// MarshalJSON encodes the Performance per the documented interchange shape.
func (p *Performance) MarshalJSON() ([]byte, error) {
	return json.Marshal(performanceDoc{
		Notes:          p.Notes,
		Pedal:          p.Pedal,
		CaptureStartMs: p.CaptureStartMs,
	})
}

// UnmarshalPerformanceJSON parses and validates a Performance
// document, running the same invariant checks as NewPerformance.
func UnmarshalPerformanceJSON(data []byte) (*Performance, error) {
	var doc performanceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return NewPerformance(doc.Notes, doc.Pedal, doc.CaptureStartMs)
}
