package progress

import "fmt"

// TakeFilterResult represents the result of filtering a single take.
type TakeFilterResult struct {
	Passed bool
	Reason string
}

// TakeFilter screens take summaries before they're folded into
// TakeSetStats, so a single corrupted or abandoned capture doesn't
// skew a practice session's aggregate numbers.
type TakeFilter struct {
	MinOverallScore float64
	MinNoteCount    int
	MaxMissedRatio  float64
}

// DefaultTakeFilter creates a filter with permissive defaults.
func DefaultTakeFilter() *TakeFilter {
	return &TakeFilter{
		MinOverallScore: 0,
		MinNoteCount:    1,
		MaxMissedRatio:  0.9,
	}
}

// StrictTakeFilter creates a filter that rejects low-effort takes.
func StrictTakeFilter() *TakeFilter {
	return &TakeFilter{
		MinOverallScore: 20,
		MinNoteCount:    4,
		MaxMissedRatio:  0.5,
	}
}

// Check reports whether a take summary passes the filter.
func (f *TakeFilter) Check(t TakeSummary) *TakeFilterResult {
	if t.NoteCount < f.MinNoteCount {
		return &TakeFilterResult{Passed: false, Reason: fmt.Sprintf("too few matched notes: %d (min: %d)", t.NoteCount, f.MinNoteCount)}
	}
	if t.OverallScore < f.MinOverallScore {
		return &TakeFilterResult{Passed: false, Reason: fmt.Sprintf("overall score %.1f below minimum %.1f", t.OverallScore, f.MinOverallScore)}
	}
	total := t.NoteCount + t.MissedCount
	if total > 0 {
		missedRatio := float64(t.MissedCount) / float64(total)
		if missedRatio > f.MaxMissedRatio {
			return &TakeFilterResult{Passed: false, Reason: fmt.Sprintf("missed ratio %.2f exceeds maximum %.2f", missedRatio, f.MaxMissedRatio)}
		}
	}
	return &TakeFilterResult{Passed: true}
}

// BatchFilterResult represents the result of filtering a batch of takes.
type BatchFilterResult struct {
	TotalProcessed int
	PassedCount    int
	FailedCount    int
	PassedTakes    []TakeSummary
	FailedIndices  []int
	FailReasons    map[int]string
}

// BatchFilter filters a batch of take summaries, keeping per-failure reasons.
func (f *TakeFilter) BatchFilter(takes []TakeSummary) *BatchFilterResult {
	result := &BatchFilterResult{
		PassedTakes:   make([]TakeSummary, 0, len(takes)),
		FailedIndices: make([]int, 0),
		FailReasons:   make(map[int]string),
	}

	for i, t := range takes {
		check := f.Check(t)
		if check.Passed {
			result.PassedTakes = append(result.PassedTakes, t)
		} else {
			result.FailedIndices = append(result.FailedIndices, i)
			result.FailReasons[i] = check.Reason
		}
	}

	result.TotalProcessed = len(takes)
	result.PassedCount = len(result.PassedTakes)
	result.FailedCount = len(result.FailedIndices)
	return result
}

// PassRate returns the proportion of takes that passed filtering.
func (r *BatchFilterResult) PassRate() float64 {
	if r.TotalProcessed == 0 {
		return 0.0
	}
	return float64(r.PassedCount) / float64(r.TotalProcessed)
}

func (r *BatchFilterResult) String() string {
	return fmt.Sprintf("BatchFilterResult { processed: %d, passed: %d (%.1f%%), failed: %d }",
		r.TotalProcessed, r.PassedCount, r.PassRate()*100, r.FailedCount)
}
