package align

import (
	"math"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// Strategy is the capability interface implemented by DTW, GSA, and
// Hybrid. Every implementation is a pure function of its inputs and is
// safe to invoke concurrently on disjoint inputs.
type Strategy interface {
	Align(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error)
	Name() string
}

// degenerateResult builds the well-formed AlignmentResult mandated by
// spec.md §7 for the case where either side is empty: no error, every
// score note missed or every performance note extra, zero normalized
// score, and a +Inf total-cost sentinel.
func degenerateResult(score *notemodel.Score, performance *notemodel.Performance, algorithmName string) *notemodel.AlignmentResult {
	var scoreNotes []notemodel.ScoreNote
	if score != nil {
		scoreNotes = score.Notes
	}
	var perfNotes []notemodel.PerformanceNote
	if performance != nil {
		perfNotes = performance.Notes
	}

	missed := make([]notemodel.MissedNote, 0, len(scoreNotes))
	for _, n := range scoreNotes {
		missed = append(missed, notemodel.MissedNote{
			Expected: n,
			Reason:   missReasonForEmpty(n),
		})
	}
	extra := make([]notemodel.PerformanceNote, len(perfNotes))
	copy(extra, perfNotes)

	return &notemodel.AlignmentResult{
		Pairs:               nil,
		Missed:              missed,
		Extra:               extra,
		TotalCost:           math.Inf(1),
		NormalizedScore:     0,
		EstimatedTempoRatio: 1.0,
		AlgorithmName:       algorithmName,
	}
}

func missReasonForEmpty(n notemodel.ScoreNote) notemodel.MissReason {
	if n.IsGraceNote {
		return notemodel.OptionalOrnament
	}
	return notemodel.Skipped
}
