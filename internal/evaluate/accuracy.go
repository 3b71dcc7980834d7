// Package evaluate implements the note-accuracy, rhythm, and tempo
// evaluators described in spec.md §4.5. Each is a pure function of an
// AlignmentResult; none re-runs alignment.
package evaluate

import (
	"fmt"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// Grade is a letter-grade classification of a NoteAccuracy score.
type Grade int

const (
	GradeF Grade = iota
	GradeD
	GradeC
	GradeB
	GradeA
)

func (g Grade) String() string {
	switch g {
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	case GradeD:
		return "D"
	default:
		return "F"
	}
}

func gradeFromScore(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// AccuracyWeights controls how the correctness ratios combine into an
// overall NoteAccuracy score. The three presets mirror the teacher's
// quality-filter preset pair, extended with a lenient third tier.
type AccuracyWeights struct {
	CorrectWeight      float64
	OctaveWeight       float64
	MissedPenalty      float64
	ExtraPenalty       float64
}

// DefaultWeights is the balanced preset.
func DefaultWeights() AccuracyWeights {
	return AccuracyWeights{CorrectWeight: 1.0, OctaveWeight: 0.5, MissedPenalty: 1.0, ExtraPenalty: 0.3}
}

// StrictWeights penalizes octave errors and extras more heavily.
func StrictWeights() AccuracyWeights {
	return AccuracyWeights{CorrectWeight: 1.0, OctaveWeight: 0.2, MissedPenalty: 1.2, ExtraPenalty: 0.6}
}

// LenientWeights is forgiving of octave errors and extras, for beginner feedback.
func LenientWeights() AccuracyWeights {
	return AccuracyWeights{CorrectWeight: 1.0, OctaveWeight: 0.8, MissedPenalty: 0.6, ExtraPenalty: 0.1}
}

// Issue is a single human-readable observation attached to an
// evaluator result.
type Issue struct {
	Measure int
	Message string
}

// MeasureBreakdown summarizes one measure's contribution to a metric.
type MeasureBreakdown struct {
	Measure int
	Correct int
	Wrong   int
	Missed  int
	Extra   int
}

// NoteAccuracyResult is the NoteAccuracy evaluator's output.
type NoteAccuracyResult struct {
	Score             float64
	Grade             Grade
	TotalExpected     int
	Correct           int
	Wrong             int
	Missed            int
	Extra             int
	OctaveErrors      int
	PerMeasureBreakdown []MeasureBreakdown
	Issues            []Issue
}

// NoteAccuracy scores an AlignmentResult for pitch correctness per
// spec.md §4.5. It never errors: an empty result yields a zeroed
// score with an explanatory issue.
func NoteAccuracy(result *notemodel.AlignmentResult, weights AccuracyWeights) *NoteAccuracyResult {
	out := &NoteAccuracyResult{
		TotalExpected: result.PairCount() + len(result.Missed),
		Missed:        len(result.Missed),
		Extra:         len(result.Extra),
	}

	byMeasure := make(map[int]*MeasureBreakdown)
	get := func(measure int) *MeasureBreakdown {
		if b, ok := byMeasure[measure]; ok {
			return b
		}
		b := &MeasureBreakdown{Measure: measure}
		byMeasure[measure] = b
		return b
	}

	for _, p := range result.Pairs {
		b := get(p.ScoreNote.Measure)
		switch {
		case p.IsExactPitchMatch():
			out.Correct++
			b.Correct++
		case p.IsOctaveError():
			out.OctaveErrors++
			b.Wrong++
		default:
			out.Wrong++
			b.Wrong++
		}
	}
	for _, miss := range result.Missed {
		get(miss.Expected.Measure).Missed++
	}

	if out.TotalExpected == 0 {
		out.Issues = append(out.Issues, Issue{Message: "no expected notes to evaluate"})
		return out
	}

	total := float64(out.TotalExpected)
	raw := weights.CorrectWeight*float64(out.Correct) +
		weights.OctaveWeight*float64(out.OctaveErrors) -
		weights.MissedPenalty*float64(out.Missed) -
		weights.ExtraPenalty*float64(out.Extra)
	out.Score = clamp01(raw/total) * 100
	out.Grade = gradeFromScore(out.Score)

	for measure, b := range byMeasure {
		out.PerMeasureBreakdown = append(out.PerMeasureBreakdown, *b)
		_ = measure
	}
	sortBreakdownByMeasure(out.PerMeasureBreakdown)

	if out.Missed > 0 {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("%d note(s) missed", out.Missed)})
	}
	if out.OctaveErrors > 0 {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("%d octave substitution(s)", out.OctaveErrors)})
	}
	if out.Extra > 0 {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("%d extra note(s) played", out.Extra)})
	}

	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func sortBreakdownByMeasure(b []MeasureBreakdown) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j].Measure < b[j-1].Measure; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
}
