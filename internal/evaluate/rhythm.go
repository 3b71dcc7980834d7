package evaluate

import (
	"fmt"
	"math"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// RhythmResult is the Rhythm evaluator's output.
type RhythmResult struct {
	Score              float64
	MeanAbsTimingErrorMs float64
	StdDevMs           float64
	OnTimePercent      float64
	RushBias           float64 // positive = tends to rush (play early)
	DragBias           float64 // positive = tends to drag (play late)
	PerMeasureBreakdown []MeasureBreakdown
	Issues             []Issue
}

// RhythmToleranceMs is the default |timing_dev_ms| window counted as "on time".
const RhythmToleranceMs = 50.0

// Rhythm scores timing consistency across an AlignmentResult's pairs.
func Rhythm(result *notemodel.AlignmentResult, toleranceMs float64) *RhythmResult {
	out := &RhythmResult{}
	if len(result.Pairs) == 0 {
		out.Issues = append(out.Issues, Issue{Message: "no paired notes to evaluate rhythm"})
		return out
	}

	var sumAbs, sumSigned, onTime float64
	for _, p := range result.Pairs {
		sumAbs += math.Abs(p.TimingDevMs)
		sumSigned += p.TimingDevMs
		if math.Abs(p.TimingDevMs) <= toleranceMs {
			onTime++
		}
	}
	n := float64(len(result.Pairs))
	out.MeanAbsTimingErrorMs = sumAbs / n
	out.OnTimePercent = onTime / n * 100

	var variance float64
	meanSigned := sumSigned / n
	for _, p := range result.Pairs {
		d := p.TimingDevMs - meanSigned
		variance += d * d
	}
	out.StdDevMs = math.Sqrt(variance / n)

	if meanSigned < 0 {
		out.RushBias = -meanSigned
	} else {
		out.DragBias = meanSigned
	}

	out.Score = clamp01(1-out.MeanAbsTimingErrorMs/500) * 100

	byMeasure := make(map[int]*MeasureBreakdown)
	for _, p := range result.Pairs {
		measure := p.ScoreNote.Measure
		b, ok := byMeasure[measure]
		if !ok {
			b = &MeasureBreakdown{Measure: measure}
			byMeasure[measure] = b
		}
		if math.Abs(p.TimingDevMs) <= toleranceMs {
			b.Correct++
		} else {
			b.Wrong++
		}
	}
	for _, b := range byMeasure {
		out.PerMeasureBreakdown = append(out.PerMeasureBreakdown, *b)
	}
	sortBreakdownByMeasure(out.PerMeasureBreakdown)

	if out.RushBias > 20 {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("tends to rush by %.0f ms on average", out.RushBias)})
	}
	if out.DragBias > 20 {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("tends to drag by %.0f ms on average", out.DragBias)})
	}

	return out
}
