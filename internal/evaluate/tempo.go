package evaluate

import (
	"fmt"
	"math"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// DriftDirection classifies how tempo moved across a performance.
type DriftDirection int

const (
	DriftNone DriftDirection = iota
	DriftSpeedingUp
	DriftSlowingDown
)

func (d DriftDirection) String() string {
	switch d {
	case DriftSpeedingUp:
		return "speeding up"
	case DriftSlowingDown:
		return "slowing down"
	default:
		return "stable"
	}
}

// TempoResult is the Tempo evaluator's output.
type TempoResult struct {
	Score           float64
	DetectedBPM     float64
	ExpectedBPM     float64
	TempoDeviation  float64 // ratio, 1.0 = exact
	TempoStability  float64 // [0,1], 1 = perfectly steady
	DriftDirection  DriftDirection
	Issues          []Issue
}

// Tempo scores tempo accuracy and stability from an AlignmentResult's
// estimated ratio and the per-pair interval sequence.
func Tempo(result *notemodel.AlignmentResult, score *notemodel.Score) *TempoResult {
	out := &TempoResult{TempoDeviation: result.EstimatedTempoRatio}
	if len(result.Pairs) < 2 {
		out.Issues = append(out.Issues, Issue{Message: "not enough paired notes to evaluate tempo"})
		out.TempoStability = 1.0
		return out
	}

	expectedMicros := score.TempoAt(result.Pairs[0].ScoreNote.StartTick)
	out.ExpectedBPM = microsPerBeatToBPM(expectedMicros)
	if result.EstimatedTempoRatio > 0 {
		out.DetectedBPM = out.ExpectedBPM / result.EstimatedTempoRatio
	}

	ratios := make([]float64, 0, len(result.Pairs)-1)
	for i := 1; i < len(result.Pairs); i++ {
		scoreInterval := result.Pairs[i].ScoreNote.StartTimeMs - result.Pairs[i-1].ScoreNote.StartTimeMs
		if scoreInterval <= 10 {
			continue
		}
		perfInterval := result.Pairs[i].PerformanceNote.StartTimeMs - result.Pairs[i-1].PerformanceNote.StartTimeMs
		ratios = append(ratios, perfInterval/scoreInterval)
	}
	if len(ratios) < 2 {
		out.TempoStability = 1.0
	} else {
		var mean float64
		for _, r := range ratios {
			mean += r
		}
		mean /= float64(len(ratios))
		var variance float64
		for _, r := range ratios {
			d := r - mean
			variance += d * d
		}
		variance /= float64(len(ratios))
		stdDev := math.Sqrt(variance)
		out.TempoStability = clamp01(1 - stdDev)

		firstHalf, secondHalf := splitMean(ratios)
		const driftThreshold = 0.03
		switch {
		case secondHalf-firstHalf > driftThreshold:
			out.DriftDirection = DriftSlowingDown
		case firstHalf-secondHalf > driftThreshold:
			out.DriftDirection = DriftSpeedingUp
		default:
			out.DriftDirection = DriftNone
		}
	}

	deviationFromIdeal := math.Abs(out.TempoDeviation - 1.0)
	out.Score = clamp01(1-deviationFromIdeal) * out.TempoStability * 100

	if deviationFromIdeal > 0.15 {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("overall tempo is %.0f%% off target", deviationFromIdeal*100)})
	}
	if out.DriftDirection != DriftNone {
		out.Issues = append(out.Issues, Issue{Message: fmt.Sprintf("tempo is %s over the course of the performance", out.DriftDirection)})
	}

	return out
}

func microsPerBeatToBPM(microsPerBeat int64) float64 {
	if microsPerBeat <= 0 {
		return 0
	}
	return 60_000_000.0 / float64(microsPerBeat)
}

func splitMean(ratios []float64) (first, second float64) {
	mid := len(ratios) / 2
	if mid == 0 {
		return ratios[0], ratios[0]
	}
	var sumFirst, sumSecond float64
	for i, r := range ratios {
		if i < mid {
			sumFirst += r
		} else {
			sumSecond += r
		}
	}
	return sumFirst / float64(mid), sumSecond / float64(len(ratios)-mid)
}
