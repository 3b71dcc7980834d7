package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

func pairWithDev(measure int, devMs float64) notemodel.AlignedPair {
	return notemodel.AlignedPair{
		ScoreNote:   notemodel.ScoreNote{Measure: measure},
		TimingDevMs: devMs,
	}
}

func TestRhythmNoPairs(t *testing.T) {
	out := Rhythm(&notemodel.AlignmentResult{}, RhythmToleranceMs)
	assert.Equal(t, 0.0, out.Score)
	assert.NotEmpty(t, out.Issues)
}

func TestRhythmPerfect(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs: []notemodel.AlignedPair{pairWithDev(1, 0), pairWithDev(1, 0), pairWithDev(2, 0)},
	}
	out := Rhythm(result, RhythmToleranceMs)
	assert.Equal(t, 100.0, out.Score)
	assert.Equal(t, 100.0, out.OnTimePercent)
	assert.Equal(t, 0.0, out.StdDevMs)
	assert.Len(t, out.PerMeasureBreakdown, 2)
}

func TestRhythmRushBias(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs: []notemodel.AlignedPair{pairWithDev(1, -100), pairWithDev(1, -80)},
	}
	out := Rhythm(result, RhythmToleranceMs)
	assert.Greater(t, out.RushBias, 0.0)
	assert.Equal(t, 0.0, out.DragBias)
	assert.NotEmpty(t, out.Issues)
}

func TestRhythmDragBias(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs: []notemodel.AlignedPair{pairWithDev(1, 100), pairWithDev(1, 80)},
	}
	out := Rhythm(result, RhythmToleranceMs)
	assert.Greater(t, out.DragBias, 0.0)
	assert.Equal(t, 0.0, out.RushBias)
}

func TestRhythmOnTimeTolerance(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs: []notemodel.AlignedPair{pairWithDev(1, 10), pairWithDev(1, 300)},
	}
	out := Rhythm(result, 50.0)
	assert.Equal(t, 50.0, out.OnTimePercent)
}
