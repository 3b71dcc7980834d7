package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

func TestDegenerateResultBothNilDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		degenerateResult(nil, nil, "test")
	})

	r := degenerateResult(nil, nil, "test")
	assert.Empty(t, r.Pairs)
	assert.Empty(t, r.Missed)
	assert.Empty(t, r.Extra)
	assert.True(t, math.IsInf(r.TotalCost, 1))
	assert.Equal(t, 0.0, r.NormalizedScore)
	assert.Equal(t, 1.0, r.EstimatedTempoRatio)
}

func TestDegenerateResultNilScoreWithPerformance(t *testing.T) {
	perf := mustPerformance(t, []notemodel.PerformanceNote{{ID: "p1", Pitch: 60, StartTimeMs: 0}})
	r := degenerateResult(nil, perf, "test")
	assert.Empty(t, r.Missed)
	assert.Len(t, r.Extra, 1)
}

func TestDegenerateResultNilPerformanceWithScore(t *testing.T) {
	score := mustScore(t, []notemodel.ScoreNote{{ID: "n1", Pitch: 60, StartTick: 0, DurationTicks: 480, DurationMs: 500}})
	r := degenerateResult(score, nil, "test")
	assert.Len(t, r.Missed, 1)
	assert.Empty(t, r.Extra)
}

func TestDTWAlignNilArgumentsDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := NewDTW().Align(nil, nil, DefaultOptions())
		require.NoError(t, err)
	})
}

func TestGSAAlignNilArgumentsDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := NewGSA().Align(nil, nil, DefaultOptions())
		require.NoError(t, err)
	})
}

func TestHybridAlignNilArgumentsDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := NewHybrid().Align(nil, nil, DefaultOptions())
		require.NoError(t, err)
	})
}
