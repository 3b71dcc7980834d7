package align

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

func TestDtwPitchCostExactMatch(t *testing.T) {
	opt := DefaultOptions()
	assert.Equal(t, 0.0, dtwPitchCost(60, 60, opt))
}

func TestDtwPitchCostOctaveEquivalent(t *testing.T) {
	opt := DefaultOptions()
	cost := dtwPitchCost(60, 72, opt)
	assert.Equal(t, opt.WrongOctavePenalty*opt.PitchWeight, cost)
}

func TestDtwPitchCostFarApart(t *testing.T) {
	opt := DefaultOptions()
	cost := dtwPitchCost(60, 80, opt)
	assert.Greater(t, cost, 0.0)
	assert.LessOrEqual(t, cost, opt.PitchWeight)
}

func TestDtwTimingCostSaturates(t *testing.T) {
	opt := DefaultOptions()
	cost := dtwTimingCost(opt.MaxTimingDeviationMs*10, false, opt)
	assert.Equal(t, opt.TimingWeight, cost)
}

func TestDtwTimingCostGraceNoteRelaxed(t *testing.T) {
	opt := DefaultOptions()
	full := dtwTimingCost(100, false, opt)
	relaxed := dtwTimingCost(100, true, opt)
	assert.Less(t, relaxed, full)
}

func TestDtwVelocityCost(t *testing.T) {
	opt := DefaultOptions()
	assert.Equal(t, 0.0, dtwVelocityCost(80, 80, opt))
	assert.Greater(t, dtwVelocityCost(0, 127, opt), 0.0)
}

func TestDtwMatchCostExactMatch(t *testing.T) {
	opt := DefaultOptions()
	s := notemodel.ScoreNote{Pitch: 60, Velocity: 80, StartTimeMs: 0}
	p := notemodel.PerformanceNote{Pitch: 60, Velocity: 80, StartTimeMs: 0}
	assert.Equal(t, 0.0, dtwMatchCost(s, p, opt))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(2))
	assert.Equal(t, 0.5, clamp01(0.5))
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 3.0, abs(-3))
	assert.Equal(t, 3.0, abs(3))
}
