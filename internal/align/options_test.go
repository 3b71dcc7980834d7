package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opt := DefaultOptions()
	assert.Equal(t, 500.0, opt.MaxTimingDeviationMs)
	assert.Equal(t, 0.6, opt.PitchWeight)
	assert.Equal(t, 0.3, opt.TimingWeight)
	assert.Equal(t, 0.1, opt.VelocityWeight)
	assert.Equal(t, 1.0, opt.GapPenalty)
	assert.True(t, opt.AllowTempoFlexibility)
	assert.Equal(t, Global, opt.Mode)
}

func TestStrictOptions(t *testing.T) {
	opt := StrictOptions()
	assert.Equal(t, 100.0, opt.MaxTimingDeviationMs)
	assert.False(t, opt.AllowOctaveErrors)
	assert.Equal(t, 1.5, opt.GapPenalty)
}

func TestBeginnerOptions(t *testing.T) {
	opt := BeginnerOptions()
	assert.Equal(t, 1000.0, opt.MaxTimingDeviationMs)
	assert.Equal(t, 0.5, opt.GapPenalty)
	assert.Equal(t, 0.1, opt.WrongOctavePenalty)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "global", Global.String())
	assert.Equal(t, "local", Local.String())
	assert.Equal(t, "semi-global", SemiGlobal.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
