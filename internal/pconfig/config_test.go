package pconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/evaluate"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opt, weights, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, align.DefaultOptions(), opt)
	assert.Equal(t, evaluate.DefaultWeights(), weights)
}

func TestLoadOverlaysExplicitFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianoeval.toml")
	content := `
[alignment]
max_timing_deviation_ms = 250
allow_octave_errors = false

[accuracy]
octave_weight = 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opt, weights, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250.0, opt.MaxTimingDeviationMs)
	assert.False(t, opt.AllowOctaveErrors)
	// Unset fields keep the library defaults.
	assert.Equal(t, align.DefaultOptions().PitchWeight, opt.PitchWeight)
	assert.Equal(t, align.DefaultOptions().RelaxGraceNoteTiming, opt.RelaxGraceNoteTiming)

	assert.Equal(t, 0.1, weights.OctaveWeight)
	assert.Equal(t, evaluate.DefaultWeights().CorrectWeight, weights.CorrectWeight)
}

func TestLoadBoolFalseDoesNotClobberWhenUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianoeval.toml")
	require.NoError(t, os.WriteFile(path, []byte("[alignment]\npitch_weight = 0.9\n"), 0o644))

	opt, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, align.DefaultOptions().AllowOctaveErrors, opt.AllowOctaveErrors)
	assert.Equal(t, align.DefaultOptions().RelaxGraceNoteTiming, opt.RelaxGraceNoteTiming)
	assert.Equal(t, 0.9, opt.PitchWeight)
}

func TestLoadMalformedTOMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, _, err := Load(path)
	assert.Error(t, err)
}
