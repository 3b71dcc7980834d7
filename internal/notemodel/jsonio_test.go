package notemodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreJSONRoundTrip(t *testing.T) {
	score, err := NewScore(validScoreNotes(), 480, []TempoEvent{{Tick: 0, MicrosPerBeat: 500000}}, nil, 2)
	require.NoError(t, err)

	data, err := json.Marshal(score)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"pitch":60`)
	assert.Contains(t, string(data), `"start_time_ms":0`)
	assert.Contains(t, string(data), `"ppq":480`)

	decoded, err := UnmarshalScoreJSON(data)
	require.NoError(t, err)
	assert.Equal(t, score.Len(), decoded.Len())
	assert.Equal(t, score.PPQ, decoded.PPQ)
	assert.Equal(t, score.Notes[0].Pitch, decoded.Notes[0].Pitch)
}

func TestUnmarshalScoreJSONInvalid(t *testing.T) {
	_, err := UnmarshalScoreJSON([]byte(`{"notes": [], "ppq": 480}`))
	require.Error(t, err)
	assert.IsType(t, &EmptyScoreError{}, err)
}

func TestUnmarshalScoreJSONMalformed(t *testing.T) {
	_, err := UnmarshalScoreJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestPerformanceJSONRoundTrip(t *testing.T) {
	perf, err := NewPerformance([]PerformanceNote{
		{ID: "p1", Pitch: 60, Velocity: 70, StartTimeMs: 0, DurationMs: 200},
	}, []PedalEvent{{TimeMs: 0, Kind: "sustain", Value: 127}}, 10)
	require.NoError(t, err)

	data, err := json.Marshal(perf)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"sustain"`)
	assert.Contains(t, string(data), `"capture_start_ms":10`)

	decoded, err := UnmarshalPerformanceJSON(data)
	require.NoError(t, err)
	assert.Equal(t, perf.Len(), decoded.Len())
	assert.Equal(t, perf.CaptureStartMs, decoded.CaptureStartMs)
}

func TestUnmarshalPerformanceJSONInvalid(t *testing.T) {
	_, err := UnmarshalPerformanceJSON([]byte(`{"notes": [{"id": "p1", "pitch": 300, "start_time_ms": 0}]}`))
	require.Error(t, err)
	assert.IsType(t, &InvalidPitchError{}, err)
}
