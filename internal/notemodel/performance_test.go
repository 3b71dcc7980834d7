package notemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPerformance(t *testing.T) {
	tests := []struct {
		name    string
		notes   []PerformanceNote
		wantErr interface{}
	}{
		{
			name: "valid performance",
			notes: []PerformanceNote{
				{ID: "p1", Pitch: 60, StartTimeMs: 0},
				{ID: "p2", Pitch: 62, StartTimeMs: 100},
			},
		},
		{
			name:  "empty performance is valid",
			notes: nil,
		},
		{
			name: "non-monotonic timestamps",
			notes: []PerformanceNote{
				{ID: "p1", Pitch: 60, StartTimeMs: 100},
				{ID: "p2", Pitch: 62, StartTimeMs: 50},
			},
			wantErr: &NonMonotonicPerformanceError{},
		},
		{
			name: "invalid pitch",
			notes: []PerformanceNote{
				{ID: "p1", Pitch: -1, StartTimeMs: 0},
			},
			wantErr: &InvalidPitchError{},
		},
		{
			name: "duplicate id",
			notes: []PerformanceNote{
				{ID: "p1", Pitch: 60, StartTimeMs: 0},
				{ID: "p1", Pitch: 62, StartTimeMs: 100},
			},
			wantErr: &DuplicateIDError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perf, err := NewPerformance(tt.notes, nil, 0)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.IsType(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.notes), perf.Len())
		})
	}
}

func TestPerformanceEmpty(t *testing.T) {
	perf, err := NewPerformance(nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, perf.Empty())

	perf, err = NewPerformance([]PerformanceNote{{ID: "p1", Pitch: 60}}, nil, 0)
	require.NoError(t, err)
	assert.False(t, perf.Empty())
}

func TestPerformanceNoteByID(t *testing.T) {
	perf, err := NewPerformance([]PerformanceNote{
		{ID: "p1", Pitch: 60, StartTimeMs: 0},
		{ID: "p2", Pitch: 62, StartTimeMs: 100},
	}, nil, 0)
	require.NoError(t, err)

	n, ok := perf.NoteByID("p2")
	require.True(t, ok)
	assert.Equal(t, 62, n.Pitch)

	_, ok = perf.NoteByID("missing")
	assert.False(t, ok)
}
