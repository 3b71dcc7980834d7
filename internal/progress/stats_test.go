package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

func TestFromTakes(t *testing.T) {
	takes := []TakeSummary{
		{Label: "take1", OverallScore: 80, AccuracyScore: 85, RhythmScore: 75, TempoScore: 80},
		{Label: "take2", OverallScore: 90, AccuracyScore: 92, RhythmScore: 88, TempoScore: 90},
		{Label: "take3", OverallScore: 70, AccuracyScore: 72, RhythmScore: 68, TempoScore: 70},
	}

	stats, err := FromTakes(takes)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 80.0, stats.MeanOverallScore, 0.01)
	assert.Equal(t, 80.0, stats.MedianOverallScore)
	assert.Equal(t, 70.0, stats.MinOverallScore)
	assert.Equal(t, 90.0, stats.MaxOverallScore)
	assert.Equal(t, "take2", stats.BestTake)
	assert.Equal(t, "take3", stats.WorstTake)
}

func TestFromTakesEmpty(t *testing.T) {
	_, err := FromTakes(nil)
	assert.Error(t, err)
}

func TestNewTimingHistogram(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs: []notemodel.AlignedPair{
			{TimingDevMs: -20},
			{TimingDevMs: -5},
			{TimingDevMs: 0},
			{TimingDevMs: 10},
			{TimingDevMs: 40},
		},
	}

	hist, err := NewTimingHistogram(result, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, hist.NumBins)
	total := 0
	for _, c := range hist.Bins {
		total += c
	}
	assert.Equal(t, 5, total)

	start, end := hist.ModeBin()
	assert.True(t, end > start)
}

func TestNewTimingHistogramNoPairs(t *testing.T) {
	_, err := NewTimingHistogram(&notemodel.AlignmentResult{}, 4)
	assert.Error(t, err)
}

func TestTakeFilterBatchFilter(t *testing.T) {
	takes := []TakeSummary{
		{Label: "good", OverallScore: 80, NoteCount: 40, MissedCount: 2},
		{Label: "abandoned", OverallScore: 5, NoteCount: 0, MissedCount: 40},
		{Label: "mediocre", OverallScore: 30, NoteCount: 20, MissedCount: 25},
	}

	result := DefaultTakeFilter().BatchFilter(takes)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.PassedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Contains(t, result.FailReasons, 1)

	strictResult := StrictTakeFilter().BatchFilter(takes)
	assert.Equal(t, 1, strictResult.PassedCount)
}
