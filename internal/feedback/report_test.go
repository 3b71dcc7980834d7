package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pianoflow/pianoeval/internal/evaluate"
	"github.com/pianoflow/pianoeval/internal/notemodel"
)

func TestGenerateCleanPerformance(t *testing.T) {
	result := &notemodel.AlignmentResult{AlgorithmName: "gsa", NormalizedScore: 1.0}
	accuracy := &evaluate.NoteAccuracyResult{Score: 100}
	rhythm := &evaluate.RhythmResult{Score: 100}
	tempo := &evaluate.TempoResult{Score: 100}

	report := Generate(result, accuracy, rhythm, tempo)
	assert.Equal(t, 100.0, report.OverallScore)
	assert.Empty(t, report.ProblemMeasures)
	assert.Equal(t, "gsa", report.GeneratedFrom.AlgorithmName)
}

func TestGenerateWeightsBlend(t *testing.T) {
	accuracy := &evaluate.NoteAccuracyResult{Score: 80}
	rhythm := &evaluate.RhythmResult{Score: 60}
	tempo := &evaluate.TempoResult{Score: 40}
	report := Generate(&notemodel.AlignmentResult{}, accuracy, rhythm, tempo)
	assert.InDelta(t, 80*0.5+60*0.3+40*0.2, report.OverallScore, 0.001)
}

func TestGenerateMissedNotesProducesIssue(t *testing.T) {
	accuracy := &evaluate.NoteAccuracyResult{
		Score: 50,
		PerMeasureBreakdown: []evaluate.MeasureBreakdown{
			{Measure: 3, Missed: 2, Correct: 1},
		},
	}
	rhythm := &evaluate.RhythmResult{Score: 100}
	tempo := &evaluate.TempoResult{Score: 100}

	report := Generate(&notemodel.AlignmentResult{}, accuracy, rhythm, tempo)
	assert.Len(t, report.ProblemMeasures, 1)
	assert.Equal(t, "missed-notes", report.ProblemMeasures[0].Kind)
	assert.Equal(t, 3, report.ProblemMeasures[0].Measure)
	assert.NotEmpty(t, report.TopSuggestions)
}

func TestGenerateTimingIssueWinsOverLowerSeverityMissed(t *testing.T) {
	accuracy := &evaluate.NoteAccuracyResult{
		PerMeasureBreakdown: []evaluate.MeasureBreakdown{{Measure: 1, Missed: 1, Correct: 100}},
	}
	rhythm := &evaluate.RhythmResult{
		PerMeasureBreakdown: []evaluate.MeasureBreakdown{{Measure: 1, Wrong: 10, Correct: 1}},
	}
	tempo := &evaluate.TempoResult{}

	report := Generate(&notemodel.AlignmentResult{}, accuracy, rhythm, tempo)
	assert.Len(t, report.ProblemMeasures, 1)
	assert.Equal(t, "timing", report.ProblemMeasures[0].Kind)
}

func TestGenerateTempoDriftFlagged(t *testing.T) {
	accuracy := &evaluate.NoteAccuracyResult{}
	rhythm := &evaluate.RhythmResult{}
	tempo := &evaluate.TempoResult{DriftDirection: evaluate.DriftSlowingDown}

	report := Generate(&notemodel.AlignmentResult{}, accuracy, rhythm, tempo)
	assert.Len(t, report.ProblemMeasures, 1)
	assert.Equal(t, "tempo-drift", report.ProblemMeasures[0].Kind)
	assert.Equal(t, 0, report.ProblemMeasures[0].Measure)
}

func TestGenerateIssuesSortedBySeverityDesc(t *testing.T) {
	accuracy := &evaluate.NoteAccuracyResult{
		PerMeasureBreakdown: []evaluate.MeasureBreakdown{
			{Measure: 1, Missed: 1, Correct: 10},
			{Measure: 2, Missed: 5, Correct: 1},
		},
	}
	report := Generate(&notemodel.AlignmentResult{}, accuracy, &evaluate.RhythmResult{}, &evaluate.TempoResult{})
	require := report.ProblemMeasures
	assert.True(t, require[0].Severity >= require[1].Severity)
}

func TestCollectTopSuggestionsDedupesAndCaps(t *testing.T) {
	accuracy := &evaluate.NoteAccuracyResult{
		Issues: []evaluate.Issue{{Message: "a"}, {Message: "b"}, {Message: "c"}},
	}
	rhythm := &evaluate.RhythmResult{Issues: []evaluate.Issue{{Message: "a"}, {Message: "d"}}}
	tempo := &evaluate.TempoResult{Issues: []evaluate.Issue{{Message: "e"}, {Message: "f"}}}

	suggestions := collectTopSuggestions(nil, accuracy, rhythm, tempo)
	assert.LessOrEqual(t, len(suggestions), topSuggestionLimit)
	seen := make(map[string]bool)
	for _, s := range suggestions {
		assert.False(t, seen[s])
		seen[s] = true
	}
}
