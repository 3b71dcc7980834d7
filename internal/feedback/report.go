// Package feedback turns alignment and evaluator output into a
// prioritized, per-measure practice report.
package feedback

import (
	"fmt"
	"time"

	"github.com/pianoflow/pianoeval/internal/evaluate"
	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// AlignmentSummary captures the provenance of the alignment a report
// was generated from, for display alongside the report itself.
type AlignmentSummary struct {
	AlgorithmName   string
	ComputeTime     time.Duration
	NormalizedScore float64
}

// MeasureIssue is one flagged measure, ranked by Severity.
type MeasureIssue struct {
	Measure    int
	Severity   float64 // 0..1
	Kind       string  // "missed-notes" | "timing" | "tempo-drift" | "extra-notes"
	Detail     string
	Suggestion string
}

// Report is the prioritized per-measure feedback document.
type Report struct {
	OverallScore    float64
	ProblemMeasures []MeasureIssue
	TopSuggestions  []string
	GeneratedFrom   AlignmentSummary
}

const topSuggestionLimit = 5

// Generate builds a Report from an AlignmentResult and its evaluator
// outputs. It never errors: a result with nothing to evaluate yields
// an empty report with a zero overall score.
func Generate(result *notemodel.AlignmentResult, accuracy *evaluate.NoteAccuracyResult, rhythm *evaluate.RhythmResult, tempo *evaluate.TempoResult) *Report {
	report := &Report{
		OverallScore: weightedOverallScore(accuracy, rhythm, tempo),
		GeneratedFrom: AlignmentSummary{
			AlgorithmName:   result.AlgorithmName,
			ComputeTime:     result.ComputeTime,
			NormalizedScore: result.NormalizedScore,
		},
	}

	byMeasure := make(map[int]*MeasureIssue)
	get := func(measure int) *MeasureIssue {
		if m, ok := byMeasure[measure]; ok {
			return m
		}
		m := &MeasureIssue{Measure: measure}
		byMeasure[measure] = m
		return m
	}

	for _, b := range accuracy.PerMeasureBreakdown {
		if b.Missed == 0 {
			continue
		}
		m := get(b.Measure)
		severity := clamp01(float64(b.Missed) / float64(b.Missed+b.Correct+b.Wrong+1))
		if severity > m.Severity {
			m.Severity = severity
			m.Kind = "missed-notes"
			m.Detail = fmt.Sprintf("%d note(s) missed in measure %d", b.Missed, b.Measure)
			m.Suggestion = "isolate this measure and practice hands separately at a slower tempo"
		}
	}

	for _, b := range rhythm.PerMeasureBreakdown {
		if b.Wrong == 0 {
			continue
		}
		m := get(b.Measure)
		severity := clamp01(float64(b.Wrong) / float64(b.Wrong+b.Correct+1))
		if severity > m.Severity {
			m.Severity = severity
			m.Kind = "timing"
			m.Detail = fmt.Sprintf("timing is inconsistent in measure %d", b.Measure)
			m.Suggestion = "practice with a metronome at a reduced tempo"
		}
	}

	if tempo.DriftDirection != evaluate.DriftNone {
		m := get(0)
		if m.Severity < 0.4 {
			m.Severity = 0.4
			m.Kind = "tempo-drift"
			m.Detail = fmt.Sprintf("tempo is %s across the piece", tempo.DriftDirection)
			m.Suggestion = "use a metronome to anchor a steady pulse throughout"
		}
	}

	for _, m := range byMeasure {
		report.ProblemMeasures = append(report.ProblemMeasures, *m)
	}
	sortIssuesBySeverityDesc(report.ProblemMeasures)

	report.TopSuggestions = collectTopSuggestions(report.ProblemMeasures, accuracy, rhythm, tempo)

	return report
}

// weightedOverallScore blends the three evaluator scores with fixed
// weights (accuracy 0.5, rhythm 0.3, tempo 0.2): accuracy dominates,
// rhythm and tempo refine it.
func weightedOverallScore(accuracy *evaluate.NoteAccuracyResult, rhythm *evaluate.RhythmResult, tempo *evaluate.TempoResult) float64 {
	return accuracy.Score*0.5 + rhythm.Score*0.3 + tempo.Score*0.2
}

func collectTopSuggestions(issues []MeasureIssue, accuracy *evaluate.NoteAccuracyResult, rhythm *evaluate.RhythmResult, tempo *evaluate.TempoResult) []string {
	var suggestions []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		suggestions = append(suggestions, s)
	}

	for _, issue := range issues {
		if len(suggestions) >= topSuggestionLimit {
			break
		}
		add(issue.Suggestion)
	}
	for _, issue := range accuracy.Issues {
		add(issue.Message)
	}
	for _, issue := range rhythm.Issues {
		add(issue.Message)
	}
	for _, issue := range tempo.Issues {
		add(issue.Message)
	}

	if len(suggestions) > topSuggestionLimit {
		suggestions = suggestions[:topSuggestionLimit]
	}
	return suggestions
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func sortIssuesBySeverityDesc(issues []MeasureIssue) {
	for i := 1; i < len(issues); i++ {
		for j := i; j > 0 && issues[j].Severity > issues[j-1].Severity; j-- {
			issues[j], issues[j-1] = issues[j-1], issues[j]
		}
	}
}
