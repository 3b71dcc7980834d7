// Package pianoeval provides a high-level API for evaluating a
// captured piano performance against a ground-truth score.
//
// Example usage:
//
//	result, err := pianoeval.EvaluatePipeline(score, performance, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Note accuracy: %.1f\n", result.Accuracy.Score)
package pianoeval

import (
	"fmt"
	"time"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/evaluate"
	"github.com/pianoflow/pianoeval/internal/feedback"
	"github.com/pianoflow/pianoeval/internal/notemodel"
	"github.com/pianoflow/pianoeval/internal/progress"
	"github.com/pianoflow/pianoeval/internal/realtime"
)

// TakeSetStats aggregates scores across many takes. See internal/progress.
type TakeSetStats = progress.TakeSetStats

// TimingHistogram buckets per-note timing deviations. See internal/progress.
type TimingHistogram = progress.TimingHistogram

// TakeFilter screens takes before they're aggregated. See internal/progress.
type TakeFilter = progress.TakeFilter

// DefaultTakeFilter returns a permissive take filter.
func DefaultTakeFilter() *TakeFilter { return progress.DefaultTakeFilter() }

// StrictTakeFilter returns a take filter that rejects low-effort takes.
func StrictTakeFilter() *TakeFilter { return progress.StrictTakeFilter() }

// Re-export types for convenience.
type (
	Score            = notemodel.Score
	ScoreNote        = notemodel.ScoreNote
	Performance      = notemodel.Performance
	PerformanceNote  = notemodel.PerformanceNote
	AlignmentResult  = notemodel.AlignmentResult
	Options          = align.Options
	NoteAccuracy     = evaluate.NoteAccuracyResult
	RhythmMetrics    = evaluate.RhythmResult
	TempoMetrics     = evaluate.TempoResult
	Report           = feedback.Report
	RealTimeEvaluator = realtime.Evaluator
	RealTimeFeedback = realtime.RealTimeFeedback
)

// NewScore constructs a Score. See notemodel.NewScore.
func NewScore(notes []ScoreNote, ppq int, tempoMap []notemodel.TempoEvent, timeSigMap []notemodel.TimeSignatureEvent, totalMeasures int) (*Score, error) {
	return notemodel.NewScore(notes, ppq, tempoMap, timeSigMap, totalMeasures)
}

// NewPerformance constructs a Performance. See notemodel.NewPerformance.
func NewPerformance(notes []PerformanceNote, pedal []notemodel.PedalEvent, captureStartMs float64) (*Performance, error) {
	return notemodel.NewPerformance(notes, pedal, captureStartMs)
}

// DefaultOptions returns the default alignment option set.
func DefaultOptions() Options { return align.DefaultOptions() }

// StrictOptions returns the strict alignment preset.
func StrictOptions() Options { return align.StrictOptions() }

// BeginnerOptions returns the beginner alignment preset.
func BeginnerOptions() Options { return align.BeginnerOptions() }

// FullResult is the output of EvaluatePipeline.
type FullResult struct {
	Alignment         *AlignmentResult
	Accuracy          *NoteAccuracy
	Rhythm            *RhythmMetrics
	Tempo             *TempoMetrics
	Feedback          *Report
	TotalProcessingTime time.Duration
}

// QuickResult is the output of EvaluateNotesOnly.
type QuickResult struct {
	Score     float64
	Correct   int
	Total     int
	TopIssues []string
}

// AlignDTW runs the DTW strategy directly.
func AlignDTW(score *Score, performance *Performance, opt Options) (*AlignmentResult, error) {
	return align.NewDTW().Align(score, performance, opt)
}

// AlignGSA runs the GSA strategy directly.
func AlignGSA(score *Score, performance *Performance, opt Options) (*AlignmentResult, error) {
	return align.NewGSA().Align(score, performance, opt)
}

// AlignHybrid runs the production Hybrid strategy.
func AlignHybrid(score *Score, performance *Performance, opt Options) (*AlignmentResult, error) {
	return align.NewHybrid().Align(score, performance, opt)
}

// EvaluatePipeline runs the Hybrid aligner and the full evaluator and
// feedback suite over a score/performance pair. opt may be nil to use
// DefaultOptions.
func EvaluatePipeline(score *Score, performance *Performance, opt *Options) (*FullResult, error) {
	start := time.Now()

	resolved := align.DefaultOptions()
	if opt != nil {
		resolved = *opt
	}

	alignment, err := align.NewHybrid().Align(score, performance, resolved)
	if err != nil {
		return nil, fmt.Errorf("pianoeval: align: %w", err)
	}

	accuracy := evaluate.NoteAccuracy(alignment, evaluate.DefaultWeights())
	rhythm := evaluate.Rhythm(alignment, evaluate.RhythmToleranceMs)
	tempo := evaluate.Tempo(alignment, score)
	report := feedback.Generate(alignment, accuracy, rhythm, tempo)

	return &FullResult{
		Alignment:           alignment,
		Accuracy:            accuracy,
		Rhythm:              rhythm,
		Tempo:               tempo,
		Feedback:            report,
		TotalProcessingTime: time.Since(start),
	}, nil
}

// EvaluateNotesOnly is a fast path that skips rhythm, tempo, and
// feedback generation, for UI feedback loops that need only an
// overall score.
func EvaluateNotesOnly(score *Score, performance *Performance) (*QuickResult, error) {
	alignment, err := align.NewHybrid().Align(score, performance, align.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("pianoeval: align: %w", err)
	}
	accuracy := evaluate.NoteAccuracy(alignment, evaluate.DefaultWeights())

	var topIssues []string
	for i, iss := range accuracy.Issues {
		if i >= 3 {
			break
		}
		topIssues = append(topIssues, iss.Message)
	}

	return &QuickResult{
		Score:     accuracy.Score,
		Correct:   accuracy.Correct,
		Total:     accuracy.TotalExpected,
		TopIssues: topIssues,
	}, nil
}

// NewRealTimeEvaluator constructs a streaming evaluator bound to score.
func NewRealTimeEvaluator(score *Score, opt Options) *RealTimeEvaluator {
	return realtime.New(score, opt)
}

// Take pairs one captured performance with the score it should be
// checked against, for batch regression runs over many takes.
type Take struct {
	Performance *Performance
	Label       string
}

// Pipeline batch-processes many performances against one reference
// score, useful for regression-testing captured takes.
type Pipeline struct {
	score *Score
	opt   Options
}

// NewPipeline creates a processing pipeline bound to a reference score.
func NewPipeline(score *Score, opt Options) *Pipeline {
	return &Pipeline{score: score, opt: opt}
}

// TakeResult pairs a Take's label with its evaluation.
type TakeResult struct {
	Label  string
	Result *FullResult
	Err    error
}

// ProcessTakes evaluates every take against the pipeline's score,
// continuing past individual failures and reporting them per take.
func (p *Pipeline) ProcessTakes(takes []Take) []TakeResult {
	results := make([]TakeResult, len(takes))
	for i, t := range takes {
		res, err := EvaluatePipeline(p.score, t.Performance, &p.opt)
		results[i] = TakeResult{Label: t.Label, Result: res, Err: err}
	}
	return results
}

// Summarize aggregates a batch of take results into TakeSetStats. A
// take that failed to evaluate, or that fails filter (nil uses
// DefaultTakeFilter), is excluded. Returns an error if nothing passes.
func (p *Pipeline) Summarize(results []TakeResult, filter *TakeFilter) (*TakeSetStats, error) {
	if filter == nil {
		filter = DefaultTakeFilter()
	}

	var summaries []progress.TakeSummary
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			continue
		}
		summaries = append(summaries, progress.TakeSummary{
			Label:         r.Label,
			OverallScore:  r.Result.Feedback.OverallScore,
			AccuracyScore: r.Result.Accuracy.Score,
			RhythmScore:   r.Result.Rhythm.Score,
			TempoScore:    r.Result.Tempo.Score,
			NoteCount:     len(r.Result.Alignment.Pairs),
			MissedCount:   len(r.Result.Alignment.Missed),
		})
	}

	batch := filter.BatchFilter(summaries)
	return progress.FromTakes(batch.PassedTakes)
}

// TimingHistogramFor buckets an evaluation's timing deviations for
// display, e.g. to show whether a player tends to rush or drag.
func TimingHistogramFor(result *AlignmentResult, numBins int) (*TimingHistogram, error) {
	return progress.NewTimingHistogram(result, numBins)
}

// Version returns the pianoeval library version.
func Version() string { return "1.0.0" }
