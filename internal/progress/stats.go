// Package progress aggregates evaluation results across many takes of
// the same score, for practice-history dashboards and regression runs.
package progress

import (
	"fmt"
	"sort"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// TakeSummary is one take's scores, stripped down to the numbers a
// progress dashboard plots over time.
type TakeSummary struct {
	Label          string
	OverallScore   float64
	AccuracyScore  float64
	RhythmScore    float64
	TempoScore     float64
	NoteCount      int
	MissedCount    int
}

// TakeSetStats aggregates TakeSummary values across a practice session
// or a regression run over many captured takes.
type TakeSetStats struct {
	Count              int
	MeanOverallScore   float64
	MedianOverallScore float64
	MinOverallScore    float64
	MaxOverallScore    float64
	MeanAccuracyScore  float64
	MeanRhythmScore    float64
	MeanTempoScore     float64
	BestTake           string
	WorstTake          string
}

// FromTakes computes aggregate statistics over a non-empty set of
// take summaries.
func FromTakes(takes []TakeSummary) (*TakeSetStats, error) {
	if len(takes) == 0 {
		return nil, fmt.Errorf("progress: take list cannot be empty")
	}

	count := len(takes)
	overall := make([]float64, count)
	var accSum, rhythmSum, tempoSum float64

	best, worst := takes[0], takes[0]
	for i, t := range takes {
		overall[i] = t.OverallScore
		accSum += t.AccuracyScore
		rhythmSum += t.RhythmScore
		tempoSum += t.TempoScore
		if t.OverallScore > best.OverallScore {
			best = t
		}
		if t.OverallScore < worst.OverallScore {
			worst = t
		}
	}

	sorted := make([]float64, count)
	copy(sorted, overall)
	sort.Float64s(sorted)

	mid := count / 2
	var median float64
	if count%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	sum := 0.0
	for _, v := range overall {
		sum += v
	}

	return &TakeSetStats{
		Count:              count,
		MeanOverallScore:   sum / float64(count),
		MedianOverallScore: median,
		MinOverallScore:    sorted[0],
		MaxOverallScore:    sorted[count-1],
		MeanAccuracyScore:  accSum / float64(count),
		MeanRhythmScore:    rhythmSum / float64(count),
		MeanTempoScore:     tempoSum / float64(count),
		BestTake:           best.Label,
		WorstTake:          worst.Label,
	}, nil
}

func (s *TakeSetStats) String() string {
	return fmt.Sprintf(`TakeSetStats {
  takes: %d
  overall score: mean %.1f, median %.1f, range %.1f-%.1f
  component means: accuracy %.1f, rhythm %.1f, tempo %.1f
  best: %s, worst: %s
}`, s.Count, s.MeanOverallScore, s.MedianOverallScore, s.MinOverallScore, s.MaxOverallScore,
		s.MeanAccuracyScore, s.MeanRhythmScore, s.MeanTempoScore, s.BestTake, s.WorstTake)
}

// TimingHistogram buckets per-note timing deviations (performance
// minus score, in ms) from an alignment result's matched pairs.
type TimingHistogram struct {
	Bins     []int
	MinMs    float64
	MaxMs    float64
	BinWidth float64
	NumBins  int
}

// NewTimingHistogram builds a timing-deviation histogram from an
// alignment result's matched pairs.
func NewTimingHistogram(result *notemodel.AlignmentResult, numBins int) (*TimingHistogram, error) {
	if len(result.Pairs) == 0 {
		return nil, fmt.Errorf("progress: alignment has no matched pairs")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("progress: numBins must be positive")
	}

	devs := make([]float64, len(result.Pairs))
	for i, p := range result.Pairs {
		devs[i] = p.TimingDevMs
	}

	minMs, maxMs := devs[0], devs[0]
	for _, d := range devs {
		if d < minMs {
			minMs = d
		}
		if d > maxMs {
			maxMs = d
		}
	}

	devRange := maxMs - minMs
	binWidth := devRange / float64(numBins)
	if binWidth <= 0 {
		binWidth = 1
	}

	bins := make([]int, numBins)
	for _, d := range devs {
		idx := int((d - minMs) / binWidth)
		if idx >= numBins {
			idx = numBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx]++
	}

	return &TimingHistogram{
		Bins:     bins,
		MinMs:    minMs,
		MaxMs:    maxMs,
		BinWidth: binWidth,
		NumBins:  numBins,
	}, nil
}

// ModeBin returns the [start, end) ms range of the most common bin.
func (h *TimingHistogram) ModeBin() (float64, float64) {
	maxCount := h.Bins[0]
	maxBin := 0
	for i, count := range h.Bins {
		if count > maxCount {
			maxCount = count
			maxBin = i
		}
	}
	start := h.MinMs + float64(maxBin)*h.BinWidth
	return start, start + h.BinWidth
}

func (h *TimingHistogram) String() string {
	result := "Timing Deviation Histogram (ms):\n"
	for i := 0; i < h.NumBins; i++ {
		start := h.MinMs + float64(i)*h.BinWidth
		end := start + h.BinWidth
		count := h.Bins[i]

		bar := ""
		for j := 0; j < count; j++ {
			bar += "#"
		}
		result += fmt.Sprintf("%6.0f to %6.0f: %s (%d)\n", start, end, bar, count)
	}
	return result
}
