package align

import (
	"log"
	"sort"
	"time"

	lvdtw "github.com/katalvlaran/lvlath/dtw"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// dtwDirection is the traceback predecessor tag for a DTW matrix cell.
type dtwDirection int

const (
	dtwNone dtwDirection = iota
	dtwDiagonal
	dtwLeft // extra performance note
	dtwUp   // missed score note
)

// DTW computes an optimal monotone path through the cost matrix per
// spec.md §4.2. It both produces a standalone AlignmentResult and
// backs the Hybrid strategy's tempo-estimation pass.
type DTW struct{}

// NewDTW returns a ready-to-use DTW strategy.
func NewDTW() *DTW { return &DTW{} }

func (d *DTW) Name() string { return "dtw" }

func (d *DTW) Align(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error) {
	if score == nil || len(score.Notes) == 0 || performance == nil || performance.Empty() {
		return degenerateResult(score, performance, d.Name()), nil
	}

	start := time.Now()

	n := len(score.Notes)
	m := len(performance.Notes)
	if err := checkMatrixBudget(n, m, opt.MaxMatrixCells); err != nil {
		return nil, err
	}

	cost := make([][]float64, n+1)
	path := make([][]dtwDirection, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		path[i] = make([]dtwDirection, m+1)
	}

	cost[0][0] = 0
	for i := 1; i <= n; i++ {
		cost[i][0] = float64(i) * opt.GapPenalty
		path[i][0] = dtwUp
	}
	for j := 1; j <= m; j++ {
		cost[0][j] = float64(j) * opt.GapPenalty * 0.5
		path[0][j] = dtwLeft
	}

	for i := 1; i <= n; i++ {
		sNote := score.Notes[i-1]
		for j := 1; j <= m; j++ {
			pNote := performance.Notes[j-1]

			diag := cost[i-1][j-1] + dtwMatchCost(sNote, pNote, opt)
			left := cost[i][j-1] + opt.GapPenalty*0.5
			up := cost[i-1][j] + opt.GapPenalty

			best := diag
			dir := dtwDiagonal
			if left < best {
				best = left
				dir = dtwLeft
			}
			if up < best {
				best = up
				dir = dtwUp
			}
			cost[i][j] = best
			path[i][j] = dir
		}
	}

	warpingPath := backtrackDTW(cost, path, n, m)

	result := extractDTWPairs(score, performance, warpingPath, opt)
	result.AlgorithmName = d.Name()
	result.ComputeTime = time.Since(start)
	result.TotalCost = cost[n][m]
	result.EstimatedTempoRatio = estimateTempoRatio(result.Pairs)
	result.NormalizedScore = normalizedDTWScore(result)
	return result, nil
}

// backtrackDTW walks the path matrix from (n,m) to (0,0) and returns
// the warping path in monotone-increasing order on both axes.
func backtrackDTW(cost [][]float64, path [][]dtwDirection, n, m int) []notemodel.WarpingPoint {
	var reversed []notemodel.WarpingPoint
	i, j := n, m
	for i > 0 || j > 0 {
		reversed = append(reversed, notemodel.WarpingPoint{
			ScoreIndex:       i - 1,
			PerformanceIndex: j - 1,
			CumulativeCost:   cost[i][j],
		})
		if i == 0 {
			j--
			continue
		}
		if j == 0 {
			i--
			continue
		}
		switch path[i][j] {
		case dtwDiagonal:
			i--
			j--
		case dtwLeft:
			j--
		case dtwUp:
			i--
		default:
			i--
			j--
		}
	}

	warpingPath := make([]notemodel.WarpingPoint, len(reversed))
	for idx, p := range reversed {
		warpingPath[len(reversed)-1-idx] = p
	}
	return warpingPath
}

// extractDTWPairs walks the warping path and emits pairs, missed, and
// extra notes per spec.md §4.2's pair-extraction rule.
func extractDTWPairs(score *notemodel.Score, performance *notemodel.Performance, warpingPath []notemodel.WarpingPoint, opt Options) *notemodel.AlignmentResult {
	usedScore := make(map[int]bool)
	usedPerf := make(map[int]bool)
	var pairs []AlignedCandidate

	prevScoreIdx, prevPerfIdx := -1, -1
	for _, point := range warpingPath {
		if point.ScoreIndex < 0 || point.PerformanceIndex < 0 {
			continue
		}
		isDiagonalStep := point.ScoreIndex != prevScoreIdx && point.PerformanceIndex != prevPerfIdx
		prevScoreIdx, prevPerfIdx = point.ScoreIndex, point.PerformanceIndex
		if !isDiagonalStep {
			continue
		}
		if usedScore[point.ScoreIndex] || usedPerf[point.PerformanceIndex] {
			continue
		}

		sNote := score.Notes[point.ScoreIndex]
		pNote := performance.Notes[point.PerformanceIndex]
		matchCost := dtwMatchCost(sNote, pNote, opt)
		if matchCost >= opt.GapPenalty {
			// Treated as unmatched: both notes are recovered as
			// missed/extra rather than forced into a poor pair.
			continue
		}

		usedScore[point.ScoreIndex] = true
		usedPerf[point.PerformanceIndex] = true
		pairs = append(pairs, AlignedCandidate{ScoreIndex: point.ScoreIndex, PerformanceIndex: point.PerformanceIndex, MatchCost: matchCost})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ScoreIndex < pairs[j].ScoreIndex })

	result := &notemodel.AlignmentResult{WarpingPath: warpingPath}
	for _, c := range pairs {
		sNote := score.Notes[c.ScoreIndex]
		pNote := performance.Notes[c.PerformanceIndex]
		result.Pairs = append(result.Pairs, notemodel.AlignedPair{
			ScoreNote:       sNote,
			PerformanceNote: pNote,
			Confidence:      clamp01(1 - c.MatchCost/opt.GapPenalty),
			TimingDevMs:     pNote.StartTimeMs - sNote.StartTimeMs,
			TimingDevBeats:  timingDevBeats(sNote, pNote, score),
		})
	}

	for i, n := range score.Notes {
		if usedScore[i] {
			continue
		}
		result.Missed = append(result.Missed, notemodel.MissedNote{
			Expected:    n,
			NearbyNotes: nearbyPerformanceNotes(performance, n.StartTimeMs, 500),
			Reason:      inferMissReason(n, performance, 500, 100),
		})
	}
	for j, n := range performance.Notes {
		if usedPerf[j] {
			continue
		}
		result.Extra = append(result.Extra, n)
	}

	return result
}

// AlignedCandidate is an internal scratch type used while extracting
// pairs from a warping path, before the final AlignedPair is built.
type AlignedCandidate struct {
	ScoreIndex       int
	PerformanceIndex int
	MatchCost        float64
}

func timingDevBeats(s notemodel.ScoreNote, p notemodel.PerformanceNote, score *notemodel.Score) float64 {
	micros := score.TempoAt(s.StartTick)
	msPerBeat := float64(micros) / 1000.0
	if msPerBeat <= 0 {
		return 0
	}
	return (p.StartTimeMs - s.StartTimeMs) / msPerBeat
}

func nearbyPerformanceNotes(performance *notemodel.Performance, centerMs float64, windowMs float64) []notemodel.PerformanceNote {
	var nearby []notemodel.PerformanceNote
	for _, n := range performance.Notes {
		if abs(n.StartTimeMs-centerMs) <= windowMs {
			nearby = append(nearby, n)
		}
	}
	return nearby
}

// inferMissReason implements spec.md §4.2's miss-reason inference.
func inferMissReason(expected notemodel.ScoreNote, performance *notemodel.Performance, missWindowMs, closeWindowMs float64) notemodel.MissReason {
	if expected.IsGraceNote {
		return notemodel.OptionalOrnament
	}

	nearby := nearbyPerformanceNotes(performance, expected.StartTimeMs, missWindowMs)
	if len(nearby) == 0 {
		return notemodel.Skipped
	}

	expectedClass := expected.PitchClass()
	for _, n := range nearby {
		if n.PitchClass() == expectedClass {
			return notemodel.Substituted
		}
		if abs(n.StartTimeMs-expected.StartTimeMs) <= closeWindowMs {
			return notemodel.Substituted
		}
	}
	return notemodel.TimingMismatch
}

// estimateTempoRatio computes the median performance/score interval
// ratio over consecutive paired onsets, per spec.md §4.2.
func estimateTempoRatio(pairs []notemodel.AlignedPair) float64 {
	if len(pairs) < 2 {
		return 1.0
	}
	var ratios []float64
	for i := 1; i < len(pairs); i++ {
		scoreInterval := pairs[i].ScoreNote.StartTimeMs - pairs[i-1].ScoreNote.StartTimeMs
		if scoreInterval <= 10 {
			continue
		}
		perfInterval := pairs[i].PerformanceNote.StartTimeMs - pairs[i-1].PerformanceNote.StartTimeMs
		ratios = append(ratios, perfInterval/scoreInterval)
	}
	if len(ratios) == 0 {
		return 1.0
	}
	sort.Float64s(ratios)
	mid := len(ratios) / 2
	if len(ratios)%2 == 0 {
		return (ratios[mid-1] + ratios[mid]) / 2
	}
	return ratios[mid]
}

// CrossCheckWithReference re-runs the paired inter-onset-interval
// sequences through lvlath's windowed DTW implementation and logs the
// resulting distance next to the engine's own tempo-ratio estimate.
// It is diagnostic-only: the lvlath path and distance are never used
// to build or adjust the returned AlignmentResult.
func CrossCheckWithReference(result *notemodel.AlignmentResult) {
	if len(result.Pairs) < 3 {
		return
	}

	scoreIntervals := make([]float64, 0, len(result.Pairs)-1)
	perfIntervals := make([]float64, 0, len(result.Pairs)-1)
	for i := 1; i < len(result.Pairs); i++ {
		scoreIntervals = append(scoreIntervals, result.Pairs[i].ScoreNote.StartTimeMs-result.Pairs[i-1].ScoreNote.StartTimeMs)
		perfIntervals = append(perfIntervals, result.Pairs[i].PerformanceNote.StartTimeMs-result.Pairs[i-1].PerformanceNote.StartTimeMs)
	}

	opts := lvdtw.DefaultOptions()
	opts.Window = 8
	opts.MemoryMode = lvdtw.Rolling
	opts.ReturnPath = false

	dist, _, err := lvdtw.DTW(scoreIntervals, perfIntervals, opts)
	if err != nil {
		log.Printf("dtw cross-check failed: %v", err)
		return
	}
	log.Printf("dtw cross-check: lvlath_distance=%.3f estimated_tempo_ratio=%.3f", dist, result.EstimatedTempoRatio)
}

func normalizedDTWScore(result *notemodel.AlignmentResult) float64 {
	total := len(result.Pairs) + len(result.Missed)
	if total == 0 {
		return 0
	}
	exact := 0
	octave := 0
	for _, p := range result.Pairs {
		if p.IsExactPitchMatch() {
			exact++
		} else if p.IsOctaveError() {
			octave++
		}
	}
	score := (float64(exact) + 0.5*float64(octave) - 0.1*float64(len(result.Extra))) / float64(total)
	return clamp01(score)
}
