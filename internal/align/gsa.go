package align

import (
	"time"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

const (
	gsaMatch      = 2.0
	gsaMismatch   = -1.0
	gsaGapOpen    = -2.0
	gsaGapExtend  = -0.5
)

// gsaMove is the traceback predecessor tag for a GSA matrix cell.
type gsaMove int

const (
	gsaDone gsaMove = iota
	gsaDiagonal
	gsaUp   // missed score note
	gsaLeft // extra performance note
)

// GSA is the Needleman-Wunsch-with-affine-gaps maximization variant
// described in spec.md §4.3. It is also used by Hybrid as the
// per-voice and tempo-warped aligner.
type GSA struct{}

// NewGSA returns a ready-to-use GSA strategy.
func NewGSA() *GSA { return &GSA{} }

func (g *GSA) Name() string { return "gsa" }

func (g *GSA) Align(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error) {
	if score == nil || len(score.Notes) == 0 || performance == nil || performance.Empty() {
		return degenerateResult(score, performance, g.Name()), nil
	}

	start := time.Now()

	n := len(score.Notes)
	m := len(performance.Notes)
	if err := checkMatrixBudget(n, m, opt.MaxMatrixCells); err != nil {
		return nil, err
	}

	result := runGSA(score, performance, opt)
	result.AlgorithmName = g.Name()
	result.ComputeTime = time.Since(start)
	return result, nil
}

// runGSA performs the matrix fill, traceback, and metric aggregation
// shared by the standalone GSA strategy and Hybrid's per-voice and
// tempo-warped calls.
func runGSA(score *notemodel.Score, performance *notemodel.Performance, opt Options) *notemodel.AlignmentResult {
	n := len(score.Notes)
	m := len(performance.Notes)

	H := make([][]float64, n+1)
	move := make([][]gsaMove, n+1)
	for i := range H {
		H[i] = make([]float64, m+1)
		move[i] = make([]gsaMove, m+1)
	}

	for i := 1; i <= n; i++ {
		H[i][0] = H[i-1][0] + gapScoreDim(move[i-1][0] == gsaUp)
		move[i][0] = gsaUp
	}
	for j := 1; j <= m; j++ {
		H[0][j] = H[0][j-1] + gapPerfDim(move[0][j-1] == gsaLeft)
		move[0][j] = gsaLeft
	}

	for i := 1; i <= n; i++ {
		sNote := score.Notes[i-1]
		for j := 1; j <= m; j++ {
			pNote := performance.Notes[j-1]

			diag := H[i-1][j-1] + gsaMatchScore(sNote, pNote, opt)
			up := H[i-1][j] + gapScoreDim(move[i-1][j] == gsaUp)
			left := H[i][j-1] + gapPerfDim(move[i][j-1] == gsaLeft)

			H[i][j], move[i][j] = selectGSAMove(diag, up, left)
		}
	}

	return tracebackGSA(score, performance, H, move, n, m, opt)
}

// selectGSAMove picks the best-scoring predecessor for a matrix cell.
// Ties break Diagonal > Up > Left per spec.md §4.3: Diagonal is the
// starting candidate and is only displaced by a strictly greater score.
func selectGSAMove(diag, up, left float64) (float64, gsaMove) {
	best := diag
	dir := gsaDiagonal
	if up > best {
		best = up
		dir = gsaUp
	}
	if left > best {
		best = left
		dir = gsaLeft
	}
	return best, dir
}

// gapScoreDim is the affine gap penalty for a missed score note (the
// "score dimension" gap), charged at full size.
func gapScoreDim(extending bool) float64 {
	if extending {
		return gsaGapExtend
	}
	return gsaGapOpen
}

// gapPerfDim is the affine gap penalty for an extra performance note,
// scaled by 0.5: the same asymmetric bias as DTW, where extras cost
// less than missed notes.
func gapPerfDim(extending bool) float64 {
	if extending {
		return gsaGapExtend * 0.5
	}
	return gsaGapOpen * 0.5
}

// gsaMatchScore implements spec.md §4.3's combined pitch/timing score.
func gsaMatchScore(s notemodel.ScoreNote, p notemodel.PerformanceNote, opt Options) float64 {
	pitch := gsaPitchScore(s.Pitch, p.Pitch, opt)
	timing := gsaTimingScore(p.StartTimeMs-s.StartTimeMs, s.IsGraceNote, opt)
	combined := pitch*opt.PitchWeight + timing*(1-opt.PitchWeight)
	return combined
}

func gsaPitchScore(scorePitch, perfPitch int, opt Options) float64 {
	if scorePitch == perfPitch {
		return gsaMatch
	}
	scoreClass := ((scorePitch % 12) + 12) % 12
	perfClass := ((perfPitch % 12) + 12) % 12
	if scoreClass == perfClass && opt.AllowOctaveErrors {
		return gsaMatch * 0.5
	}
	semitones := float64(semitoneDistance(scorePitch, perfPitch))
	return gsaMismatch * minF(semitones/6.0, 2.0)
}

func gsaTimingScore(deltaMs float64, isGraceNote bool, opt Options) float64 {
	var score float64
	d := abs(deltaMs)
	switch {
	case d <= 30:
		score = 0.5
	case d <= opt.MaxTimingDeviationMs:
		score = 0.3 * (1 - d/opt.MaxTimingDeviationMs)
	default:
		score = -0.5
	}
	if isGraceNote {
		score += 0.3
		score = maxF(score, 0)
	}
	return score
}

// tracebackGSA walks the score matrix from (n,m) to (0,0) emitting
// pairs, missed, and extra notes per spec.md §4.3's traceback rules.
func tracebackGSA(score *notemodel.Score, performance *notemodel.Performance, H [][]float64, move [][]gsaMove, n, m int, opt Options) *notemodel.AlignmentResult {
	var pairs []notemodel.AlignedPair
	var missed []notemodel.MissedNote
	var extra []notemodel.PerformanceNote

	i, j := n, m
	for i > 0 || j > 0 {
		var dir gsaMove
		switch {
		case i == 0:
			dir = gsaLeft
		case j == 0:
			dir = gsaUp
		default:
			dir = move[i][j]
		}

		switch dir {
		case gsaDiagonal:
			sNote := score.Notes[i-1]
			pNote := performance.Notes[j-1]
			raw := gsaMatchScore(sNote, pNote, opt)
			if raw > 0 {
				pairs = append(pairs, notemodel.AlignedPair{
					ScoreNote:       sNote,
					PerformanceNote: pNote,
					Confidence:      clamp01((raw + 1) / (gsaMatch + 1)),
					TimingDevMs:     pNote.StartTimeMs - sNote.StartTimeMs,
					TimingDevBeats:  timingDevBeats(sNote, pNote, score),
				})
			} else {
				missed = append(missed, notemodel.MissedNote{
					Expected:    sNote,
					NearbyNotes: nearbyPerformanceNotes(performance, sNote.StartTimeMs, 500),
					Reason:      inferMissReason(sNote, performance, 500, 100),
				})
				extra = append(extra, pNote)
			}
			i--
			j--
		case gsaUp:
			sNote := score.Notes[i-1]
			missed = append(missed, notemodel.MissedNote{
				Expected:    sNote,
				NearbyNotes: nearbyPerformanceNotes(performance, sNote.StartTimeMs, 500),
				Reason:      inferMissReason(sNote, performance, 500, 100),
			})
			i--
		case gsaLeft:
			extra = append(extra, performance.Notes[j-1])
			j--
		default:
			i, j = 0, 0
		}
	}

	reversePairs(pairs)
	reverseMissed(missed)
	reverseExtra(extra)

	result := &notemodel.AlignmentResult{
		Pairs:  pairs,
		Missed: missed,
		Extra:  extra,
	}
	result.EstimatedTempoRatio = estimateTempoRatio(pairs)
	result.NormalizedScore = normalizedDTWScore(result)
	result.TotalCost = gsaTotalCost(result)
	return result
}

func gsaTotalCost(result *notemodel.AlignmentResult) float64 {
	total := 0.0
	for _, p := range result.Pairs {
		total += 1 - p.Confidence
	}
	total += float64(len(result.Missed))
	total += 0.5 * float64(len(result.Extra))
	return total
}

func reversePairs(s []notemodel.AlignedPair) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseMissed(s []notemodel.MissedNote) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseExtra(s []notemodel.PerformanceNote) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
