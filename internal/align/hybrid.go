package align

import (
	"time"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

const smallSequenceThreshold = 20

// Hybrid is the production aligner described in spec.md §4.4. It
// routes between GSA-only, per-voice GSA, and DTW-tempo-estimate/GSA
// regimes depending on the shape of the input.
type Hybrid struct {
	dtw *DTW
	gsa *GSA
}

// NewHybrid returns a ready-to-use Hybrid strategy.
func NewHybrid() *Hybrid {
	return &Hybrid{dtw: NewDTW(), gsa: NewGSA()}
}

func (h *Hybrid) Name() string { return "hybrid" }

func (h *Hybrid) Align(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error) {
	if score == nil || len(score.Notes) == 0 || performance == nil || performance.Empty() {
		return degenerateResult(score, performance, h.Name()), nil
	}

	start := time.Now()

	n := len(score.Notes)
	m := len(performance.Notes)

	var result *notemodel.AlignmentResult
	var err error

	switch {
	case n <= smallSequenceThreshold && m <= smallSequenceThreshold:
		result, err = h.alignSmall(score, performance, opt)
	case score.MaxVoice() > 1 || isPolyphonicByCluster(score):
		result, err = h.alignPolyphonic(score, performance, opt)
	default:
		result, err = h.alignMonophonicLarge(score, performance, opt)
	}
	if err != nil {
		return nil, err
	}

	result.ComputeTime = time.Since(start)
	return result, nil
}

func (h *Hybrid) alignSmall(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error) {
	result, err := h.gsa.Align(score, performance, opt)
	if err != nil {
		return nil, err
	}
	result.AlgorithmName = "hybrid/gsa-small"
	return result, nil
}

func isPolyphonicByCluster(score *notemodel.Score) bool {
	clusters := clusterBySimultaneity(score.Notes, 10)
	for _, c := range clusters {
		if len(c) > 1 {
			return true
		}
	}
	return false
}

// alignPolyphonic implements the voice-separation regime: split into
// monophonic voices, align each with GSA, and recombine.
func (h *Hybrid) alignPolyphonic(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error) {
	parts := separateVoices(score)
	if len(parts) <= 1 {
		return h.alignMonophonicLarge(score, performance, opt)
	}

	perfByVoice := partitionPerformanceByVoice(parts, performance)

	var allPairs []notemodel.AlignedPair
	var allMissed []notemodel.MissedNote
	pairedPerfIDs := make(map[string]bool)

	for _, part := range parts {
		voiceScore, err := notemodel.NewScore(part.ScoreNotes, score.PPQ, score.TempoMap, score.TimeSigMap, score.TotalMeasures)
		if err != nil {
			return nil, err
		}
		voicePerfNotes := perfByVoice[part.Voice]
		if len(voicePerfNotes) == 0 {
			voiceResult := degenerateResult(voiceScore, &notemodel.Performance{}, h.gsa.Name())
			allMissed = append(allMissed, voiceResult.Missed...)
			continue
		}
		voicePerf, err := notemodel.NewPerformance(voicePerfNotes, nil, performance.CaptureStartMs)
		if err != nil {
			return nil, err
		}
		voiceResult, err := h.gsa.Align(voiceScore, voicePerf, opt)
		if err != nil {
			return nil, err
		}
		allPairs = append(allPairs, voiceResult.Pairs...)
		allMissed = append(allMissed, voiceResult.Missed...)
		for _, p := range voiceResult.Pairs {
			pairedPerfIDs[p.PerformanceNote.ID] = true
		}
	}

	var extras []notemodel.PerformanceNote
	for _, n := range performance.Notes {
		if !pairedPerfIDs[n.ID] {
			extras = append(extras, n)
		}
	}

	sortPairsByScoreTick(allPairs)
	sortMissedByScoreTick(allMissed)

	result := &notemodel.AlignmentResult{
		Pairs:         allPairs,
		Missed:        allMissed,
		Extra:         extras,
		AlgorithmName: "hybrid/polyphonic",
	}
	result.EstimatedTempoRatio = estimateTempoRatio(allPairs)
	result.NormalizedScore = normalizedDTWScore(result)
	result.TotalCost = gsaTotalCost(result)
	return result, nil
}

// alignMonophonicLarge implements the DTW-tempo-estimate -> warped
// GSA regime for single-voice inputs too large for direct GSA.
func (h *Hybrid) alignMonophonicLarge(score *notemodel.Score, performance *notemodel.Performance, opt Options) (*notemodel.AlignmentResult, error) {
	dtwResult, err := h.dtw.Align(score, performance, opt)
	if err != nil {
		return nil, err
	}

	ratio := dtwResult.EstimatedTempoRatio
	if ratio <= 0 {
		ratio = 1.0
	}

	warpOpt := opt
	warpOpt.AllowTempoFlexibility = false

	if abs(ratio-1.0) < 0.01 {
		result, err := h.gsa.Align(score, performance, warpOpt)
		if err != nil {
			return nil, err
		}
		result.AlgorithmName = "hybrid/dtw-gsa"
		result.EstimatedTempoRatio = ratio
		return result, nil
	}

	warpedNotes := make([]notemodel.PerformanceNote, len(performance.Notes))
	for i, n := range performance.Notes {
		warped := n
		warped.StartTimeMs = n.StartTimeMs / ratio
		warpedNotes[i] = warped
	}
	warpedPerf, err := notemodel.NewPerformance(warpedNotes, performance.Pedal, performance.CaptureStartMs/ratio)
	if err != nil {
		return nil, err
	}

	warpedResult, err := h.gsa.Align(score, warpedPerf, warpOpt)
	if err != nil {
		return nil, err
	}

	restored := restoreOriginalPerformanceNotes(warpedResult, performance)
	restored.AlgorithmName = "hybrid/dtw-gsa"
	restored.EstimatedTempoRatio = ratio
	return restored, nil
}

// restoreOriginalPerformanceNotes replaces the tempo-warped
// PerformanceNote values in a GSA result with the originals, looked
// up by id, so downstream timing metrics see real wall-clock values.
func restoreOriginalPerformanceNotes(warped *notemodel.AlignmentResult, original *notemodel.Performance) *notemodel.AlignmentResult {
	byID := make(map[string]notemodel.PerformanceNote, len(original.Notes))
	for _, n := range original.Notes {
		byID[n.ID] = n
	}

	result := &notemodel.AlignmentResult{
		NormalizedScore: warped.NormalizedScore,
		TotalCost:       warped.TotalCost,
		Missed:          warped.Missed,
	}
	for _, p := range warped.Pairs {
		orig, ok := byID[p.PerformanceNote.ID]
		if !ok {
			orig = p.PerformanceNote
		}
		result.Pairs = append(result.Pairs, notemodel.AlignedPair{
			ScoreNote:       p.ScoreNote,
			PerformanceNote: orig,
			Confidence:      p.Confidence,
			TimingDevMs:     orig.StartTimeMs - p.ScoreNote.StartTimeMs,
			TimingDevBeats:  p.TimingDevBeats,
		})
	}
	for _, e := range warped.Extra {
		orig, ok := byID[e.ID]
		if !ok {
			orig = e
		}
		result.Extra = append(result.Extra, orig)
	}
	return result
}

func sortPairsByScoreTick(pairs []notemodel.AlignedPair) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].ScoreNote.StartTick < pairs[j-1].ScoreNote.StartTick; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

func sortMissedByScoreTick(missed []notemodel.MissedNote) {
	for i := 1; i < len(missed); i++ {
		for j := i; j > 0 && missed[j].Expected.StartTick < missed[j-1].Expected.StartTick; j-- {
			missed[j], missed[j-1] = missed[j-1], missed[j]
		}
	}
}
