package align

import "github.com/pianoflow/pianoeval/internal/notemodel"

// voicePart is one monophonic line extracted from a (possibly
// polyphonic) score, together with the pitch range its score notes span.
type voicePart struct {
	Voice      int
	ScoreNotes []notemodel.ScoreNote
	MinPitch   int
	MaxPitch   int
}

// separateVoices implements spec.md §4.4's voice-separation rule. It
// trusts an explicit voice assignment (any score note with voice >= 1)
// and otherwise clusters by simultaneity and ranks by pitch.
func separateVoices(score *notemodel.Score) []voicePart {
	if hasExplicitVoices(score) {
		return partsFromExplicitVoices(score)
	}
	return partsFromAutoDetection(score)
}

func hasExplicitVoices(score *notemodel.Score) bool {
	for _, n := range score.Notes {
		if n.Voice >= 1 {
			return true
		}
	}
	return false
}

func partsFromExplicitVoices(score *notemodel.Score) []voicePart {
	byVoice := make(map[int][]notemodel.ScoreNote)
	for _, n := range score.Notes {
		v := n.Voice
		if v < 1 {
			v = 1
		}
		byVoice[v] = append(byVoice[v], n)
	}
	return buildParts(byVoice)
}

// partsFromAutoDetection clusters notes by simultaneity (same start
// tick within a +/-10 tick window) and assigns pitch ranks to voices:
// with V the largest cluster size, the lowest pitch in each cluster
// goes to voice V and each higher pitch to the next lower voice, so
// only a cluster of size V puts its highest pitch in voice 1 (soprano).
func partsFromAutoDetection(score *notemodel.Score) []voicePart {
	clusters := clusterBySimultaneity(score.Notes, 10)

	maxPolyphony := 1
	for _, c := range clusters {
		if len(c) > maxPolyphony {
			maxPolyphony = len(c)
		}
	}

	byVoice := make(map[int][]notemodel.ScoreNote)
	if maxPolyphony == 1 {
		for _, c := range clusters {
			byVoice[1] = append(byVoice[1], c...)
		}
		return buildParts(byVoice)
	}

	for _, cluster := range clusters {
		sorted := make([]notemodel.ScoreNote, len(cluster))
		copy(sorted, cluster)
		sortNotesByPitchAsc(sorted)
		for rank, n := range sorted {
			voice := maxPolyphony - rank
			if voice < 1 {
				voice = 1
			}
			byVoice[voice] = append(byVoice[voice], n)
		}
	}
	return buildParts(byVoice)
}

func clusterBySimultaneity(notes []notemodel.ScoreNote, tickWindow int64) [][]notemodel.ScoreNote {
	sorted := make([]notemodel.ScoreNote, len(notes))
	copy(sorted, notes)
	sortNotesByTickAsc(sorted)

	var clusters [][]notemodel.ScoreNote
	var current []notemodel.ScoreNote
	for _, n := range sorted {
		if len(current) == 0 {
			current = []notemodel.ScoreNote{n}
			continue
		}
		anchor := current[0].StartTick
		if n.StartTick-anchor <= tickWindow {
			current = append(current, n)
		} else {
			clusters = append(clusters, current)
			current = []notemodel.ScoreNote{n}
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}
	return clusters
}

func sortNotesByTickAsc(notes []notemodel.ScoreNote) {
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j].StartTick < notes[j-1].StartTick; j-- {
			notes[j], notes[j-1] = notes[j-1], notes[j]
		}
	}
}

func sortNotesByPitchAsc(notes []notemodel.ScoreNote) {
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j].Pitch < notes[j-1].Pitch; j-- {
			notes[j], notes[j-1] = notes[j-1], notes[j]
		}
	}
}

func buildParts(byVoice map[int][]notemodel.ScoreNote) []voicePart {
	var parts []voicePart
	for voice, notes := range byVoice {
		if len(notes) == 0 {
			continue
		}
		sortNotesByTickAsc(notes)
		minP, maxP := notes[0].Pitch, notes[0].Pitch
		for _, n := range notes {
			if n.Pitch < minP {
				minP = n.Pitch
			}
			if n.Pitch > maxP {
				maxP = n.Pitch
			}
		}
		parts = append(parts, voicePart{Voice: voice, ScoreNotes: notes, MinPitch: minP, MaxPitch: maxP})
	}
	sortPartsByVoiceAsc(parts)
	return parts
}

func sortPartsByVoiceAsc(parts []voicePart) {
	for i := 1; i < len(parts); i++ {
		for j := i; j > 0 && parts[j].Voice < parts[j-1].Voice; j-- {
			parts[j], parts[j-1] = parts[j-1], parts[j]
		}
	}
}

// partitionPerformanceByVoice implements spec.md §4.4's performance
// partitioning rule: each performance note goes to the voice whose
// score pitch range [min,max] it sits closest to.
func partitionPerformanceByVoice(parts []voicePart, performance *notemodel.Performance) map[int][]notemodel.PerformanceNote {
	byVoice := make(map[int][]notemodel.PerformanceNote)
	for _, n := range performance.Notes {
		bestVoice := parts[0].Voice
		bestDist := distanceToRange(n.Pitch, parts[0].MinPitch, parts[0].MaxPitch)
		for _, part := range parts[1:] {
			dist := distanceToRange(n.Pitch, part.MinPitch, part.MaxPitch)
			if dist < bestDist {
				bestDist = dist
				bestVoice = part.Voice
			}
		}
		byVoice[bestVoice] = append(byVoice[bestVoice], n)
	}
	for voice := range byVoice {
		sortPerfByTimeAsc(byVoice[voice])
	}
	return byVoice
}

func distanceToRange(pitch, minP, maxP int) int {
	if pitch >= minP && pitch <= maxP {
		return 0
	}
	dMin := semitoneDistance(pitch, minP)
	dMax := semitoneDistance(pitch, maxP)
	if dMin < dMax {
		return dMin
	}
	return dMax
}

func sortPerfByTimeAsc(notes []notemodel.PerformanceNote) {
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j].StartTimeMs < notes[j-1].StartTimeMs; j-- {
			notes[j], notes[j-1] = notes[j-1], notes[j]
		}
	}
}
