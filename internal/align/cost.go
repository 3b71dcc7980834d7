package align

import "github.com/pianoflow/pianoeval/internal/notemodel"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
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

func semitoneDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}

// dtwPitchCost is the pitch term of the DTW match cost, on [0, pitchWeight].
func dtwPitchCost(scorePitch, perfPitch int, opt Options) float64 {
	if scorePitch == perfPitch {
		return 0
	}
	scoreClass := ((scorePitch % 12) + 12) % 12
	perfClass := ((perfPitch % 12) + 12) % 12
	if scoreClass == perfClass {
		return opt.WrongOctavePenalty * opt.PitchWeight
	}
	dist := float64(semitoneDistance(scorePitch, perfPitch))
	return minF(dist/12.0, 1.0) * opt.PitchWeight
}

// dtwTimingCost is the timing term of the DTW match cost, on [0, timingWeight].
func dtwTimingCost(deltaMs float64, isGraceNote bool, opt Options) float64 {
	cost := minF(abs(deltaMs)/opt.MaxTimingDeviationMs, 1.0) * opt.TimingWeight
	if isGraceNote && opt.RelaxGraceNoteTiming {
		cost *= 0.3
	}
	return cost
}

// dtwVelocityCost is the velocity term of the DTW match cost, on [0, velocityWeight].
func dtwVelocityCost(scoreVel, perfVel int, opt Options) float64 {
	return abs(float64(scoreVel-perfVel)) / 127.0 * opt.VelocityWeight
}

// dtwMatchCost is the full three-term weighted DTW match cost for
// aligning a score note against a performance note.
func dtwMatchCost(s notemodel.ScoreNote, p notemodel.PerformanceNote, opt Options) float64 {
	pitch := dtwPitchCost(s.Pitch, p.Pitch, opt)
	timing := dtwTimingCost(p.StartTimeMs-s.StartTimeMs, s.IsGraceNote, opt)
	velocity := dtwVelocityCost(s.Velocity, p.Velocity, opt)
	return pitch + timing + velocity
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
