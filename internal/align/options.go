// Package align implements the DTW, GSA, and Hybrid alignment
// strategies that pair a ground-truth score against a captured
// performance.
package align

// Mode names an alignment span behavior. Options carries it, but no
// strategy in this package reads it: DTW, GSA and Hybrid always align
// both inputs end to end, whatever the value.
type Mode int

const (
	// Global aligns the entire length of both inputs.
	Global Mode = iota
	// Local names best-scoring-subregion alignment.
	Local
	// SemiGlobal names alignment with free end-gaps on one side.
	SemiGlobal
)

func (m Mode) String() string {
	switch m {
	case Global:
		return "global"
	case Local:
		return "local"
	case SemiGlobal:
		return "semi-global"
	default:
		return "unknown"
	}
}

// Options bundles the tunable parameters shared by all alignment
// strategies. This is an explicit record, not an ad-hoc key-value map.
type Options struct {
	MaxTimingDeviationMs float64
	PitchWeight          float64
	TimingWeight         float64
	VelocityWeight       float64
	GapPenalty           float64
	WrongOctavePenalty   float64
	AllowTempoFlexibility bool
	MaxTempoDeviation    float64
	Mode                 Mode
	LocalWindowMs        float64
	RelaxGraceNoteTiming bool
	AllowOctaveErrors    bool

	// MaxMatrixCells bounds N*M for any single alignment call; exceeding
	// it returns a TooLargeError instead of attempting the computation.
	MaxMatrixCells int
}

// DefaultOptions returns the spec-documented default option set.
func DefaultOptions() Options {
	return Options{
		MaxTimingDeviationMs:  500,
		PitchWeight:           0.6,
		TimingWeight:          0.3,
		VelocityWeight:        0.1,
		GapPenalty:            1.0,
		WrongOctavePenalty:    0.3,
		AllowTempoFlexibility: true,
		MaxTempoDeviation:     0.3,
		Mode:                  Global,
		LocalWindowMs:         5000,
		RelaxGraceNoteTiming:  true,
		AllowOctaveErrors:     true,
		MaxMatrixCells:        1_000_000,
	}
}

// StrictOptions tightens timing tolerance and removes octave-error leniency.
func StrictOptions() Options {
	o := DefaultOptions()
	o.MaxTimingDeviationMs = 100
	o.GapPenalty = 1.5
	o.AllowOctaveErrors = false
	return o
}

// BeginnerOptions relaxes timing tolerance and octave-error penalties.
func BeginnerOptions() Options {
	o := DefaultOptions()
	o.MaxTimingDeviationMs = 1000
	o.GapPenalty = 0.5
	o.WrongOctavePenalty = 0.1
	return o
}
