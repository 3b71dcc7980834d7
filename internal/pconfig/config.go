// Package pconfig loads alignment and evaluator tuning parameters
// from a TOML document, falling back to library defaults when no
// file is present.
package pconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/evaluate"
)

// FileConfig is the on-disk shape of a pianoeval config file.
type FileConfig struct {
	Alignment AlignmentConfig `toml:"alignment"`
	Accuracy  AccuracyConfig  `toml:"accuracy"`
}

// AlignmentConfig mirrors align.Options for TOML (de)serialization.
type AlignmentConfig struct {
	MaxTimingDeviationMs  float64 `toml:"max_timing_deviation_ms"`
	PitchWeight           float64 `toml:"pitch_weight"`
	TimingWeight          float64 `toml:"timing_weight"`
	VelocityWeight        float64 `toml:"velocity_weight"`
	GapPenalty            float64 `toml:"gap_penalty"`
	WrongOctavePenalty    float64 `toml:"wrong_octave_penalty"`
	AllowTempoFlexibility bool    `toml:"allow_tempo_flexibility"`
	MaxTempoDeviation     float64 `toml:"max_tempo_deviation"`
	LocalWindowMs         float64 `toml:"local_window_ms"`
	RelaxGraceNoteTiming  bool    `toml:"relax_grace_note_timing"`
	AllowOctaveErrors     bool    `toml:"allow_octave_errors"`
	MaxMatrixCells        int     `toml:"max_matrix_cells"`
}

// AccuracyConfig mirrors evaluate.AccuracyWeights for TOML (de)serialization.
type AccuracyConfig struct {
	CorrectWeight float64 `toml:"correct_weight"`
	OctaveWeight  float64 `toml:"octave_weight"`
	MissedPenalty float64 `toml:"missed_penalty"`
	ExtraPenalty  float64 `toml:"extra_penalty"`
}

// Load reads a TOML config file at path and returns the corresponding
// align.Options and evaluate.AccuracyWeights. If the file does not
// exist, it returns align.DefaultOptions() and evaluate.DefaultWeights()
// with a nil error, mirroring the teacher's fallback-to-defaults shape.
func Load(path string) (align.Options, evaluate.AccuracyWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return align.DefaultOptions(), evaluate.DefaultWeights(), nil
		}
		return align.DefaultOptions(), evaluate.DefaultWeights(), fmt.Errorf("pconfig: read %s: %w", path, err)
	}

	var fc FileConfig
	meta, err := toml.Decode(string(data), &fc)
	if err != nil {
		return align.DefaultOptions(), evaluate.DefaultWeights(), fmt.Errorf("pconfig: parse %s: %w", path, err)
	}

	return toOptions(fc.Alignment, meta), toWeights(fc.Accuracy), nil
}

// toOptions overlays only the fields the config file actually set on
// top of align.DefaultOptions(). This needs meta.IsDefined for the
// bool fields: TOML's zero value for an absent bool is false, which
// would otherwise silently clobber a true default.
func toOptions(c AlignmentConfig, meta toml.MetaData) align.Options {
	opt := align.DefaultOptions()
	if c.MaxTimingDeviationMs != 0 {
		opt.MaxTimingDeviationMs = c.MaxTimingDeviationMs
	}
	if c.PitchWeight != 0 {
		opt.PitchWeight = c.PitchWeight
	}
	if c.TimingWeight != 0 {
		opt.TimingWeight = c.TimingWeight
	}
	if c.VelocityWeight != 0 {
		opt.VelocityWeight = c.VelocityWeight
	}
	if c.GapPenalty != 0 {
		opt.GapPenalty = c.GapPenalty
	}
	if c.WrongOctavePenalty != 0 {
		opt.WrongOctavePenalty = c.WrongOctavePenalty
	}
	if meta.IsDefined("alignment", "allow_tempo_flexibility") {
		opt.AllowTempoFlexibility = c.AllowTempoFlexibility
	}
	if c.MaxTempoDeviation != 0 {
		opt.MaxTempoDeviation = c.MaxTempoDeviation
	}
	if c.LocalWindowMs != 0 {
		opt.LocalWindowMs = c.LocalWindowMs
	}
	if meta.IsDefined("alignment", "relax_grace_note_timing") {
		opt.RelaxGraceNoteTiming = c.RelaxGraceNoteTiming
	}
	if meta.IsDefined("alignment", "allow_octave_errors") {
		opt.AllowOctaveErrors = c.AllowOctaveErrors
	}
	if c.MaxMatrixCells != 0 {
		opt.MaxMatrixCells = c.MaxMatrixCells
	}
	return opt
}

func toWeights(c AccuracyConfig) evaluate.AccuracyWeights {
	w := evaluate.DefaultWeights()
	if c.CorrectWeight != 0 {
		w.CorrectWeight = c.CorrectWeight
	}
	if c.OctaveWeight != 0 {
		w.OctaveWeight = c.OctaveWeight
	}
	if c.MissedPenalty != 0 {
		w.MissedPenalty = c.MissedPenalty
	}
	if c.ExtraPenalty != 0 {
		w.ExtraPenalty = c.ExtraPenalty
	}
	return w
}
