package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pianoflow/pianoeval/internal/notemodel"
)

func exactPair(measure int) notemodel.AlignedPair {
	return notemodel.AlignedPair{
		ScoreNote:       notemodel.ScoreNote{Pitch: 60, Measure: measure},
		PerformanceNote: notemodel.PerformanceNote{Pitch: 60},
	}
}

func octavePair(measure int) notemodel.AlignedPair {
	return notemodel.AlignedPair{
		ScoreNote:       notemodel.ScoreNote{Pitch: 60, Measure: measure},
		PerformanceNote: notemodel.PerformanceNote{Pitch: 72},
	}
}

func TestNoteAccuracyAllCorrect(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs: []notemodel.AlignedPair{exactPair(1), exactPair(1), exactPair(2)},
	}
	acc := NoteAccuracy(result, DefaultWeights())
	assert.Equal(t, 3, acc.Correct)
	assert.Equal(t, 0, acc.Missed)
	assert.Equal(t, 100.0, acc.Score)
	assert.Equal(t, GradeA, acc.Grade)
	assert.Len(t, acc.PerMeasureBreakdown, 2)
}

func TestNoteAccuracyWithMissesAndOctaves(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Pairs:  []notemodel.AlignedPair{exactPair(1), octavePair(1)},
		Missed: []notemodel.MissedNote{{Expected: notemodel.ScoreNote{Measure: 2}}},
	}
	acc := NoteAccuracy(result, DefaultWeights())
	assert.Equal(t, 1, acc.Correct)
	assert.Equal(t, 1, acc.OctaveErrors)
	assert.Equal(t, 1, acc.Missed)
	assert.NotEmpty(t, acc.Issues)
}

func TestNoteAccuracyEmpty(t *testing.T) {
	acc := NoteAccuracy(&notemodel.AlignmentResult{}, DefaultWeights())
	assert.Equal(t, 0.0, acc.Score)
	assert.Equal(t, 0, acc.TotalExpected)
	assert.NotEmpty(t, acc.Issues)
}

func TestNoteAccuracyScoreNeverNegative(t *testing.T) {
	result := &notemodel.AlignmentResult{
		Missed: []notemodel.MissedNote{{Expected: notemodel.ScoreNote{Measure: 1}}},
		Extra:  make([]notemodel.PerformanceNote, 10),
	}
	acc := NoteAccuracy(result, StrictWeights())
	assert.GreaterOrEqual(t, acc.Score, 0.0)
}

func TestGradeFromScore(t *testing.T) {
	assert.Equal(t, GradeA, gradeFromScore(95))
	assert.Equal(t, GradeB, gradeFromScore(85))
	assert.Equal(t, GradeC, gradeFromScore(75))
	assert.Equal(t, GradeD, gradeFromScore(65))
	assert.Equal(t, GradeF, gradeFromScore(10))
}

func TestGradeString(t *testing.T) {
	assert.Equal(t, "A", GradeA.String())
	assert.Equal(t, "F", GradeF.String())
}

func TestWeightPresetsDiffer(t *testing.T) {
	assert.NotEqual(t, DefaultWeights(), StrictWeights())
	assert.NotEqual(t, DefaultWeights(), LenientWeights())
}
