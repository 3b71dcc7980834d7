package align

import "fmt"

// AlignError is the base error type for alignment failures.
type AlignError interface {
	error
	IsAlignError()
}

// TooLargeError is returned when the cost matrix would exceed the
// configured cell budget. Callers may retry with a smaller input window
// or a larger MaxMatrixCells; Options.Mode does not change the matrix
// size.
type TooLargeError struct {
	ScoreNotes       int
	PerformanceNotes int
	Budget           int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("alignment matrix %d x %d = %d cells exceeds budget %d",
		e.ScoreNotes, e.PerformanceNotes, e.ScoreNotes*e.PerformanceNotes, e.Budget)
}
func (e *TooLargeError) IsAlignError() {}

func checkMatrixBudget(n, m, budget int) error {
	if budget > 0 && n*m > budget {
		return &TooLargeError{ScoreNotes: n, PerformanceNotes: m, Budget: budget}
	}
	return nil
}
