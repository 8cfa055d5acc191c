package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch   = errors.New("input shape mismatch")
	ErrInvalidWeights  = errors.New("invalid weights")
	ErrNonNumericInput = errors.New("non-numeric input")
)

// ShapeError reports inconsistent row or column counts between evaluation inputs.
type ShapeError struct {
	Field string
	Want  int
	Got   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %d entries, got %d", e.Field, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// WeightError reports a weight vector that cannot be used or rescaled.
type WeightError struct {
	Index  int // -1 when the problem is the vector as a whole
	Reason string
}

func (e *WeightError) Error() string {
	if e.Index < 0 {
		return "weights: " + e.Reason
	}
	return fmt.Sprintf("weight %d: %s", e.Index, e.Reason)
}

func (e *WeightError) Unwrap() error { return ErrInvalidWeights }

// InputError reports a score or weight that is not a finite real number.
// Row is -1 for inputs that are not part of the score matrix.
type InputError struct {
	Field string
	Row   int
	Col   int
	Value string
}

func (e *InputError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: %q is not a number", e.Field, e.Value)
	}
	return fmt.Sprintf("%s[%d][%d]: %q is not a number", e.Field, e.Row, e.Col, e.Value)
}

func (e *InputError) Unwrap() error { return ErrNonNumericInput }
