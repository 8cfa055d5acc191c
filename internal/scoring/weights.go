package scoring

import (
	"math"
)

// DefaultWeightTolerance is how far a weight vector may drift from summing to
// 1.0 before RescaleWeights divides it through by its total.
const DefaultWeightTolerance = 0.01

// WeightVector holds one non-negative weight per criterion, in criterion order.
type WeightVector []float64

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// Validate checks that every weight is finite and non-negative and that the
// vector does not sum to zero. It does not require a sum of 1.0.
func (w WeightVector) Validate() error {
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &WeightError{Index: i, Reason: "not a finite number"}
		}
		if v < 0 {
			return &WeightError{Index: i, Reason: "negative weight"}
		}
	}
	if w.Sum() == 0 {
		return &WeightError{Index: -1, Reason: "weights sum to zero"}
	}
	return nil
}

// RescaleWeights divides every weight by the vector total when the total differs
// from 1.0 by more than tolerance. The second return value reports whether a
// rescale happened. The input slice is never modified.
func RescaleWeights(weights []float64, tolerance float64) ([]float64, bool, error) {
	w := WeightVector(weights)
	if err := w.Validate(); err != nil {
		return nil, false, err
	}

	out := make([]float64, len(w))
	copy(out, w)

	total := w.Sum()
	if math.Abs(total-1.0) <= tolerance {
		return out, false, nil
	}
	for i := range out {
		out[i] /= total
	}
	return out, true, nil
}
