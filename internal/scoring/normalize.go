package scoring

import "math"

// DegenerateValue is assigned to every entry of a column whose values all tie,
// and to columns with an unrecognised direction.
const DegenerateValue = 0.5

// Normalize min-max scales each column of scores into [0,1].
//
//	max:  (v - min) / (max - min)
//	min:  (max - v) / (max - min)
//
// A zero-range column is set to DegenerateValue regardless of direction, and so
// is any column whose direction is neither Maximize nor Minimize. The result
// has the same shape as scores; inputs are not modified.
func Normalize(scores [][]float64, directions []Direction) [][]float64 {
	out := make([][]float64, len(scores))
	for r := range scores {
		out[r] = make([]float64, len(scores[r]))
	}
	if len(scores) == 0 {
		return out
	}

	cols := len(scores[0])
	for c := 0; c < cols; c++ {
		lo, hi, ok := columnBounds(scores, c)
		if !ok {
			continue
		}
		// Halve the column when its range overflows float64.
		scale := 1.0
		if math.IsInf(hi-lo, 0) {
			scale = 0.5
		}
		lo, hi = lo*scale, hi*scale
		span := hi - lo

		dir := Neutral
		if c < len(directions) {
			dir = directions[c]
		}

		for r := range scores {
			if c >= len(scores[r]) {
				continue
			}
			v := scores[r][c] * scale
			switch {
			case span == 0:
				out[r][c] = DegenerateValue
			case dir == Maximize:
				out[r][c] = clamp((v-lo)/span, 0, 1)
			case dir == Minimize:
				out[r][c] = clamp((hi-v)/span, 0, 1)
			default:
				out[r][c] = DegenerateValue
			}
		}
	}
	return out
}

// NormalizeUniform normalises every column as "higher is better".
func NormalizeUniform(scores [][]float64) [][]float64 {
	if len(scores) == 0 {
		return Normalize(scores, nil)
	}
	return Normalize(scores, UniformDirections(len(scores[0])))
}

func columnBounds(scores [][]float64, c int) (lo, hi float64, ok bool) {
	for r := range scores {
		if c >= len(scores[r]) {
			continue
		}
		v := scores[r][c]
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return DegenerateValue
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
