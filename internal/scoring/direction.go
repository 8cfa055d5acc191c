package scoring

import "strings"

// Direction says whether higher or lower raw values are preferred for a criterion.
type Direction string

const (
	Maximize Direction = "max"
	Minimize Direction = "min"
	// Neutral marks a criterion on which every strategy ties. It is detected,
	// never chosen, and normalises to 0.5 like any unrecognised direction.
	Neutral Direction = "neutral"
)

// ParseDirection maps user-facing spellings onto a Direction. Unknown values are
// kept as-is; Normalize treats them as degenerate rather than rejecting them.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "maximize", "maximise", "higher":
		return Maximize
	case "min", "minimize", "minimise", "lower":
		return Minimize
	case "neutral":
		return Neutral
	default:
		return Direction(strings.TrimSpace(s))
	}
}

// Known reports whether d is Maximize or Minimize.
func (d Direction) Known() bool {
	return d == Maximize || d == Minimize
}

// UniformDirections returns n Maximize entries, the implicit "higher is better"
// setting of the simple evaluation mode.
func UniformDirections(n int) []Direction {
	out := make([]Direction, n)
	for i := range out {
		out[i] = Maximize
	}
	return out
}
