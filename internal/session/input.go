package session

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Strategist/internal/config"
	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

// Tier is a coarse importance level offered instead of a numeric weight.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ErrUnknownTier is returned for a weight tier other than low, medium or high.
var ErrUnknownTier = errors.New("unknown weight tier")

// ParseTier accepts low/medium/high in any case.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierLow:
		return TierLow, nil
	case TierMedium:
		return TierMedium, nil
	case TierHigh:
		return TierHigh, nil
	default:
		return "", fmt.Errorf("%w %q (want low, medium or high)", ErrUnknownTier, s)
	}
}

// TierWeights converts tiers into numeric weights using the configured mapping.
func TierWeights(tiers []Tier, mapping config.TierWeights) ([]float64, error) {
	out := make([]float64, len(tiers))
	for i, t := range tiers {
		switch t {
		case TierLow:
			out[i] = mapping.Low
		case TierMedium:
			out[i] = mapping.Medium
		case TierHigh:
			out[i] = mapping.High
		default:
			return nil, fmt.Errorf("weight %d: %w %q", i+1, ErrUnknownTier, t)
		}
	}
	return out, nil
}

// ParseNumber reads a form field as a real number. An empty field counts as 0.
func ParseNumber(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &scoring.InputError{Field: field, Row: -1, Value: s}
	}
	return v, nil
}

// ParseWeights parses one text field per criterion.
func ParseWeights(raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := ParseNumber(fmt.Sprintf("weights[%d]", i), s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParseScores parses a text score table, reporting the first bad cell with its position.
func ParseScores(raw [][]string) ([][]float64, error) {
	out := make([][]float64, len(raw))
	for r, row := range raw {
		out[r] = make([]float64, len(row))
		for c, s := range row {
			v, err := ParseNumber("scores", s)
			if err != nil {
				return nil, &scoring.InputError{Field: "scores", Row: r, Col: c, Value: strings.TrimSpace(s)}
			}
			out[r][c] = v
		}
	}
	return out, nil
}

// CleanNames trims strategy names and rejects blanks and duplicates, which
// would otherwise collide in the strategy → score mapping.
func CleanNames(names []string) ([]string, error) {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("strategy %d: name is required", i+1)
		}
		if seen[n] {
			return nil, fmt.Errorf("strategy %d: duplicate name %q", i+1, n)
		}
		seen[n] = true
		out[i] = n
	}
	return out, nil
}
