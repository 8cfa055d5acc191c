package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Criterion is one weighted dimension of comparison.
type Criterion struct {
	Name        string    `json:"name" yaml:"name"`
	Direction   Direction `json:"direction" yaml:"direction"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// FactorResult captures one criterion's contribution to a strategy's score.
type FactorResult struct {
	Name       string  `json:"name"`
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
}

// Entry is the final score of a single strategy.
type Entry struct {
	Strategy string         `json:"strategy"`
	Score    float64        `json:"score"`
	Factors  []FactorResult `json:"factors,omitempty"`
}

// Result maps strategy names to final scores, in input order. It is never
// mutated after Evaluate returns it.
type Result struct {
	Entries []Entry `json:"entries"`
}

// Scorer evaluates strategies against a fixed, ordered set of criteria.
type Scorer struct {
	criteria []Criterion
}

// NewScorer creates a Scorer for the given criteria. The slice is copied.
func NewScorer(criteria []Criterion) *Scorer {
	c := make([]Criterion, len(criteria))
	copy(c, criteria)
	return &Scorer{criteria: c}
}

// Criteria returns a copy of the scorer's criteria.
func (s *Scorer) Criteria() []Criterion {
	c := make([]Criterion, len(s.criteria))
	copy(c, s.criteria)
	return c
}

// Directions returns the per-criterion directions in criterion order.
func (s *Scorer) Directions() []Direction {
	d := make([]Direction, len(s.criteria))
	for i, c := range s.criteria {
		d[i] = c.Direction
	}
	return d
}

// Score evaluates the strategies using the scorer's criteria directions and
// names each factor after its criterion.
func (s *Scorer) Score(names []string, weights []float64, scores [][]float64) (*Result, error) {
	labels := make([]string, len(s.criteria))
	for i, c := range s.criteria {
		labels[i] = c.Name
	}
	return evaluate(names, weights, scores, s.Directions(), labels)
}

// Evaluate normalises scores per criterion direction and returns each
// strategy's weighted sum. Weights are used as given; rescaling them to sum to
// 1.0 is the caller's job (see RescaleWeights). Any shape, weight or numeric
// problem aborts the evaluation and no Result is returned.
func Evaluate(names []string, weights []float64, scores [][]float64, directions []Direction) (*Result, error) {
	return evaluate(names, weights, scores, directions, nil)
}

func evaluate(names []string, weights []float64, scores [][]float64, directions []Direction, labels []string) (*Result, error) {
	if err := validateShape(names, weights, scores, directions); err != nil {
		return nil, err
	}
	if err := WeightVector(weights).Validate(); err != nil {
		return nil, err
	}
	for r, row := range scores {
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InputError{Field: "scores", Row: r, Col: c, Value: fmt.Sprint(v)}
			}
		}
	}

	norm := Normalize(scores, directions)

	result := &Result{Entries: make([]Entry, len(names))}
	for r, name := range names {
		factors := make([]FactorResult, len(weights))
		var total float64
		for c := range weights {
			label := fmt.Sprintf("criterion_%d", c+1)
			if c < len(labels) {
				label = labels[c]
			}
			factors[c] = FactorResult{
				Name:       label,
				Raw:        scores[r][c],
				Normalized: norm[r][c],
				Weight:     weights[c],
				Weighted:   norm[r][c] * weights[c],
			}
			total += factors[c].Weighted
		}
		result.Entries[r] = Entry{Strategy: name, Score: total, Factors: factors}
	}
	return result, nil
}

func validateShape(names []string, weights []float64, scores [][]float64, directions []Direction) error {
	if len(names) == 0 {
		return &ShapeError{Field: "strategies", Want: 1, Got: 0}
	}
	if len(scores) != len(names) {
		return &ShapeError{Field: "score rows", Want: len(names), Got: len(scores)}
	}
	if len(directions) == 0 {
		return &ShapeError{Field: "criteria", Want: 1, Got: 0}
	}
	if len(weights) != len(directions) {
		return &ShapeError{Field: "weights", Want: len(directions), Got: len(weights)}
	}
	for r, row := range scores {
		if len(row) != len(directions) {
			return &ShapeError{Field: fmt.Sprintf("scores[%d]", r), Want: len(directions), Got: len(row)}
		}
	}
	return nil
}

// Len returns the number of strategies in the result.
func (r *Result) Len() int { return len(r.Entries) }

// Scores returns the result as a strategy → score map. Iterate Entries when
// order matters.
func (r *Result) Scores() map[string]float64 {
	m := make(map[string]float64, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Strategy] = e.Score
	}
	return m
}

// Best returns the highest-scoring entry. Ties go to the strategy that came
// first in input order.
func (r *Result) Best() (Entry, bool) {
	if len(r.Entries) == 0 {
		return Entry{}, false
	}
	best := r.Entries[0]
	for _, e := range r.Entries[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}

// Tied returns every entry that shares the best score, in input order.
func (r *Result) Tied() []Entry {
	best, ok := r.Best()
	if !ok {
		return nil
	}
	var out []Entry
	for _, e := range r.Entries {
		if e.Score == best.Score {
			out = append(out, e)
		}
	}
	return out
}

// Ranked returns the entries ordered by score, highest first. Equal scores keep
// their input order.
func (r *Result) Ranked() []Entry {
	out := make([]Entry, len(r.Entries))
	copy(out, r.Entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
