package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

// Step is the screen an interactive session is on.
type Step int

const (
	StepWelcome Step = iota
	StepSetup
	StepScores
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepSetup:
		return "setup"
	case StepScores:
		return "scores"
	case StepResults:
		return "results"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ErrWrongStep is returned when an action is not valid on the current step.
var ErrWrongStep = errors.New("action not valid at this step")

// State is the explicit state of one interactive evaluation: welcome → setup
// (strategy names and weights) → scores → results. It is owned by a single
// caller and is not safe for concurrent use.
type State struct {
	eval *Evaluator

	step            Step
	pair            string
	strategyCount   int
	strategies      []string
	weights         []float64
	weightsRescaled bool
	scores          [][]float64
	outcome         *Outcome
}

func NewState(eval *Evaluator) *State {
	return &State{eval: eval}
}

func (s *State) Step() Step {
	return s.step
}

func (s *State) IntegrationPair() string {
	return s.pair
}

func (s *State) StrategyCount() int {
	return s.strategyCount
}

func (s *State) Criteria() []scoring.Criterion {
	return s.eval.Criteria()
}

// Strategies returns the confirmed strategy names.
func (s *State) Strategies() []string {
	return append([]string(nil), s.strategies...)
}

// Weights returns the confirmed weights, already rescaled if needed.
func (s *State) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Scores returns the score table of the last successful calculation.
func (s *State) Scores() [][]float64 {
	out := make([][]float64, len(s.scores))
	for i, row := range s.scores {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// WeightsRescaled reports whether Configure had to rescale the entered weights.
func (s *State) WeightsRescaled() bool { return s.weightsRescaled }

// Outcome returns the last successful calculation, or nil.
func (s *State) Outcome() *Outcome { return s.outcome }

// Start leaves the welcome step once a valid strategy count is entered.
func (s *State) Start(pair string, strategyCount int) error {
	if s.step != StepWelcome {
		return fmt.Errorf("%w: start from %s", ErrWrongStep, s.step)
	}
	if err := s.eval.CheckStrategyCount(strategyCount); err != nil {
		return err
	}
	s.pair = pair
	s.strategyCount = strategyCount
	s.step = StepSetup
	return nil
}

// Configure confirms strategy names and criterion weights and moves to the
// score step. Weights are rescaled when they do not sum to 1.0 within the
// configured tolerance; WeightsRescaled reports when that happened.
func (s *State) Configure(names []string, weights []float64) error {
	if s.step != StepSetup {
		return fmt.Errorf("%w: configure from %s", ErrWrongStep, s.step)
	}
	clean, err := CleanNames(names)
	if err != nil {
		return err
	}
	if len(clean) != s.strategyCount {
		return &scoring.ShapeError{Field: "strategies", Want: s.strategyCount, Got: len(clean)}
	}
	criteria := s.eval.Criteria()
	if len(weights) != len(criteria) {
		return &scoring.ShapeError{Field: "weights", Want: len(criteria), Got: len(weights)}
	}
	w, rescaled, err := scoring.RescaleWeights(weights, s.eval.Config().WeightTolerance)
	if err != nil {
		return err
	}

	s.strategies = clean
	s.weights = w
	s.weightsRescaled = rescaled
	s.step = StepScores
	return nil
}

// ConfigureTiers is Configure with Low/Medium/High weights.
func (s *State) ConfigureTiers(names []string, tiers []Tier) error {
	w, err := TierWeights(tiers, s.eval.Config().TierWeights)
	if err != nil {
		return err
	}
	return s.Configure(names, w)
}

// Calculate scores the entered table and moves to the results step. On error
// the state stays on the score step so the user can correct and resubmit.
func (s *State) Calculate(ctx context.Context, scores [][]float64) (*Outcome, error) {
	if s.step != StepScores {
		return nil, fmt.Errorf("%w: calculate from %s", ErrWrongStep, s.step)
	}
	out, err := s.eval.Run(ctx, Request{
		IntegrationPair: s.pair,
		Strategies:      s.strategies,
		Weights:         s.weights,
		Scores:          scores,
	})
	if err != nil {
		return nil, err
	}
	s.scores = scores
	s.outcome = out
	s.step = StepResults
	return out, nil
}

// Back returns to the previous step. Entered data is kept so it can be edited.
func (s *State) Back() {
	if s.step > StepWelcome {
		s.step--
	}
}

// Reset discards everything and returns to the welcome step.
func (s *State) Reset() {
	*s = State{eval: s.eval}
}
