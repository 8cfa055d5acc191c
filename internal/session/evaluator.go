package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/Strategist/internal/config"
	"github.com/MikeSquared-Agency/Strategist/internal/hermes"
	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
	"github.com/MikeSquared-Agency/Strategist/internal/store"
)

// ErrStrategyCount is returned when the number of strategies is outside the configured bounds.
var ErrStrategyCount = errors.New("strategy count out of range")

// Exporter writes a finished result somewhere keyed by integration pair and
// returns where it went.
type Exporter interface {
	Write(pair string, result *scoring.Result) (string, error)
}

// Sinks receive a result after a successful evaluation. Any of them may be nil.
type Sinks struct {
	History store.Store
	Export  Exporter
	Events  hermes.Client
}

// Request is one evaluation as entered by the user. Weights are raw and are
// rescaled to sum to 1.0 when they drift past the configured tolerance.
type Request struct {
	IntegrationPair string
	Strategies      []string
	Weights         []float64
	Scores          [][]float64
}

// Outcome is a successful evaluation plus what happened to its side effects.
type Outcome struct {
	Strategies      []string
	Result          *scoring.Result
	Best            scoring.Entry
	Tied            []scoring.Entry
	Frontier        []string
	Weights         []float64
	WeightsRescaled bool
	Record          *store.Record
	ExportPath      string

	// Warnings joins sink failures. They never invalidate Result.
	Warnings error
}

// Evaluator runs evaluations against the configured criteria and fans results
// out to the sinks. It holds no per-evaluation state and is safe for
// concurrent use when its sinks are.
type Evaluator struct {
	cfg    config.EvaluationConfig
	scorer *scoring.Scorer
	sinks  Sinks
	logger *slog.Logger
	now    func() time.Time
}

func NewEvaluator(cfg config.EvaluationConfig, sinks Sinks, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		cfg:    cfg,
		scorer: scoring.NewScorer(cfg.Criteria),
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Criteria returns the criteria every request is scored against.
func (e *Evaluator) Criteria() []scoring.Criterion {
	return e.scorer.Criteria()
}

// Config returns the evaluation settings.
func (e *Evaluator) Config() config.EvaluationConfig {
	return e.cfg
}

// CheckStrategyCount validates n against the configured bounds.
func (e *Evaluator) CheckStrategyCount(n int) error {
	if n < e.cfg.MinStrategies || n > e.cfg.MaxStrategies {
		return fmt.Errorf("%w: enter a number between %d and %d, got %d",
			ErrStrategyCount, e.cfg.MinStrategies, e.cfg.MaxStrategies, n)
	}
	return nil
}

// Run validates and scores req, then appends history, writes the export and
// publishes an event. Nothing is persisted unless scoring succeeds.
func (e *Evaluator) Run(ctx context.Context, req Request) (*Outcome, error) {
	out, err := e.score(req)
	if err != nil {
		e.publishFailure(req.IntegrationPair, err)
		return nil, err
	}

	var warnings []error
	rec := store.NewRecord(req.IntegrationPair, out.Strategies, out.Weights, req.Scores, out.Result, e.now())
	out.Record = rec

	if e.sinks.History != nil {
		if err := e.sinks.History.AppendRecord(ctx, rec); err != nil {
			e.logger.Warn("failed to append history", "pair", req.IntegrationPair, "error", err)
			warnings = append(warnings, fmt.Errorf("history: %w", err))
		}
	}
	if e.sinks.Export != nil {
		path, err := e.sinks.Export.Write(req.IntegrationPair, out.Result)
		if err != nil {
			e.logger.Warn("failed to export results", "pair", req.IntegrationPair, "error", err)
			warnings = append(warnings, fmt.Errorf("export: %w", err))
		} else {
			out.ExportPath = path
		}
	}
	if e.sinks.Events != nil {
		if err := e.sinks.Events.Publish(hermes.SubjectEvaluationCompleted(req.IntegrationPair), completedEvent(rec, out)); err != nil {
			e.logger.Warn("failed to publish evaluation event", "pair", req.IntegrationPair, "error", err)
			warnings = append(warnings, fmt.Errorf("events: %w", err))
		}
	}
	out.Warnings = errors.Join(warnings...)

	e.logger.Info("evaluation completed",
		"pair", req.IntegrationPair,
		"strategies", len(req.Strategies),
		"best", out.Best.Strategy,
		"best_score", out.Best.Score,
		"tied", len(out.Tied),
		"weights_rescaled", out.WeightsRescaled,
	)
	return out, nil
}

func (e *Evaluator) score(req Request) (*Outcome, error) {
	names, err := CleanNames(req.Strategies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrShapeMismatch, err)
	}
	if err := e.CheckStrategyCount(len(names)); err != nil {
		return nil, err
	}

	weights, rescaled, err := scoring.RescaleWeights(req.Weights, e.cfg.WeightTolerance)
	if err != nil {
		return nil, err
	}

	result, err := e.scorer.Score(names, weights, req.Scores)
	if err != nil {
		return nil, err
	}

	best, _ := result.Best()
	return &Outcome{
		Strategies:      names,
		Result:          result,
		Best:            best,
		Tied:            result.Tied(),
		Frontier:        scoring.Frontier(names, req.Scores, e.scorer.Directions()),
		Weights:         weights,
		WeightsRescaled: rescaled,
	}, nil
}

func (e *Evaluator) publishFailure(pair string, err error) {
	if e.sinks.Events == nil {
		return
	}
	ev := hermes.EvaluationFailedEvent{
		IntegrationPair: pair,
		Kind:            ErrorKind(err),
		Error:           err.Error(),
		Timestamp:       e.now().UTC(),
	}
	if perr := e.sinks.Events.Publish(hermes.SubjectEvaluationFailed(pair), ev); perr != nil {
		e.logger.Warn("failed to publish evaluation failure", "pair", pair, "error", perr)
	}
}

func completedEvent(rec *store.Record, out *Outcome) hermes.EvaluationCompletedEvent {
	ev := hermes.EvaluationCompletedEvent{
		RecordID:        rec.ID.String(),
		IntegrationPair: rec.IntegrationPair,
		Best:            out.Best.Strategy,
		WeightsRescaled: out.WeightsRescaled,
		Timestamp:       rec.Timestamp,
	}
	if len(out.Tied) > 1 {
		for _, t := range out.Tied {
			ev.Tied = append(ev.Tied, t.Strategy)
		}
	}
	for _, fs := range rec.FinalResults {
		ev.Results = append(ev.Results, hermes.StrategyScore{Strategy: fs.Strategy, Score: fs.Score})
	}
	return ev
}

// ErrorKind classifies evaluation errors for metrics, events and exit codes.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, scoring.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, scoring.ErrInvalidWeights), errors.Is(err, ErrUnknownTier):
		return "invalid_weights"
	case errors.Is(err, scoring.ErrNonNumericInput):
		return "non_numeric_input"
	case errors.Is(err, ErrStrategyCount):
		return "strategy_count"
	default:
		return "internal"
	}
}

// IsInputError reports whether err was caused by the request rather than the system.
func IsInputError(err error) bool {
	k := ErrorKind(err)
	return k != "" && k != "internal"
}
