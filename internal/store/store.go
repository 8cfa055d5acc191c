package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// FinalScore is one strategy's score as persisted in a history record.
type FinalScore struct {
	Strategy string  `json:"strategy"`
	Score    float64 `json:"score"`
}

// Record is one successful evaluation as appended to the session history.
type Record struct {
	ID              uuid.UUID    `json:"id"`
	Timestamp       time.Time    `json:"timestamp"`
	IntegrationPair string       `json:"integration_pair_name"`
	Strategies      []string     `json:"strategies"`
	Weights         []float64    `json:"weights"`
	Scores          [][]float64  `json:"scores"`
	FinalResults    []FinalScore `json:"final_results"`
}

// NewRecord builds a history record from an evaluation's inputs and result.
// All slices are copied so the record never aliases caller-owned data.
func NewRecord(pair string, strategies []string, weights []float64, scores [][]float64, result *scoring.Result, now time.Time) *Record {
	rec := &Record{
		ID:              uuid.New(),
		Timestamp:       now.UTC(),
		IntegrationPair: pair,
		Strategies:      append([]string(nil), strategies...),
		Weights:         append([]float64(nil), weights...),
		Scores:          make([][]float64, len(scores)),
	}
	for i, row := range scores {
		rec.Scores[i] = append([]float64(nil), row...)
	}
	if result != nil {
		rec.FinalResults = make([]FinalScore, len(result.Entries))
		for i, e := range result.Entries {
			rec.FinalResults[i] = FinalScore{Strategy: e.Strategy, Score: e.Score}
		}
	}
	return rec
}

// clone returns a deep copy of r that shares no slices with it.
func (r *Record) clone() *Record {
	cp := *r
	cp.Strategies = append([]string(nil), r.Strategies...)
	cp.Weights = append([]float64(nil), r.Weights...)
	if r.Scores != nil {
		cp.Scores = make([][]float64, len(r.Scores))
		for i, row := range r.Scores {
			cp.Scores[i] = append([]float64(nil), row...)
		}
	}
	cp.FinalResults = append([]FinalScore(nil), r.FinalResults...)
	return &cp
}

// HistoryFilter narrows a history listing. An empty IntegrationPair matches all pairs.
type HistoryFilter struct {
	IntegrationPair string
	Limit           int
}

// Store is an append-only evaluation history. Records come back oldest first,
// and neither appended nor listed records alias the store's own copy. Every
// method except Close returns ErrClosed once the store is closed; Close may be
// called more than once.
type Store interface {
	AppendRecord(ctx context.Context, rec *Record) error
	ListRecords(ctx context.Context, filter HistoryFilter) ([]*Record, error)
	Close() error
}

// applyLimit keeps the newest limit records of an oldest-first slice.
func applyLimit(recs []*Record, limit int) []*Record {
	if limit > 0 && len(recs) > limit {
		return recs[len(recs)-limit:]
	}
	return recs
}
