package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS evaluation_history (
			id               UUID PRIMARY KEY,
			seq              BIGSERIAL,
			integration_pair TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			strategies       JSONB NOT NULL,
			weights          JSONB NOT NULL,
			scores           JSONB NOT NULL,
			final_results    JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate evaluation_history: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS evaluation_history_pair_idx
			ON evaluation_history (integration_pair, seq)`)
	if err != nil {
		return fmt.Errorf("migrate evaluation_history index: %w", err)
	}
	return nil
}

const recordColumns = `id, integration_pair, created_at, strategies, weights, scores, final_results`

func (s *PostgresStore) AppendRecord(ctx context.Context, rec *Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	strategiesJSON, err := json.Marshal(rec.Strategies)
	if err != nil {
		return err
	}
	weightsJSON, err := json.Marshal(rec.Weights)
	if err != nil {
		return err
	}
	scoresJSON, err := json.Marshal(rec.Scores)
	if err != nil {
		return err
	}
	resultsJSON, err := json.Marshal(rec.FinalResults)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO evaluation_history (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.IntegrationPair, rec.Timestamp,
		strategiesJSON, weightsJSON, scoresJSON, resultsJSON,
	)
	return err
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter HistoryFilter) ([]*Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	query := `SELECT ` + recordColumns + ` FROM evaluation_history WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.IntegrationPair != "" {
		n++
		query += fmt.Sprintf(" AND integration_pair = $%d", n)
		args = append(args, filter.IntegrationPair)
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	// Selected newest first so LIMIT keeps the latest; hand back oldest first.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		r := &Record{}
		var strategiesJSON, weightsJSON, scoresJSON, resultsJSON []byte
		if err := rows.Scan(
			&r.ID, &r.IntegrationPair, &r.Timestamp,
			&strategiesJSON, &weightsJSON, &scoresJSON, &resultsJSON,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(strategiesJSON, &r.Strategies); err != nil {
			return nil, fmt.Errorf("decode strategies: %w", err)
		}
		if err := json.Unmarshal(weightsJSON, &r.Weights); err != nil {
			return nil, fmt.Errorf("decode weights: %w", err)
		}
		if err := json.Unmarshal(scoresJSON, &r.Scores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
		if err := json.Unmarshal(resultsJSON, &r.FinalResults); err != nil {
			return nil, fmt.Errorf("decode final results: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
