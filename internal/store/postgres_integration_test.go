//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	_, _ = s.pool.Exec(ctx, "TRUNCATE evaluation_history")
	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE evaluation_history")
		s.Close()
	})

	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupTestDB(t)
	testStore(t, s)
}

func TestPostgresRecordRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	rec := sampleRecord(t, "ERP-CRM", time.Now().Truncate(time.Microsecond))
	if err := s.AppendRecord(ctx, rec); err != nil {
		t.Fatalf("AppendRecord failed: %v", err)
	}

	got, err := s.ListRecords(ctx, HistoryFilter{IntegrationPair: "ERP-CRM"})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ID != rec.ID {
		t.Errorf("expected id %s, got %s", rec.ID, got[0].ID)
	}
	if !got[0].Timestamp.Equal(rec.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", rec.Timestamp, got[0].Timestamp)
	}
	if len(got[0].FinalResults) != 2 || got[0].FinalResults[1].Strategy != "B" {
		t.Errorf("unexpected final results: %+v", got[0].FinalResults)
	}
}
