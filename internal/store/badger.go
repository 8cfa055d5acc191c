package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

const historyPrefix = "history/"

// BadgerStore persists history in an embedded BadgerDB. Keys are
// history/<escaped pair>/<unix nanos>/<id> so a prefix scan returns one
// pair's records oldest first.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures OpenBadgerStore. Path is ignored when InMemory is set.
type BadgerOptions struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func OpenBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("badger store: path is required")
		}
		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", opts.Path, err)
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithSyncWrites(opts.SyncWrites)
	if opts.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{logger: opts.Logger})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func recordKey(rec *Record) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/%s",
		historyPrefix, url.PathEscape(rec.IntegrationPair), rec.Timestamp.UnixNano(), rec.ID))
}

// closedErr maps badger's closed-database error onto ErrClosed.
func closedErr(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

func (s *BadgerStore) AppendRecord(_ context.Context, rec *Record) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec), data)
	})
	return closedErr(err)
}

func (s *BadgerStore) ListRecords(_ context.Context, filter HistoryFilter) ([]*Record, error) {
	if s.db.IsClosed() {
		return nil, ErrClosed
	}
	prefix := []byte(historyPrefix)
	if filter.IntegrationPair != "" {
		prefix = []byte(historyPrefix + url.PathEscape(filter.IntegrationPair) + "/")
	}

	var out []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &Record{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			}); err != nil {
				return fmt.Errorf("decode history record %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, closedErr(err)
	}

	// Keys group by pair first; restore global time order for unfiltered listings.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return applyLimit(out, filter.Limit), nil
}

func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
