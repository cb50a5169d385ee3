package freshness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

const (
	recordPrefix    = "fresh\x00"
	watermarkPrefix = "wm\x00"
)

// BadgerConfig configures the durable store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// badgerLogger adapts slog to badger's logger interface.
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

// BadgerStore is a Store backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens or creates the database.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, apperrors.NewConfigError("freshness database path is required", nil)
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, apperrors.NewIOError("create freshness directory", err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.With(slog.String("component", "badger"))})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.NewIOError("open freshness database", err)
	}
	return &BadgerStore{db: db}, nil
}

func recordKeyBytes(entity string, cycle int) []byte {
	return []byte(fmt.Sprintf("%s%s\x00%02d", recordPrefix, entity, cycle))
}

func watermarkKeyBytes(source string) []byte {
	return []byte(watermarkPrefix + source)
}

func getJSON(txn *badger.Txn, key []byte, v interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error { return json.Unmarshal(val, v) })
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func (s *BadgerStore) Get(_ context.Context, entity string, cycle int) (domain.FreshnessRecord, bool, error) {
	var rec domain.FreshnessRecord
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, recordKeyBytes(entity, cycle), &rec)
		return err
	})
	if err != nil {
		return domain.FreshnessRecord{}, false, apperrors.NewIOError("read freshness record", err)
	}
	return rec, found, nil
}

func (s *BadgerStore) Records(_ context.Context, entity string) ([]domain.FreshnessRecord, error) {
	var out []domain.FreshnessRecord
	prefix := []byte(recordPrefix + entity + "\x00")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec domain.FreshnessRecord
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewIOError("list freshness records", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cycle < out[j].Cycle })
	return out, nil
}

// Advance stores all records in one transaction, skipping any that would
// move a key backwards.
func (s *BadgerStore) Advance(_ context.Context, records ...domain.FreshnessRecord) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, rec := range records {
			key := recordKeyBytes(rec.EntityKey, rec.Cycle)
			var prev domain.FreshnessRecord
			found, err := getJSON(txn, key, &prev)
			if err != nil {
				return err
			}
			if !supersedes(prev, found, rec) {
				continue
			}
			if err := setJSON(txn, key, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewIOError("advance freshness records", err)
	}
	return nil
}

func (s *BadgerStore) Watermark(_ context.Context, source string) (domain.Watermark, bool, error) {
	var w domain.Watermark
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, watermarkKeyBytes(source), &w)
		return err
	})
	if err != nil {
		return domain.Watermark{}, false, apperrors.NewIOError("read watermark", err)
	}
	return w, found, nil
}

// SetWatermark stores w unless an equal or later watermark exists.
func (s *BadgerStore) SetWatermark(_ context.Context, w domain.Watermark) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := watermarkKeyBytes(w.Source)
		var prev domain.Watermark
		found, err := getJSON(txn, key, &prev)
		if err != nil {
			return err
		}
		if found && !w.After(prev) {
			return nil
		}
		return setJSON(txn, key, w)
	})
	if err != nil {
		return apperrors.NewIOError("write watermark", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
