package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"pipeledger/internal/config"
	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

const schemaFileExt = ".schema.yaml"

// Store persists one table file per entity.
type Store struct {
	dir      string
	logger   *slog.Logger
	validate *validator.Validate

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:      dir,
		logger:   logger.With(slog.String("component", "ledger_store")),
		validate: validator.New(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Dir returns the ledger directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the table file of entity.
func (s *Store) Path(entity string) string {
	return filepath.Join(s.dir, config.SafeEntityName(entity)+config.LedgerFileExt)
}

func (s *Store) schemaPath(entity string) string {
	return filepath.Join(s.dir, config.SafeEntityName(entity)+schemaFileExt)
}

// lock acquires the exclusive writer lock of entity and returns its release.
func (s *Store) lock(entity string) func() {
	key := config.SafeEntityName(entity)
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Exists reports whether entity has been initialized.
func (s *Store) Exists(entity string) bool {
	_, err := os.Stat(s.Path(entity))
	return err == nil
}

// Init creates an empty table for entity. Initializing an existing entity
// with the same columns is a no-op; different columns are rejected.
func (s *Store) Init(entity string, schema domain.Schema) error {
	if strings.TrimSpace(entity) == "" {
		return apperrors.NewValidationError("entity key is required", nil)
	}
	if err := s.validate.Struct(schema); err != nil {
		return apperrors.NewValidationError("invalid ledger schema", err)
	}

	unlock := s.lock(entity)
	defer unlock()

	if s.Exists(entity) {
		existing, err := s.Load(entity)
		if err != nil {
			return err
		}
		if !slices.Equal(existing.Schema().Names(), schema.Names()) {
			return apperrors.NewValidationError(
				fmt.Sprintf("entity %s already initialized with different columns", entity), nil)
		}
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return apperrors.NewIOError("create ledger directory", err)
	}

	doc, err := yaml.Marshal(schema)
	if err != nil {
		return apperrors.NewIOError("encode schema", err)
	}
	if err := s.writeAtomic(s.schemaPath(entity), func(w io.Writer) error {
		_, err := w.Write(doc)
		return err
	}); err != nil {
		return err
	}

	l := New(entity, schema)
	if err := s.writeAtomic(s.Path(entity), func(w io.Writer) error { return encode(w, l) }); err != nil {
		return err
	}

	s.logger.Info("ledger initialized",
		slog.String("entity", entity),
		slog.String("kind", string(schema.Kind)),
		slog.Int("columns", len(schema.Columns)))
	return nil
}

// Load reads the committed table of entity. It fails with a MissingEntity
// error when the entity was never initialized.
func (s *Store) Load(entity string) (*Ledger, error) {
	schema, err := s.loadSchema(entity)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(entity))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewMissingEntityError(entity)
	}
	if err != nil {
		return nil, apperrors.NewIOError("open ledger", err).WithContext("entity", entity)
	}
	defer f.Close()

	return decode(bufio.NewReader(f), entity, schema)
}

// loadSchema returns nil when the table has no schema file.
func (s *Store) loadSchema(entity string) (*domain.Schema, error) {
	data, err := os.ReadFile(s.schemaPath(entity))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewIOError("read schema", err).WithContext("entity", entity)
	}
	var schema domain.Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, apperrors.NewIOError("decode schema", err).WithContext("entity", entity)
	}
	return &schema, nil
}

// Update runs a read-modify-write cycle on entity while holding its writer
// lock. The table is written back only when fn succeeds and changed it. A
// failed fn or write leaves the committed file untouched.
func (s *Store) Update(entity string, fn func(*Ledger) error) error {
	unlock := s.lock(entity)
	defer unlock()

	l, err := s.Load(entity)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	if !l.Dirty() {
		return nil
	}

	if err := s.writeAtomic(s.Path(entity), func(w io.Writer) error { return encode(w, l) }); err != nil {
		return err
	}
	l.dirty = false

	s.logger.Debug("ledger committed",
		slog.String("entity", entity),
		slog.Int("rows", l.Len()),
		slog.String("last_date", l.LastDate().String()))
	return nil
}

// Entities lists the initialized entities in name order.
func (s *Store) Entities() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewIOError("list ledgers", err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != config.LedgerFileExt {
			continue
		}
		out = append(out, strings.TrimSuffix(name, config.LedgerFileExt))
	}
	sort.Strings(out)
	return out, nil
}

// writeAtomic writes the complete content to a temporary file in the target
// directory and renames it over the target.
func (s *Store) writeAtomic(target string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), config.LedgerTempGlob)
	if err != nil {
		return apperrors.NewIOError("create temp file", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return apperrors.NewIOError("write table", err)
	}
	if err = bw.Flush(); err != nil {
		return apperrors.NewIOError("flush table", err)
	}
	if err = tmp.Sync(); err != nil {
		return apperrors.NewIOError("sync table", err)
	}
	if err = tmp.Close(); err != nil {
		return apperrors.NewIOError("close table", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return apperrors.NewIOError("chmod table", err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return apperrors.NewIOError("swap table", err)
	}
	return nil
}
