// Package store provides the local run history for causalspan, backed
// by SQLite. Each predict/evaluate invocation records one run plus the
// selected answer per example; the pipeline itself never touches the
// store.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ExamplesFile string    `json:"examples_file"`
	OutputDir    string    `json:"output_dir"`
	ExampleCount int       `json:"example_count"`
	Config       string    `json:"config"` // JSON snapshot of the extraction config
}

// Answer is the selected answer for one example of a run.
type Answer struct {
	ExampleID   string  `json:"example_id"`
	Text        string  `json:"text"`
	CauseText   string  `json:"cause_text"`
	EffectText  string  `json:"effect_text"`
	Probability float64 `json:"probability"`
}

// Store is the SQLite-backed run history.
type Store struct {
	db      *sql.DB
	dataDir string
}

// Open opens (and creates if needed) the run store. The data directory
// is $CAUSALSPAN_DATA_DIR, defaulting to ~/.causalspan.
func Open() (*Store, error) {
	dataDir := os.Getenv("CAUSALSPAN_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".causalspan")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dataDir: dataDir}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the resolved data directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		examples_file TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		example_count INTEGER NOT NULL,
		config TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS answers (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		example_id TEXT NOT NULL,
		text TEXT NOT NULL,
		cause_text TEXT NOT NULL,
		effect_text TEXT NOT NULL,
		probability REAL NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (run_id, example_id)
	);
	CREATE INDEX IF NOT EXISTS idx_answers_run ON answers(run_id, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores one run and its answers in a single transaction and
// returns the generated run id.
func (s *Store) RecordRun(ctx context.Context, run Run, answers []Answer) (string, error) {
	if run.ID == "" {
		run.ID = generateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, examples_file, output_dir, example_count, config)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.ExamplesFile, run.OutputDir, run.ExampleCount, run.Config)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, a := range answers {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO answers (run_id, example_id, text, cause_text, effect_text, probability, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, a.ExampleID, a.Text, a.CauseText, a.EffectText, a.Probability, i)
		if err != nil {
			return "", fmt.Errorf("insert answer %s: %w", a.ExampleID, err)
		}
	}
	return run.ID, tx.Commit()
}

// ListRuns returns all recorded runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, examples_file, output_dir, example_count, config
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.ExamplesFile, &r.OutputDir, &r.ExampleCount, &r.Config); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, examples_file, output_dir, example_count, config
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.CreatedAt, &r.ExamplesFile, &r.OutputDir, &r.ExampleCount, &r.Config)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RunAnswers returns a run's answers in example order.
func (s *Store) RunAnswers(ctx context.Context, runID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT example_id, text, cause_text, effect_text, probability
		 FROM answers WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ExampleID, &a.Text, &a.CauseText, &a.EffectText, &a.Probability); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
