package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/goodnews-cli/internal/store"
	"github.com/KaramelBytes/goodnews-cli/internal/story"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun records run and its stories in one transaction. Stories keep their
// ranked order through the ordinal column.
func (s *Store) SaveRun(ctx context.Context, run store.Run, stories []story.Story) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, indicators, skipped, trends, milestones, current_year)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Indicators, run.Skipped, run.Trends, run.Milestones, run.CurrentYear)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stories (run_id, ordinal, type, country, indicator, year, headline, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, st := range stories {
		var payload []byte
		payload, err = json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode story: %w", err)
		}
		if _, err = stmt.ExecContext(ctx, run.ID, i, string(st.Type), st.Country, st.Indicator, st.Year, st.Headline, string(payload)); err != nil {
			return fmt.Errorf("insert story: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first; limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	q := `SELECT id, created_at, indicators, skipped, trends, milestones, current_year
		FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			r       store.Run
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.Indicators, &r.Skipped, &r.Trends, &r.Milestones, &r.CurrentYear); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunStories returns a run's stories in their ranked order.
func (s *Store) RunStories(ctx context.Context, runID string) ([]story.Story, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM stories WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []story.Story{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var st story.Story
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			return nil, fmt.Errorf("decode story: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			indicators INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			trends INTEGER NOT NULL,
			milestones INTEGER NOT NULL,
			current_year INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stories (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			type TEXT NOT NULL,
			country TEXT NOT NULL,
			indicator TEXT NOT NULL,
			year INTEGER NOT NULL,
			headline TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (run_id, ordinal)
		);`,
		`CREATE INDEX IF NOT EXISTS stories_country ON stories (country, indicator);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
