// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultPath is where the CLI keeps run history.
const DefaultPath = "~/.well/runs.db"

// Run outcomes.
const (
	OutcomeEscaped  = "escaped"
	OutcomeGameOver = "game_over"
)

// Run sources.
const (
	SourcePlay = "play"
	SourceSim  = "sim"
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one finished life.
type Run struct {
	ID         int64
	Difficulty string
	Source     string // "play" or "sim"
	Outcome    string // "escaped" or "game_over"
	Cause      string // Empty when escaped
	Score      int
	Lines      int
	Pieces     int
	Retargets  int
	Sabotages  int
	Ticks      int64
	Seed       int64
	GodMode    bool
	CreatedAt  time.Time
}

// RunStats contains aggregated statistics for one difficulty.
type RunStats struct {
	Difficulty string
	Runs       int
	Escapes    int
	BestScore  int
	AvgScore   float64
	AvgTicks   float64
	TotalLines int64
	LastPlayed time.Time
}

// EscapeRate returns the fraction of runs that escaped.
func (s RunStats) EscapeRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Escapes) / float64(s.Runs)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			difficulty TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'play',
			outcome TEXT NOT NULL,
			cause TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			pieces INTEGER NOT NULL DEFAULT 0,
			retargets INTEGER NOT NULL DEFAULT 0,
			sabotages INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			god_mode INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_difficulty ON runs(difficulty);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(difficulty, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const insertRun = `INSERT INTO runs
	(difficulty, source, outcome, cause, score, lines, pieces, retargets, sabotages, ticks, seed, god_mode)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func runArgs(r Run) []any {
	if r.Source == "" {
		r.Source = SourcePlay
	}
	return []any{
		r.Difficulty, r.Source, r.Outcome, r.Cause, r.Score, r.Lines, r.Pieces,
		r.Retargets, r.Sabotages, r.Ticks, r.Seed, r.GodMode,
	}
}

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r Run) (int64, error) {
	result, err := s.db.Exec(insertRun, runArgs(r)...)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveRuns records a batch of runs in one transaction.
func (s *Store) SaveRuns(runs []Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(insertRun)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range runs {
		if _, err := stmt.Exec(runArgs(r)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage: cannot save run: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit runs: %w", err)
	}
	return nil
}

const selectRuns = `SELECT id, difficulty, source, outcome, cause, score, lines, pieces,
	retargets, sabotages, ticks, seed, god_mode, created_at FROM runs`

// TopRuns retrieves the best N runs for the given difficulty, or across all
// difficulties when difficulty is empty. Ties on score go to the longer run.
func (s *Store) TopRuns(difficulty string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		selectRuns+`
		 WHERE (? = '' OR difficulty = ?)
		 ORDER BY score DESC, ticks DESC, id ASC
		 LIMIT ?`,
		difficulty, difficulty, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(selectRuns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recent runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(
			&r.ID,
			&r.Difficulty,
			&r.Source,
			&r.Outcome,
			&r.Cause,
			&r.Score,
			&r.Lines,
			&r.Pieces,
			&r.Retargets,
			&r.Sabotages,
			&r.Ticks,
			&r.Seed,
			&r.GodMode,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestScore returns the highest score for the given difficulty.
// Returns 0 if no runs exist.
func (s *Store) BestScore(difficulty string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE difficulty = ?",
		difficulty,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearRuns deletes all runs for the given difficulty, or every run when
// difficulty is empty.
func (s *Store) ClearRuns(difficulty string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE (? = '' OR difficulty = ?)", difficulty, difficulty)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// Stats retrieves aggregated statistics for a specific difficulty.
func (s *Store) Stats(difficulty string) (*RunStats, error) {
	stats := &RunStats{Difficulty: difficulty}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(AVG(ticks), 0), COALESCE(SUM(lines), 0)
		 FROM runs WHERE difficulty = ?`,
		OutcomeEscaped, difficulty,
	).Scan(&stats.Runs, &stats.Escapes, &stats.BestScore, &stats.AvgScore, &stats.AvgTicks, &stats.TotalLines)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM runs WHERE difficulty = ? ORDER BY id DESC LIMIT 1`,
		difficulty,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// AllStats retrieves statistics for every difficulty that has runs.
func (s *Store) AllStats() (map[string]*RunStats, error) {
	rows, err := s.db.Query(
		`SELECT difficulty, COUNT(*),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        MAX(score), AVG(score), AVG(ticks), SUM(lines), MAX(created_at)
		 FROM runs
		 GROUP BY difficulty`,
		OutcomeEscaped,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*RunStats)
	for rows.Next() {
		var st RunStats
		var lastPlayed any
		if err := rows.Scan(&st.Difficulty, &st.Runs, &st.Escapes, &st.BestScore, &st.AvgScore, &st.AvgTicks, &st.TotalLines, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Difficulty] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
