// Package archive provides SQLite-based run history storage. It is an
// append-only observability sink: completed runs and per-year statistics are
// recorded for inspection, but in-progress game state is never restored from
// disk; a restart always reinitializes from scratch.
package archive

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/openborders/nationsim/internal/sim"
)

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		session_id TEXT PRIMARY KEY,
		difficulty TEXT NOT NULL,
		reason TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		years INTEGER NOT NULL,
		population INTEGER NOT NULL,
		gdp INTEGER NOT NULL,
		happiness REAL NOT NULL,
		unemployment REAL NOT NULL,
		budget INTEGER NOT NULL,
		score INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS year_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		population INTEGER NOT NULL,
		gdp INTEGER NOT NULL,
		happiness REAL NOT NULL,
		unemployment REAL NOT NULL,
		budget INTEGER NOT NULL,
		score INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_year_stats_session ON year_stats(session_id, year);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordYear appends one per-year statistics row. Implements sim.Recorder.
func (db *DB) RecordYear(sessionID string, n sim.NationState) error {
	_, err := db.conn.Exec(`INSERT INTO year_stats
		(session_id, year, population, gdp, happiness, unemployment, budget, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, n.Year, n.Population, n.GDP, n.Happiness, n.Unemployment, n.Budget, n.Score,
	)
	if err != nil {
		return fmt.Errorf("insert year stats: %w", err)
	}
	return nil
}

// RecordRun stores the final summary of a completed run. Implements
// sim.Recorder.
func (db *DB) RecordRun(sessionID string, n sim.NationState, reason sim.GameOverReason) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO runs
		(session_id, difficulty, reason, ended_at, years, population, gdp, happiness, unemployment, budget, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, string(n.Difficulty), string(reason), time.Now().UTC().Format(time.RFC3339),
		n.Year-sim.EpochYear, n.Population, n.GDP, n.Happiness, n.Unemployment, n.Budget, n.Score,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RunRow is one completed run as stored.
type RunRow struct {
	SessionID    string  `db:"session_id" json:"session_id"`
	Difficulty   string  `db:"difficulty" json:"difficulty"`
	Reason       string  `db:"reason" json:"reason"`
	EndedAt      string  `db:"ended_at" json:"ended_at"`
	Years        int     `db:"years" json:"years"`
	Population   int     `db:"population" json:"population"`
	GDP          int     `db:"gdp" json:"gdp"`
	Happiness    float64 `db:"happiness" json:"happiness"`
	Unemployment float64 `db:"unemployment" json:"unemployment"`
	Budget       int     `db:"budget" json:"budget"`
	Score        int     `db:"score" json:"score"`
}

// RecentRuns returns the most recently completed runs, best score first.
func (db *DB) RecentRuns(limit int) ([]RunRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var rows []RunRow
	err := db.conn.Select(&rows,
		"SELECT * FROM runs ORDER BY score DESC, ended_at DESC LIMIT ?", limit)
	return rows, err
}

// StatsRow is one per-year statistics sample.
type StatsRow struct {
	Year         int     `db:"year" json:"year"`
	Population   int     `db:"population" json:"population"`
	GDP          int     `db:"gdp" json:"gdp"`
	Happiness    float64 `db:"happiness" json:"happiness"`
	Unemployment float64 `db:"unemployment" json:"unemployment"`
	Budget       int     `db:"budget" json:"budget"`
	Score        int     `db:"score" json:"score"`
}

// YearStats returns the stat history for one session, oldest first.
func (db *DB) YearStats(sessionID string, limit int) ([]StatsRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	var rows []StatsRow
	err := db.conn.Select(&rows, `
		SELECT year, population, gdp, happiness, unemployment, budget, score
		FROM year_stats WHERE session_id = ?
		ORDER BY year ASC LIMIT ?`, sessionID, limit)
	return rows, err
}
