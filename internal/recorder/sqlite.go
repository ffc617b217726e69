package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the server writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			session_id  TEXT,
			symbol      TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			points      INTEGER,
			model       TEXT,
			aic         REAL,
			message     TEXT,
			duration_ms INTEGER,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := evt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, session_id, symbol, outcome, points, model, aic, message, duration_ms, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, evt.SessionID, evt.Symbol, evt.Outcome, evt.Points,
		evt.Model, evt.AIC, evt.Message, evt.Duration.Milliseconds(), createdAt.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) Prune(before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM runs WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountRuns returns the number of recorded runs for symbol ("" for all).
func (r *SQLiteRecorder) CountRuns(symbol string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	var err error
	if symbol == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE symbol = ?`, symbol).Scan(&n)
	}
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
