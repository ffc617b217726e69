package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// PostgresRecorder persists run history to PostgreSQL.
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder connects to dsn, retrying the initial ping with
// exponential backoff, and runs migrations.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 15 * time.Second
	ping := func() error {
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Msg("postgres not ready, retrying")
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{db: db}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("postgres recorder opened")
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          BIGSERIAL PRIMARY KEY,
			run_id      TEXT NOT NULL,
			session_id  TEXT,
			symbol      TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			points      INTEGER,
			model       TEXT,
			aic         DOUBLE PRECISION,
			message     TEXT,
			duration_ms BIGINT,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *PostgresRecorder) RecordRun(evt *RunEvent) error {
	createdAt := evt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, session_id, symbol, outcome, points, model, aic, message, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		evt.RunID, evt.SessionID, evt.Symbol, evt.Outcome, evt.Points,
		evt.Model, evt.AIC, evt.Message, evt.Duration.Milliseconds(), createdAt.UTC(),
	)
	return err
}

func (r *PostgresRecorder) Prune(before time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM runs WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRecorder) Close() error {
	log.Info().Msg("closing postgres recorder")
	return r.db.Close()
}
