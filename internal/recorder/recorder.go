package recorder

import "time"

// RunEvent describes one dashboard pipeline run. Market data itself is
// never recorded.
type RunEvent struct {
	RunID     string
	SessionID string
	Symbol    string
	Outcome   string // "SUCCESS", "EMPTY_RESULT", "FETCH_ERROR", "FORECAST_ERROR", "UNEXPECTED"
	Points    int
	Model     string
	AIC       float64
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	// Prune deletes runs created before the given time and returns how many were removed.
	Prune(before time.Time) (int64, error)
	Close() error
}
