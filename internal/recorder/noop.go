package recorder

import "time"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunEvent) error      { return nil }
func (n *NoopRecorder) Prune(_ time.Time) (int64, error) { return 0, nil }
func (n *NoopRecorder) Close() error                     { return nil }
