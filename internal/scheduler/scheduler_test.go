package scheduler

import (
	"context"
	"testing"
	"time"

	"MarketLens/internal/recorder"
	"MarketLens/internal/session"
)

type pruneSpy struct {
	recorder.NoopRecorder
	before []time.Time
}

func (p *pruneSpy) Prune(before time.Time) (int64, error) {
	p.before = append(p.before, before)
	return 3, nil
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), session.NewMemoryStore(time.Hour), &pruneSpy{}, 24*time.Hour)
	if err := s.RegisterAll("0 */10 * * * *", "0 30 3 * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if got := len(s.Cron.Entries()); got != 2 {
		t.Errorf("entries = %d, want 2", got)
	}
}

func TestRegisterAll_NoRetention(t *testing.T) {
	s := NewScheduler(context.Background(), session.NewMemoryStore(time.Hour), &pruneSpy{}, 0)
	if err := s.RegisterAll("0 */10 * * * *", "not a cron"); err != nil {
		t.Fatalf("prune cron should be ignored without retention: %v", err)
	}
	if got := len(s.Cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
}

func TestRegisterAll_BadCron(t *testing.T) {
	s := NewScheduler(context.Background(), session.NewMemoryStore(time.Hour), &pruneSpy{}, time.Hour)
	if err := s.RegisterAll("every ten minutes", "0 30 3 * * *"); err == nil {
		t.Fatal("expected error for invalid sweep cron")
	}
}

func TestPruneRuns_Cutoff(t *testing.T) {
	spy := &pruneSpy{}
	s := NewScheduler(context.Background(), nil, spy, 48*time.Hour)
	now := time.Date(2024, 5, 10, 3, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.pruneRuns()
	s.sweepSessions() // nil store is a no-op

	if len(spy.before) != 1 {
		t.Fatalf("Prune called %d times, want 1", len(spy.before))
	}
	if want := now.Add(-48 * time.Hour); !spy.before[0].Equal(want) {
		t.Errorf("cutoff = %s, want %s", spy.before[0], want)
	}
}

func TestSweepSessions(t *testing.T) {
	store := session.NewMemoryStore(time.Millisecond)
	ctx := context.Background()
	if err := store.Save(ctx, session.NewID(), &session.State{Symbol: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	s := NewScheduler(ctx, store, nil, 0)
	s.sweepSessions()
	if store.Len() != 0 {
		t.Errorf("expected expired session to be swept, %d left", store.Len())
	}
}
