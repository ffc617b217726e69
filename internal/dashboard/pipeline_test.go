package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/forecast"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"
)

type memRecorder struct {
	events []*recorder.RunEvent
}

func (m *memRecorder) RecordRun(evt *recorder.RunEvent) error {
	m.events = append(m.events, evt)
	return nil
}
func (m *memRecorder) Prune(time.Time) (int64, error) { return 0, nil }
func (m *memRecorder) Close() error                   { return nil }

func newPipeline(f *collector.MockFetcher) (*Pipeline, *memRecorder) {
	col := collector.NewCollector(f)
	col.Now = func() time.Time { return time.Date(2021, 6, 30, 20, 0, 0, 0, time.UTC) }
	rec := &memRecorder{}
	return NewPipeline(col, forecast.NewForecaster(forecast.DefaultAutoConfig()), rec), rec
}

func TestRun_Success(t *testing.T) {
	p, rec := newPipeline(&collector.MockFetcher{Price: 150})
	rep := p.Run(context.Background(), "AAPL", "sess")

	if rep.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s (%s), want SUCCESS", rep.Outcome, rep.Message)
	}
	if len(rep.Tail) != TailRows {
		t.Errorf("expected %d tail rows, got %d", TailRows, len(rep.Tail))
	}
	if len(rep.HistoryChart) == 0 || len(rep.ForecastChart) == 0 {
		t.Error("expected both charts to be rendered")
	}
	if len(rep.Forecast) != forecast.Horizon {
		t.Fatalf("expected %d forecast rows, got %d", forecast.Horizon, len(rep.Forecast))
	}
	last := rep.Tail[len(rep.Tail)-1].Time
	for i, pt := range rep.Forecast {
		if !pt.Date.Equal(last.AddDate(0, 0, i+1)) {
			t.Errorf("forecast %d date %s, want %s", i, pt.Date, last.AddDate(0, 0, i+1))
		}
	}
	if !strings.HasPrefix(rep.Model, "ARIMA(") {
		t.Errorf("unexpected model description %q", rep.Model)
	}
	if rep.Indicators == nil || rep.Indicators.MA200 == 0 {
		t.Error("expected indicators for a long series")
	}
	if len(rec.events) != 1 || rec.events[0].Outcome != "SUCCESS" || rec.events[0].SessionID != "sess" {
		t.Errorf("unexpected recorded events: %+v", rec.events)
	}
}

func TestRun_EmptyResult(t *testing.T) {
	p, _ := newPipeline(&collector.MockFetcher{DailyData: []model.OHLCV{}})
	rep := p.Run(context.Background(), "ZZZZINVALID", "")

	if rep.Outcome != OutcomeEmptyResult {
		t.Fatalf("outcome = %s, want EMPTY_RESULT", rep.Outcome)
	}
	if rep.Message != "No data found for ZZZZINVALID." {
		t.Errorf("unexpected message %q", rep.Message)
	}
	if rep.HistoryChart != nil || rep.ForecastChart != nil || rep.Forecast != nil {
		t.Error("empty result must not chart or forecast")
	}
}

func TestRun_FetchError(t *testing.T) {
	f := &collector.MockFetcher{Err: errors.New("dial tcp: connection refused")}
	p, rec := newPipeline(f)
	rep := p.Run(context.Background(), "AAPL", "")

	if rep.Outcome != OutcomeFetchError {
		t.Fatalf("outcome = %s, want FETCH_ERROR", rep.Outcome)
	}
	if !strings.Contains(rep.Message, "connection refused") {
		t.Errorf("message %q should carry the transport error", rep.Message)
	}
	if rep.Forecast != nil || rep.Model != "" {
		t.Error("forecast must not be attempted after a fetch error")
	}
	if rec.events[0].Outcome != "FETCH_ERROR" {
		t.Errorf("recorded outcome %q", rec.events[0].Outcome)
	}
}

func TestRun_ForecastErrorKeepsHistory(t *testing.T) {
	day := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		bars []model.OHLCV
	}{
		{"short series", []model.OHLCV{
			{Time: day, Close: 10},
			{Time: day.AddDate(0, 0, 1), Close: 11},
			{Time: day.AddDate(0, 0, 2), Close: 12},
		}},
		{"constant series", func() []model.OHLCV {
			bars := make([]model.OHLCV, 20)
			for i := range bars {
				bars[i] = model.OHLCV{Time: day.AddDate(0, 0, i), Open: 50, High: 51, Low: 49, Close: 50}
			}
			return bars
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(&collector.MockFetcher{DailyData: tt.bars})
			rep := p.Run(context.Background(), "FLAT", "")
			if rep.Outcome != OutcomeForecastError {
				t.Fatalf("outcome = %s (%s), want FORECAST_ERROR", rep.Outcome, rep.Message)
			}
			if !strings.HasPrefix(rep.Message, "Forecast unavailable:") {
				t.Errorf("unexpected message %q", rep.Message)
			}
			if len(rep.HistoryChart) == 0 {
				t.Error("history chart should survive a forecast failure")
			}
			if rep.ForecastChart != nil {
				t.Error("no forecast chart expected")
			}
		})
	}
}
