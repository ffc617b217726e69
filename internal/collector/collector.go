package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"MarketLens/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HistoryStart is the first day requested for every symbol.
var HistoryStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// FetchError reports a transport, parsing or provider failure for a symbol.
type FetchError struct {
	Symbol string
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Symbol, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
	Calls     int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, start, end), nil
}

// generateMockBars produces one bar per weekday in [start, end] on a gentle
// sine-shaped trend around basePrice.
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := model.Day(start); !d.After(model.Day(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.0004 + 0.02*mockWave(i))
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

func mockWave(i int) float64 {
	// triangle wave in [-1, 1], period 40 bars
	x := float64(i%40) / 40
	if x < 0.5 {
		return 4*x - 1
	}
	return 3 - 4*x
}

// Collector turns raw provider bars into a HistoricalSeries.
type Collector struct {
	Fetcher Fetcher
	Now     func() time.Time
	logger  zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Now:     time.Now,
		logger:  log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches [HistoryStart, today] for symbol. An empty series is a
// valid result; failures are returned as *FetchError.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.HistoricalSeries, error) {
	start := HistoryStart
	end := model.Day(c.Now())

	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Source: c.Fetcher.Name(), Err: err}
	}

	series := &model.HistoricalSeries{
		Symbol: symbol,
		Start:  start,
		End:    end,
		Bars:   normalize(bars, start, end),
	}
	if dropped := len(bars) - series.Len(); dropped > 0 {
		c.logger.Debug().Str("symbol", symbol).Int("dropped", dropped).Msg("dropped out-of-range or duplicate bars")
	}
	c.logger.Info().Str("symbol", symbol).Int("bars", series.Len()).Msg("collected history")
	return series, nil
}

// normalize keeps bars inside [start, end], sorts them by day and keeps the
// last bar for any repeated day, so dates come out strictly increasing.
func normalize(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		b.Time = model.Day(b.Time)
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(b.Time) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}
