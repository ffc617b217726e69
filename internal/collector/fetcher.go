package collector

import (
	"context"
	"time"

	"MarketLens/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
//
// An unknown symbol or a range without trading days is not an error:
// implementations return no bars and a nil error.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
