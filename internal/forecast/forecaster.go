// Package forecast fits an automatic non-seasonal ARIMA model to closing
// prices and projects it a fixed number of calendar days ahead.
package forecast

import (
	"errors"
	"fmt"

	"MarketLens/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// Horizon is the number of forecast days.
	Horizon = 7
	// MinObservations is the shortest series the forecaster accepts.
	MinObservations = 10
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrConstantSeries   = errors.New("series is constant")
	ErrNoModel          = errors.New("no ARIMA model converged")
)

// ForecastError reports a model-fit failure for a symbol.
type ForecastError struct {
	Symbol string
	Err    error
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast %s: %v", e.Symbol, e.Err)
}

func (e *ForecastError) Unwrap() error { return e.Err }

// Forecaster produces Horizon-day forecasts from a HistoricalSeries.
type Forecaster struct {
	Config AutoConfig
	logger zerolog.Logger
}

func NewForecaster(cfg AutoConfig) *Forecaster {
	return &Forecaster{
		Config: cfg,
		logger: log.With().Str("component", "forecaster").Logger(),
	}
}

// Forecast fits a model to the closes of series and returns Horizon points
// dated on consecutive calendar days after the last bar. Weekends and
// market holidays are not skipped.
func (f *Forecaster) Forecast(series *model.HistoricalSeries) ([]model.ForecastPoint, *Model, error) {
	closes := series.Closes()
	if len(closes) < MinObservations {
		return nil, nil, &ForecastError{
			Symbol: series.Symbol,
			Err:    fmt.Errorf("%w: need at least %d observations, got %d", ErrInsufficientData, MinObservations, len(closes)),
		}
	}
	if isConstant(closes) {
		return nil, nil, &ForecastError{Symbol: series.Symbol, Err: ErrConstantSeries}
	}

	logger := f.logger.With().Str("symbol", series.Symbol).Logger()
	m, err := autoARIMA(closes, f.Config, logger)
	if err != nil {
		return nil, nil, &ForecastError{Symbol: series.Symbol, Err: err}
	}

	values := m.Predict(Horizon)
	last := series.Last().Time
	points := make([]model.ForecastPoint, Horizon)
	for i, v := range values {
		points[i] = model.ForecastPoint{Date: last.AddDate(0, 0, i+1), Value: v}
	}

	logger.Info().Str("model", m.String()).Float64("aic", m.AIC).Msg("forecast ready")
	return points, m, nil
}
