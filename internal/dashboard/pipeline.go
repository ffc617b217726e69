// Package dashboard runs the fetch, chart and forecast steps for one
// symbol and collects their results into a Report.
package dashboard

import (
	"context"
	"errors"
	"time"

	"MarketLens/internal/calculator"
	"MarketLens/internal/chart"
	"MarketLens/internal/collector"
	"MarketLens/internal/forecast"
	"MarketLens/internal/recorder"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Pipeline wires the collector, charts and forecaster together.
type Pipeline struct {
	Collector  *collector.Collector
	Forecaster *forecast.Forecaster
	Recorder   recorder.Recorder
	logger     zerolog.Logger
}

func NewPipeline(col *collector.Collector, fc *forecast.Forecaster, rec recorder.Recorder) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Pipeline{
		Collector:  col,
		Forecaster: fc,
		Recorder:   rec,
		logger:     log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one full pass for symbol. It never returns nil; failures
// are reported through Report.Outcome and Report.Message.
func (p *Pipeline) Run(ctx context.Context, symbol, sessionID string) *Report {
	started := time.Now()
	rep := &Report{RunID: uuid.NewString(), Symbol: symbol}
	p.execute(ctx, rep)
	rep.Duration = time.Since(started)

	logger := p.logger.With().Str("run_id", rep.RunID).Str("symbol", symbol).Logger()
	evt := logger.Info()
	if rep.Failed() {
		evt = logger.Warn().Str("message", rep.Message)
	}
	evt.Str("outcome", rep.Outcome.String()).Dur("duration", rep.Duration).Msg("run finished")

	if err := p.Recorder.RecordRun(&recorder.RunEvent{
		RunID:     rep.RunID,
		SessionID: sessionID,
		Symbol:    symbol,
		Outcome:   rep.Outcome.String(),
		Points:    rep.Points,
		Model:     rep.Model,
		AIC:       rep.AIC,
		Message:   rep.Message,
		Duration:  rep.Duration,
	}); err != nil {
		logger.Error().Err(err).Msg("record run")
	}
	return rep
}

func (p *Pipeline) execute(ctx context.Context, rep *Report) {
	series, err := p.Collector.Collect(ctx, rep.Symbol)
	if err != nil {
		rep.Outcome = OutcomeFetchError
		var fe *collector.FetchError
		if errors.As(err, &fe) {
			err = fe.Err
		}
		rep.Message = fetchMessage(rep.Symbol, err)
		return
	}
	if series.Empty() {
		rep.Outcome = OutcomeEmptyResult
		rep.Message = emptyMessage(rep.Symbol)
		return
	}

	rep.Points = series.Len()
	rep.Tail = series.Tail(TailRows)
	if ind, err := calculator.Summarize(series); err == nil {
		rep.Indicators = ind
	}

	rep.HistoryChart, err = chart.History(series, rep.Symbol)
	if err != nil {
		rep.Outcome = OutcomeUnexpected
		rep.Message = unexpectedMessage("drawing the price chart", err)
		return
	}

	points, m, err := p.Forecaster.Forecast(series)
	if err != nil {
		rep.Outcome = OutcomeForecastError
		var fe *forecast.ForecastError
		if errors.As(err, &fe) {
			err = fe.Err
		}
		rep.Message = forecastMessage(err)
		return
	}
	rep.Forecast = points
	rep.Model = m.String()
	rep.AIC = m.AIC

	rep.ForecastChart, err = chart.Forecast(series, points, rep.Symbol)
	if err != nil {
		rep.Outcome = OutcomeUnexpected
		rep.Message = unexpectedMessage("drawing the forecast chart", err)
		return
	}
	rep.Outcome = OutcomeSuccess
}
