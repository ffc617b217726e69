package dashboard

import (
	"fmt"
	"time"

	"MarketLens/internal/model"
)

// Outcome is the terminal state of one pipeline run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmptyResult
	OutcomeFetchError
	OutcomeForecastError
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeEmptyResult:
		return "EMPTY_RESULT"
	case OutcomeFetchError:
		return "FETCH_ERROR"
	case OutcomeForecastError:
		return "FORECAST_ERROR"
	default:
		return "UNEXPECTED"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// TailRows is the number of bars shown in the preview table.
const TailRows = 5

// Report is everything one run produced. Steps that completed before a
// failure keep their output.
type Report struct {
	RunID         string                `json:"run_id"`
	Symbol        string                `json:"symbol"`
	Outcome       Outcome               `json:"outcome"`
	Message       string                `json:"message,omitempty"`
	Points        int                   `json:"points"`
	Tail          []model.OHLCV         `json:"tail,omitempty"`
	Indicators    *model.Indicators     `json:"indicators,omitempty"`
	HistoryChart  []byte                `json:"-"`
	Forecast      []model.ForecastPoint `json:"forecast,omitempty"`
	Model         string                `json:"model,omitempty"`
	AIC           float64               `json:"aic,omitempty"`
	ForecastChart []byte                `json:"-"`
	Duration      time.Duration         `json:"duration_ns"`
}

// Failed reports whether the run ended in anything but success.
func (r *Report) Failed() bool {
	return r.Outcome != OutcomeSuccess
}

func emptyMessage(symbol string) string {
	return fmt.Sprintf("No data found for %s.", symbol)
}

func fetchMessage(symbol string, err error) string {
	return fmt.Sprintf("Could not download prices for %s: %v", symbol, err)
}

func forecastMessage(err error) string {
	return fmt.Sprintf("Forecast unavailable: %v", err)
}

func unexpectedMessage(step string, err error) string {
	return fmt.Sprintf("Unexpected error while %s: %v", step, err)
}
