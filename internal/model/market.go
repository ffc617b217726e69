package model

import "time"

// OHLCV represents a single daily bar. Time is the trading day at 00:00 UTC.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TimeSeriesPoint is a closing price on a calendar day.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// HistoricalSeries holds the daily bars of one symbol over [Start, End].
// Bars are strictly increasing by day and may be empty.
type HistoricalSeries struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Bars   []OHLCV
}

func (s *HistoricalSeries) Len() int { return len(s.Bars) }

// Empty reports whether the provider returned no trading days in range.
func (s *HistoricalSeries) Empty() bool { return len(s.Bars) == 0 }

// Closes returns the closing prices in date order.
func (s *HistoricalSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Points returns the (date, close) view of the series.
func (s *HistoricalSeries) Points() []TimeSeriesPoint {
	points := make([]TimeSeriesPoint, len(s.Bars))
	for i, b := range s.Bars {
		points[i] = TimeSeriesPoint{Date: b.Time, Close: b.Close}
	}
	return points
}

// Last returns the most recent bar. It panics on an empty series.
func (s *HistoricalSeries) Last() OHLCV {
	return s.Bars[len(s.Bars)-1]
}

// Tail returns the last n bars (fewer if the series is shorter).
func (s *HistoricalSeries) Tail(n int) []OHLCV {
	if n >= len(s.Bars) {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// ForecastPoint is one predicted closing price.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Day truncates t to its calendar day at 00:00 UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
