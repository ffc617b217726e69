package calculator

import (
	"errors"

	"MarketLens/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// Summarize computes the preview indicators for a non-empty series.
// Windows that do not fit the series are left at zero.
func Summarize(series *model.HistoricalSeries) (*model.Indicators, error) {
	if series.Empty() {
		return nil, errors.New("no bars provided")
	}
	closes := series.Closes()
	ind := &model.Indicators{LastClose: closes[len(closes)-1]}

	if ma, err := CalculateSMA(closes, 50); err == nil {
		ind.MA50 = ma
	}
	if ma, err := CalculateSMA(closes, 200); err == nil {
		ind.MA200 = ma
	}
	if rsi, err := CalculateRSI(closes, 14); err == nil {
		ind.RSI14 = rsi
	}
	if h, l, err := Calculate52WeekRange(series.Bars); err == nil {
		ind.High52w = h
		ind.Low52w = l
	}
	return ind, nil
}
