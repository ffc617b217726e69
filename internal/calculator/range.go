package calculator

import (
	"errors"

	"MarketLens/internal/model"
)

// Calculate52WeekRange returns the highest high and lowest low of the bars
// dated within one calendar year of the last bar. Bars must be sorted.
func Calculate52WeekRange(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no daily bars provided")
	}
	cutoff := bars[len(bars)-1].Time.AddDate(-1, 0, 0)

	high, low = bars[len(bars)-1].High, bars[len(bars)-1].Low
	for i := len(bars) - 2; i >= 0 && bars[i].Time.After(cutoff); i-- {
		high = max(high, bars[i].High)
		low = min(low, bars[i].Low)
	}
	return high, low, nil
}
