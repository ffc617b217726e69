package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"MarketLens/internal/model"

	"github.com/rs/zerolog"
)

func seriesFrom(values []float64, start time.Time) *model.HistoricalSeries {
	bars := make([]model.OHLCV, 0, len(values))
	d := start
	for _, v := range values {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		bars = append(bars, model.OHLCV{Time: d, Close: v})
		d = d.AddDate(0, 0, 1)
	}
	return &model.HistoricalSeries{Symbol: "TEST", Bars: bars}
}

// gaussian returns a repeatable approximately standard normal generator
// (sum of twelve LCG uniforms).
func gaussian(seed uint64) func() float64 {
	state := seed
	return func() float64 {
		sum := 0.0
		for i := 0; i < 12; i++ {
			state = state*6364136223846793005 + 1442695040888963407
			sum += float64(state>>11) / (1 << 53)
		}
		return sum - 6
	}
}

func randomWalk(n int, drift, scale float64, seed uint64) []float64 {
	next := gaussian(seed)
	y := make([]float64, n)
	y[0] = 100
	for i := 1; i < n; i++ {
		y[i] = y[i-1] + drift + scale*next()
	}
	return y
}

func TestNdiffs(t *testing.T) {
	sine := make([]float64, 400)
	for i := range sine {
		sine[i] = 50 + math.Sin(float64(i)*0.7)
	}
	constant := make([]float64, 50)
	for i := range constant {
		constant[i] = 3
	}

	tests := []struct {
		name string
		y    []float64
		want int
	}{
		{"stationary oscillation", sine, 0},
		{"random walk", randomWalk(500, 0, 1, 42), 1},
		{"constant", constant, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ndiffs(tt.y, 2); got != tt.want {
				t.Errorf("ndiffs() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFitModel_RecoversAR1(t *testing.T) {
	next := gaussian(7)
	y := make([]float64, 800)
	for i := 1; i < len(y); i++ {
		y[i] = 0.6*y[i-1] + next()
	}
	m, err := fitModel(y, Order{P: 1}, true)
	if err != nil {
		t.Fatalf("fitModel: %v", err)
	}
	if math.Abs(m.AR[0]-0.6) > 0.1 {
		t.Errorf("AR(1) coefficient = %.3f, want about 0.6", m.AR[0])
	}
	if math.Abs(m.Sigma2-1) > 0.2 {
		t.Errorf("sigma2 = %.3f, want about 1", m.Sigma2)
	}
}

func TestModel_PredictIntegratesDifferences(t *testing.T) {
	// A pure drift model on a d=1 series adds the drift every step.
	m := &Model{Order: Order{D: 1}, Intercept: true, Mean: 2, w: []float64{2, 2}, resid: []float64{0, 0}, levels: []float64{10}}
	got := m.Predict(3)
	want := []float64{12, 14, 16}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("Predict() = %v, want %v", got, want)
		}
	}

	// d=2: zero second difference, last first difference 3, last level 20.
	m2 := &Model{Order: Order{D: 2}, Intercept: false, Mean: 0, AR: nil, w: []float64{0}, resid: []float64{0}, levels: []float64{20, 3}}
	got = m2.Predict(2)
	if got[0] != 23 || got[1] != 26 {
		t.Errorf("d=2 Predict() = %v, want [23 26]", got)
	}
}

func TestStableRoots(t *testing.T) {
	tests := []struct {
		coef []float64
		want bool
	}{
		{nil, true},
		{[]float64{0.5}, true},
		{[]float64{1.2}, false},
		{[]float64{0.5, 0.3}, true},
		{[]float64{0.5, 0.6}, false},
	}
	for _, tt := range tests {
		if got := stableRoots(tt.coef); got != tt.want {
			t.Errorf("stableRoots(%v) = %v, want %v", tt.coef, got, tt.want)
		}
	}
}

func TestAutoARIMA_PicksDifferencedModel(t *testing.T) {
	y := randomWalk(400, 0.5, 0.2, 3)
	m, err := autoARIMA(y, DefaultAutoConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if m.Order.D != 1 {
		t.Errorf("expected d=1 for a random walk with drift, got %s", m)
	}
	if !m.Intercept {
		t.Errorf("expected drift term, got %s", m)
	}
}

func TestAutoARIMA_SeedFailuresReportNoModel(t *testing.T) {
	// Only the (2,d,2) seed is allowed and five points cannot support it.
	cfg := AutoConfig{MaxP: 5, MaxQ: 5, MaxD: 2, MaxModels: 1}
	_, err := autoARIMA([]float64{1, 3, 2, 5, 4}, cfg, zerolog.Nop())
	if !errors.Is(err, ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}
	if err == ErrNoModel {
		t.Error("expected the failing fit to be part of the message")
	}
}

func TestForecaster_SevenConsecutiveDays(t *testing.T) {
	// 2020-01-03 is a Friday, so the series ends on a weekday and the
	// forecast runs straight through the weekend.
	series := seriesFrom(randomWalk(300, 0.5, 0.2, 11), time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC))
	points, m, err := NewForecaster(DefaultAutoConfig()).Forecast(series)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if m == nil {
		t.Fatal("expected fitted model")
	}
	if len(points) != Horizon {
		t.Fatalf("expected %d points, got %d", Horizon, len(points))
	}
	last := series.Last().Time
	for i, p := range points {
		want := last.AddDate(0, 0, i+1)
		if !p.Date.Equal(want) {
			t.Errorf("point %d date = %s, want %s", i, p.Date.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}
	lastClose := series.Last().Close
	if math.Abs(points[0].Value-lastClose) > 2 {
		t.Errorf("first forecast %.2f too far from last close %.2f", points[0].Value, lastClose)
	}
	if points[6].Value-points[0].Value < 1.5 {
		t.Errorf("expected upward drift across the horizon, got %.2f -> %.2f", points[0].Value, points[6].Value)
	}
}

func TestForecaster_Failures(t *testing.T) {
	constant := make([]float64, 40)
	for i := range constant {
		constant[i] = 42
	}
	tests := []struct {
		name   string
		values []float64
		want   error
	}{
		{"too short", []float64{1, 2, 3}, ErrInsufficientData},
		{"constant", constant, ErrConstantSeries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := seriesFrom(tt.values, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC))
			_, _, err := NewForecaster(DefaultAutoConfig()).Forecast(series)
			var fe *ForecastError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *ForecastError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if fe.Error() == "" {
				t.Error("expected a readable message")
			}
		})
	}
}
