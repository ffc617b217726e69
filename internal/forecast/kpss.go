package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// kpssCritical05 is the 5% critical value of the KPSS level-stationarity test.
const kpssCritical05 = 0.463

// kpssStatistic computes the KPSS level-stationarity statistic with a
// Bartlett-weighted long-run variance and the short lag rule
// trunc(4 * (n/100)^0.25).
func kpssStatistic(x []float64) float64 {
	n := len(x)
	mean := stat.Mean(x, nil)
	e := make([]float64, n)
	for i, v := range x {
		e[i] = v - mean
	}

	var partial, eta float64
	for _, v := range e {
		partial += v
		eta += partial * partial
	}
	eta /= float64(n) * float64(n)

	lags := int(math.Trunc(4 * math.Pow(float64(n)/100, 0.25)))
	var s2 float64
	for _, v := range e {
		s2 += v * v
	}
	for s := 1; s <= lags && s < n; s++ {
		var cov float64
		for t := s; t < n; t++ {
			cov += e[t] * e[t-s]
		}
		s2 += 2 * (1 - float64(s)/float64(lags+1)) * cov
	}
	s2 /= float64(n)
	if s2 <= 0 {
		return math.Inf(1)
	}
	return eta / s2
}

// ndiffs returns the number of differences (at most maxD) needed before
// the KPSS test no longer rejects level stationarity at 5%.
func ndiffs(y []float64, maxD int) int {
	x := y
	d := 0
	for d < maxD {
		if len(x) < 3 || isConstant(x) {
			break
		}
		if kpssStatistic(x) <= kpssCritical05 {
			break
		}
		x = diff(x)
		d++
	}
	return d
}
