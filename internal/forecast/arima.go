package forecast

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// penalty is returned by the CSS objective for parameters outside the
// stationary / invertible region.
const penalty = 1e10

// Order is the (p, d, q) order of a non-seasonal ARIMA model.
type Order struct {
	P, D, Q int
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model is a fitted ARIMA model. It is built for one series and discarded
// after producing a forecast.
type Model struct {
	Order     Order
	Intercept bool
	Mean      float64
	AR        []float64
	MA        []float64
	Sigma2    float64
	LogLik    float64
	AIC       float64

	w      []float64 // d-times differenced series
	resid  []float64
	levels []float64 // last value of diff^k(y) for k = 0..d-1
}

func (m *Model) String() string {
	s := m.Order.String()
	if m.Intercept {
		if m.Order.D == 0 {
			s += " with non-zero mean"
		} else {
			s += " with drift"
		}
	}
	return s
}

// Predict returns the next h values on the original (undifferenced) scale.
func (m *Model) Predict(h int) []float64 {
	n := len(m.w)
	w := make([]float64, n, n+h)
	copy(w, m.w)
	e := make([]float64, n, n+h)
	copy(e, m.resid)

	for k := 0; k < h; k++ {
		t := len(w)
		pred := m.Mean
		for i, phi := range m.AR {
			if t-1-i >= 0 {
				pred += phi * (w[t-1-i] - m.Mean)
			}
		}
		for j, theta := range m.MA {
			if t-1-j >= 0 {
				pred += theta * e[t-1-j]
			}
		}
		w = append(w, pred)
		e = append(e, 0)
	}

	out := append([]float64(nil), w[n:]...)
	for k := len(m.levels) - 1; k >= 0; k-- {
		last := m.levels[k]
		for i := range out {
			last += out[i]
			out[i] = last
		}
	}
	return out
}

func diff(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		out[i-1] = x[i] - x[i-1]
	}
	return out
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

// cssResiduals fills resid with one-step errors of an ARMA(p,q) model on w
// and returns the conditional sum of squares. The first p errors are zero.
func cssResiduals(w []float64, mu float64, ar, ma, resid []float64) float64 {
	p := len(ar)
	sse := 0.0
	for t := range w {
		if t < p {
			resid[t] = 0
			continue
		}
		pred := mu
		for i, phi := range ar {
			pred += phi * (w[t-1-i] - mu)
		}
		for j, theta := range ma {
			if t-1-j >= 0 {
				pred += theta * resid[t-1-j]
			}
		}
		e := w[t] - pred
		resid[t] = e
		sse += e * e
	}
	return sse
}

// stableRoots reports whether every root of 1 - c1 z - ... - cn z^n lies
// outside the unit circle, via the eigenvalues of the companion matrix.
func stableRoots(coef []float64) bool {
	n := len(coef)
	switch n {
	case 0:
		return true
	case 1:
		return math.Abs(coef[0]) < 1
	}
	data := make([]float64, n*n)
	copy(data, coef)
	for i := 1; i < n; i++ {
		data[i*n+i-1] = 1
	}
	var eig mat.Eigen
	if !eig.Factorize(mat.NewDense(n, n, data), mat.EigenNone) {
		return false
	}
	for _, v := range eig.Values(nil) {
		if cmplx.Abs(v) >= 1 {
			return false
		}
	}
	return true
}

func negate(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = -v
	}
	return out
}

var errNotConverged = errors.New("optimizer did not converge")

// fitModel fits ARIMA(order) to y by conditional sum of squares.
func fitModel(y []float64, order Order, intercept bool) (*Model, error) {
	w := y
	levels := make([]float64, 0, order.D)
	for k := 0; k < order.D; k++ {
		levels = append(levels, w[len(w)-1])
		w = diff(w)
	}
	nEff := len(w) - order.P
	nParams := order.P + order.Q
	if intercept {
		nParams++
	}
	if nEff <= nParams+1 {
		return nil, fmt.Errorf("%s: %w", order, ErrInsufficientData)
	}

	resid := make([]float64, len(w))
	unpack := func(x []float64) (mu float64, ar, ma []float64) {
		i := 0
		if intercept {
			mu = x[0]
			i = 1
		}
		ar = x[i : i+order.P]
		ma = x[i+order.P : i+order.P+order.Q]
		return mu, ar, ma
	}
	objective := func(x []float64) float64 {
		mu, ar, ma := unpack(x)
		if !stableRoots(ar) || !stableRoots(negate(ma)) {
			return penalty
		}
		sse := cssResiduals(w, mu, ar, ma, resid)
		return 0.5 * float64(nEff) * math.Log(math.Max(sse, math.SmallestNonzeroFloat64)/float64(nEff))
	}

	x0 := make([]float64, nParams)
	if intercept {
		x0[0] = stat.Mean(w, nil)
	}

	x := x0
	if nParams > 0 {
		settings := &optimize.Settings{MajorIterations: 1000, FuncEvaluations: 3000}
		res, err := optimize.Minimize(optimize.Problem{Func: objective}, x0, settings, &optimize.NelderMead{})
		// Hitting an iteration limit still leaves a usable best point.
		if res == nil || math.IsNaN(res.F) || math.IsInf(res.F, 0) || res.F >= penalty {
			if err == nil {
				err = errNotConverged
			}
			return nil, fmt.Errorf("%s: %w", order, err)
		}
		x = res.X
	}

	mu, ar, ma := unpack(x)
	sse := cssResiduals(w, mu, ar, ma, resid)
	sigma2 := sse / float64(nEff)
	if sigma2 <= 0 || math.IsNaN(sigma2) {
		return nil, fmt.Errorf("%s: degenerate residual variance", order)
	}
	loglik := -0.5 * float64(nEff) * (math.Log(2*math.Pi*sigma2) + 1)
	k := float64(nParams + 1)

	return &Model{
		Order:     order,
		Intercept: intercept,
		Mean:      mu,
		AR:        append([]float64(nil), ar...),
		MA:        append([]float64(nil), ma...),
		Sigma2:    sigma2,
		LogLik:    loglik,
		AIC:       -2*loglik + 2*k,
		w:         w,
		resid:     resid,
		levels:    levels,
	}, nil
}
