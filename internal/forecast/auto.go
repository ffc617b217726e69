package forecast

import (
	"fmt"

	"github.com/rs/zerolog"
)

// AutoConfig bounds the stepwise order search.
type AutoConfig struct {
	MaxP      int
	MaxQ      int
	MaxD      int
	MaxModels int
}

// DefaultAutoConfig mirrors the usual auto-ARIMA defaults for non-seasonal data.
func DefaultAutoConfig() AutoConfig {
	return AutoConfig{MaxP: 5, MaxQ: 5, MaxD: 2, MaxModels: 64}
}

type candidate struct {
	p, q      int
	intercept bool
}

// autoARIMA selects d with KPSS tests, then walks the (p, q, intercept)
// neighbourhood of the best model by AIC until no neighbour improves it.
func autoARIMA(y []float64, cfg AutoConfig, logger zerolog.Logger) (*Model, error) {
	d := ndiffs(y, cfg.MaxD)
	allowMean := d <= 1

	tried := make(map[candidate]bool)
	var best *Model
	var lastErr error

	try := func(c candidate) bool {
		if c.p < 0 || c.q < 0 || c.p > cfg.MaxP || c.q > cfg.MaxQ {
			return false
		}
		if c.intercept && !allowMean {
			return false
		}
		if tried[c] || len(tried) >= cfg.MaxModels {
			return false
		}
		tried[c] = true

		m, err := fitModel(y, Order{P: c.p, D: d, Q: c.q}, c.intercept)
		if err != nil {
			lastErr = err
			logger.Debug().Err(err).Msg("candidate fit failed")
			return false
		}
		logger.Debug().Str("model", m.String()).Float64("aic", m.AIC).Msg("candidate fitted")
		if best == nil || m.AIC < best.AIC {
			best = m
			return true
		}
		return false
	}

	try(candidate{2, 2, allowMean})
	try(candidate{0, 0, allowMean})
	try(candidate{1, 0, allowMean})
	try(candidate{0, 1, allowMean})
	if allowMean {
		try(candidate{0, 0, false})
	}
	if best == nil {
		if lastErr == nil {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("%w: %v", ErrNoModel, lastErr)
	}

	for improved := true; improved; {
		improved = false
		c := candidate{best.Order.P, best.Order.Q, best.Intercept}
		neighbours := []candidate{
			{c.p - 1, c.q, c.intercept},
			{c.p + 1, c.q, c.intercept},
			{c.p, c.q - 1, c.intercept},
			{c.p, c.q + 1, c.intercept},
			{c.p - 1, c.q - 1, c.intercept},
			{c.p + 1, c.q + 1, c.intercept},
			{c.p - 1, c.q + 1, c.intercept},
			{c.p + 1, c.q - 1, c.intercept},
			{c.p, c.q, !c.intercept},
		}
		for _, n := range neighbours {
			if try(n) {
				improved = true
				break
			}
		}
	}

	logger.Debug().Str("model", best.String()).Int("fits", len(tried)).Msg("stepwise search finished")
	return best, nil
}
