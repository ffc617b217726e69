package calculator

import "errors"

// CalculateRSI returns Wilder's relative strength index of closes. With
// period closes or fewer there is nothing to smooth and the neutral 50 is
// returned.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) <= period {
		return 50, nil
	}

	n := float64(period)
	var up, down float64
	for i := 1; i < len(closes); i++ {
		gain, loss := move(closes[i-1], closes[i])
		if i <= period {
			// seed with the plain average of the first period moves
			up += gain / n
			down += loss / n
			continue
		}
		up = (up*(n-1) + gain) / n
		down = (down*(n-1) + loss) / n
	}

	switch {
	case up == 0 && down == 0:
		return 50, nil
	case down == 0:
		return 100, nil
	}
	return 100 - 100/(1+up/down), nil
}

func move(prev, cur float64) (gain, loss float64) {
	if d := cur - prev; d > 0 {
		return d, 0
	}
	return 0, prev - cur
}
