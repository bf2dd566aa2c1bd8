// Package odds provides conversions between American odds, decimal odds,
// and implied probability. All functions are pure; invalid inputs return
// ErrInvalidOdds instead of producing Inf/NaN.
package odds

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds is returned for prices that have no defined conversion
// (American 0, decimal <= 1.0, probability outside (0, 1]).
var ErrInvalidOdds = errors.New("invalid odds")

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -150 -> 1.6667. Both +100 and -100 map to 2.0.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("american odds 0: %w", ErrInvalidOdds)
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}
	return 100.0/math.Abs(float64(american)) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds, rounding to the
// nearest whole unit. Decimal 2.0 is even money and canonically returns +100.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("decimal odds %v: %w", decimal, ErrInvalidOdds)
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// AmericanToImpliedProb converts American odds to the break-even win
// probability in (0, 1).
func AmericanToImpliedProb(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("american odds 0: %w", ErrInvalidOdds)
	}
	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}
	abs := math.Abs(float64(american))
	return abs / (abs + 100.0), nil
}

// DecimalToImpliedProb converts decimal odds to implied probability (1/d).
func DecimalToImpliedProb(decimal float64) (float64, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("decimal odds %v: %w", decimal, ErrInvalidOdds)
	}
	return 1.0 / decimal, nil
}

// ImpliedProbToDecimal converts implied probability to decimal odds (1/p).
func ImpliedProbToDecimal(prob float64) (float64, error) {
	if prob <= 0 || prob > 1 {
		return 0, fmt.Errorf("probability %v: %w", prob, ErrInvalidOdds)
	}
	return 1.0 / prob, nil
}

// ImpliedProbToAmerican converts implied probability to American odds.
// Exactly even money (p = 0.5) canonically returns +100, never -100.
func ImpliedProbToAmerican(prob float64) (int, error) {
	if prob <= 0 || prob >= 1 {
		return 0, fmt.Errorf("probability %v: %w", prob, ErrInvalidOdds)
	}
	if math.Abs(prob-0.5) < 1e-10 {
		return 100, nil
	}
	if prob < 0.5 {
		return int(math.Round(100.0/prob - 100.0)), nil
	}
	return int(math.Round(-100.0 * prob / (1.0 - prob))), nil
}
