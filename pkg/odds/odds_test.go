package odds

import (
	"errors"
	"math"
	"testing"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"even money positive", 100, 2.0},
		{"even money negative", -100, 2.0},
		{"plus 150", 150, 2.5},
		{"plus 200", 200, 3.0},
		{"minus 150", -150, 1.0 + 100.0/150.0},
		{"minus 200", -200, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToDecimal(tt.american)
			if err != nil {
				t.Fatalf("AmericanToDecimal(%d) error: %v", tt.american, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AmericanToDecimal(%d) = %v, want %v", tt.american, got, tt.want)
			}
		})
	}

	if _, err := AmericanToDecimal(0); !errors.Is(err, ErrInvalidOdds) {
		t.Errorf("AmericanToDecimal(0) error = %v, want ErrInvalidOdds", err)
	}
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		name    string
		decimal float64
		want    int
	}{
		{"even money is canonical +100", 2.0, 100},
		{"2.5 is +150", 2.5, 150},
		{"3.0 is +200", 3.0, 200},
		{"1.5 is -200", 1.5, -200},
		{"1.1 is -1000", 1.1, -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecimalToAmerican(tt.decimal)
			if err != nil {
				t.Fatalf("DecimalToAmerican(%v) error: %v", tt.decimal, err)
			}
			if got != tt.want {
				t.Errorf("DecimalToAmerican(%v) = %d, want %d", tt.decimal, got, tt.want)
			}
		})
	}

	for _, bad := range []float64{1.0, 0.5, 0, -2} {
		if _, err := DecimalToAmerican(bad); !errors.Is(err, ErrInvalidOdds) {
			t.Errorf("DecimalToAmerican(%v) error = %v, want ErrInvalidOdds", bad, err)
		}
	}
}

func TestAmericanToImpliedProb(t *testing.T) {
	tests := []struct {
		american int
		want     float64
	}{
		{100, 0.5},
		{-100, 0.5},
		{150, 0.4},
		{200, 1.0 / 3.0},
		{-150, 0.6},
		{-200, 2.0 / 3.0},
	}

	for _, tt := range tests {
		got, err := AmericanToImpliedProb(tt.american)
		if err != nil {
			t.Fatalf("AmericanToImpliedProb(%d) error: %v", tt.american, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AmericanToImpliedProb(%d) = %v, want %v", tt.american, got, tt.want)
		}
	}
}

func TestDecimalToImpliedProb(t *testing.T) {
	got, err := DecimalToImpliedProb(2.0)
	if err != nil || math.Abs(got-0.5) > 1e-9 {
		t.Errorf("DecimalToImpliedProb(2.0) = %v, %v; want 0.5, nil", got, err)
	}

	if _, err := DecimalToImpliedProb(1.0); !errors.Is(err, ErrInvalidOdds) {
		t.Errorf("DecimalToImpliedProb(1.0) error = %v, want ErrInvalidOdds", err)
	}
}

func TestImpliedProbRoundTrip(t *testing.T) {
	if _, err := ImpliedProbToDecimal(0); !errors.Is(err, ErrInvalidOdds) {
		t.Errorf("ImpliedProbToDecimal(0) error = %v, want ErrInvalidOdds", err)
	}

	// p = 0.5 must canonically choose +100.
	got, err := ImpliedProbToAmerican(0.5)
	if err != nil || got != 100 {
		t.Errorf("ImpliedProbToAmerican(0.5) = %d, %v; want 100, nil", got, err)
	}

	for _, p := range []float64{0.1, 0.25, 0.4, 0.6, 0.75, 0.9} {
		american, err := ImpliedProbToAmerican(p)
		if err != nil {
			t.Fatalf("ImpliedProbToAmerican(%v) error: %v", p, err)
		}
		back, err := AmericanToImpliedProb(american)
		if err != nil {
			t.Fatalf("AmericanToImpliedProb(%d) error: %v", american, err)
		}
		if math.Abs(back-p) > 0.01 {
			t.Errorf("round trip for p=%v gave %v via %+d", p, back, american)
		}
	}
}

// American -> decimal -> American is exact within one unit of rounding for
// odds away from the +/-100 boundary; at the boundary the inverse must
// canonically return +100.
func TestAmericanDecimalRoundTrip(t *testing.T) {
	for _, a := range []int{-10000, -550, -215, -150, -101, 101, 110, 150, 215, 550, 10000} {
		d, err := AmericanToDecimal(a)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%d) error: %v", a, err)
		}
		back, err := DecimalToAmerican(d)
		if err != nil {
			t.Fatalf("DecimalToAmerican(%v) error: %v", d, err)
		}
		if diff := back - a; diff < -1 || diff > 1 {
			t.Errorf("round trip %d -> %v -> %d", a, d, back)
		}
	}

	for _, a := range []int{100, -100} {
		d, _ := AmericanToDecimal(a)
		back, err := DecimalToAmerican(d)
		if err != nil || back != 100 {
			t.Errorf("round trip at even money for %d gave %d, want canonical 100", a, back)
		}
	}
}
