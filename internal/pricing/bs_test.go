package pricing

import (
	"math"
	"testing"

	"github.com/contactkeval/option-greeks/internal/testutil"
)

// Accuracy pinned across erf/exp/log implementations.
const relTol = 1e-9

var almostEqual = testutil.RelClose

func TestNormCDF(t *testing.T) {
	if got := NormCDF(0); got != 0.5 {
		t.Fatalf("NormCDF(0) = %v, want 0.5", got)
	}
	if got := NormCDF(1.96); !almostEqual(got, 0.9750021048517796, relTol) {
		t.Fatalf("NormCDF(1.96) = %v", got)
	}

	for _, x := range []float64{0.1, 0.35, 1, 2.5, 5, 8} {
		if got, want := NormCDF(-x), 1-NormCDF(x); !almostEqual(got, want, 1e-12) {
			t.Fatalf("NormCDF(-%v) = %v, want %v", x, got, want)
		}
	}
}

func TestNormPDF(t *testing.T) {
	if got := NormPDF(0); !almostEqual(got, 0.3989422804014327, 1e-15) {
		t.Fatalf("NormPDF(0) = %v", got)
	}
	for _, x := range []float64{0.2, 1, 3.3, 10} {
		if NormPDF(x) != NormPDF(-x) {
			t.Fatalf("NormPDF not symmetric at %v", x)
		}
		if NormPDF(x) >= NormPDF(0) {
			t.Fatalf("NormPDF(%v) exceeds the peak", x)
		}
	}
}

// S=100, K=100, r=5%, T=1y, vol=20%.
func TestReferenceScenario(t *testing.T) {
	s, k, r, ttm, vol := 100.0, 100.0, 0.05, 1.0, 0.2

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"call price", Price(s, k, r, ttm, vol, true, false), 10.450583572185565},
		{"put price", Price(s, k, r, ttm, vol, false, false), 5.573526022256971},
		{"call delta", Delta(s, k, r, ttm, vol, true, false), 0.6368306511756191},
		{"put delta", Delta(s, k, r, ttm, vol, false, false), -0.3631693488243809},
		{"gamma", Gamma(s, k, r, ttm, vol, false), 0.018762017345846895},
		{"vega", Vega(s, k, r, ttm, vol, false), 37.52403469169379},
		{"call theta", Theta(s, k, r, ttm, vol, true, false), -6.414027546438197},
		{"put theta", Theta(s, k, r, ttm, vol, false, false), -1.657880423934626},
		{"call rho", Rho(s, k, r, ttm, vol, true, false), 0.5323248154537634},
		{"put rho", Rho(s, k, r, ttm, vol, false, false), -0.41890460904695065},
	}

	for _, tc := range tests {
		if !almostEqual(tc.got, tc.want, relTol) {
			t.Fatalf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestPutCallParity(t *testing.T) {
	cases := []struct{ s, k, r, t, vol float64 }{
		{100, 100, 0.05, 1, 0.2},
		{100, 95, 0.05, 0.6, 0.4},
		{42, 60, -0.01, 0.25, 0.35},
		{250, 180, 0.03, 2, 0.15},
	}

	for _, c := range cases {
		call := Price(c.s, c.k, c.r, c.t, c.vol, true, false)
		put := Price(c.s, c.k, c.r, c.t, c.vol, false, false)

		lhs := call - put
		rhs := c.s - c.k*math.Exp(-c.r*c.t)
		if !almostEqual(lhs, rhs, relTol) {
			t.Fatalf("put-call parity violated for %+v: LHS=%v RHS=%v", c, lhs, rhs)
		}
	}
}

func TestStockShortCircuit(t *testing.T) {
	// Strike, expiry and vol of zero would produce NaN on the option path.
	s := 123.45
	for _, isCall := range []bool{true, false} {
		if got := Price(s, 0, 0.05, 0, 0, isCall, true); got != s {
			t.Fatalf("stock price = %v, want %v", got, s)
		}
		if got := Delta(s, 0, 0.05, 0, 0, isCall, true); got != 1 {
			t.Fatalf("stock delta = %v, want 1", got)
		}
		if got := Theta(s, 0, 0.05, 0, 0, isCall, true); got != 0 {
			t.Fatalf("stock theta = %v, want 0", got)
		}
		if got := Rho(s, 0, 0.05, 0, 0, isCall, true); got != 0 {
			t.Fatalf("stock rho = %v, want 0", got)
		}
	}
	if got := Gamma(s, 0, 0.05, 0, 0, true); got != 0 {
		t.Fatalf("stock gamma = %v, want 0", got)
	}
	if got := Vega(s, 0, 0.05, 0, 0, true); got != 0 {
		t.Fatalf("stock vega = %v, want 0", got)
	}
}

func TestMoneynessLimits(t *testing.T) {
	k, r, ttm, vol := 100.0, 0.05, 0.5, 0.3

	if p := Price(1e-6, k, r, ttm, vol, true, false); p > 1e-12 {
		t.Fatalf("deep OTM call price = %v, want ~0", p)
	}
	if d := Delta(1e-6, k, r, ttm, vol, true, false); d > 1e-12 {
		t.Fatalf("deep OTM call delta = %v, want ~0", d)
	}
	if d := Delta(1e6, k, r, ttm, vol, true, false); !almostEqual(d, 1, 1e-12) {
		t.Fatalf("deep ITM call delta = %v, want ~1", d)
	}
}

func TestInvalidInputsPropagate(t *testing.T) {
	if v := Price(100, -1, 0.05, 1, 0.2, true, false); !math.IsNaN(v) {
		t.Fatalf("k<0 price = %v, want NaN", v)
	}
	if v := Delta(-5, 100, 0.05, 1, 0.2, true, false); !math.IsNaN(v) {
		t.Fatalf("s<0 delta = %v, want NaN", v)
	}
	if v := Gamma(100, 100, 0.05, 0, 0.2, false); !math.IsNaN(v) && !math.IsInf(v, 0) {
		t.Fatalf("t=0 gamma = %v, want NaN or Inf", v)
	}
	if v := Gamma(0, 100, 0.05, 1, 0.2, false); !math.IsNaN(v) {
		t.Fatalf("s=0 gamma = %v, want NaN", v)
	}
}

func TestIdempotent(t *testing.T) {
	a := Theta(87.3, 91, 0.021, 0.37, 0.44, false, false)
	for i := 0; i < 100; i++ {
		if b := Theta(87.3, 91, 0.021, 0.37, 0.44, false, false); math.Float64bits(a) != math.Float64bits(b) {
			t.Fatalf("call %d returned %v, first returned %v", i, b, a)
		}
	}
}
