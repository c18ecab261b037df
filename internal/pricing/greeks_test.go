package pricing_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-greeks/internal/pricing"
)

func TestEvaluateMatchesIndividualFunctions(t *testing.T) {
	cases := []pricing.Instrument{
		{Spot: 100, Strike: 100, Rate: 0.05, Expiry: 1, Vol: 0.2, IsCall: true},
		{Spot: 100, Strike: 100, Rate: 0.05, Expiry: 1, Vol: 0.2},
		{Spot: 103, Strike: 95, Rate: 0.05, Expiry: 0.6, Vol: 0.4, IsCall: true},
		{Spot: 42, Strike: 60, Rate: -0.01, Expiry: 0.25, Vol: 0.35},
		{Spot: 77, Strike: 0, Rate: 0.05, Expiry: 0, Vol: 0, IsStock: true},
	}

	same := func(name string, want, got float64, in pricing.Instrument) {
		t.Helper()
		assert.Equal(t, math.Float64bits(want), math.Float64bits(got), "%s %+v: %v != %v", name, in, want, got)
	}
	for _, in := range cases {
		g := in.Greeks()
		s, k, r, tt, v := in.Spot, in.Strike, in.Rate, in.Expiry, in.Vol

		same("price", pricing.Price(s, k, r, tt, v, in.IsCall, in.IsStock), g.Price, in)
		same("delta", pricing.Delta(s, k, r, tt, v, in.IsCall, in.IsStock), g.Delta, in)
		same("gamma", pricing.Gamma(s, k, r, tt, v, in.IsStock), g.Gamma, in)
		same("theta", pricing.Theta(s, k, r, tt, v, in.IsCall, in.IsStock), g.Theta, in)
		same("vega", pricing.Vega(s, k, r, tt, v, in.IsStock), g.Vega, in)
		same("rho", pricing.Rho(s, k, r, tt, v, in.IsCall, in.IsStock), g.Rho, in)
	}
}

func TestGreeksFinite(t *testing.T) {
	assert.True(t, pricing.Evaluate(100, 100, 0.05, 1, 0.2, true, false).Finite())

	// vol·√t underflows to zero, so d1 and gamma are not numbers.
	g := pricing.Evaluate(100, 100, 0.05, 1e-300, 1e-300, true, false)
	require.NoError(t, pricing.Validate(100, 100, 1e-300, 1e-300))
	assert.False(t, g.Finite())
	assert.False(t, pricing.Greeks{Vega: math.Inf(1)}.Finite())
}

func TestEvaluateStock(t *testing.T) {
	g := pricing.Evaluate(250, 0, 0.05, 0, 0, false, true)
	require.Equal(t, pricing.Greeks{Price: 250, Delta: 1}, g)
}

func TestGammaVegaIgnoreParity(t *testing.T) {
	call := pricing.Evaluate(91, 100, 0.03, 0.75, 0.27, true, false)
	put := pricing.Evaluate(91, 100, 0.03, 0.75, 0.27, false, false)

	assert.Equal(t, call.Gamma, put.Gamma)
	assert.Equal(t, call.Vega, put.Vega)
	assert.Positive(t, call.Gamma)
	assert.Positive(t, call.Vega)
}

func TestSignConventions(t *testing.T) {
	call := pricing.Evaluate(100, 100, 0.05, 1, 0.2, true, false)
	put := pricing.Evaluate(100, 100, 0.05, 1, 0.2, false, false)

	assert.Negative(t, call.Theta)
	assert.Positive(t, call.Rho)
	assert.Negative(t, put.Rho)
	assert.Negative(t, put.Delta)
	assert.InDelta(t, 1.0, call.Delta-put.Delta, 1e-12)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		s, k, tt, vol float64
		want          error
	}{
		{"ok", 100, 100, 1, 0.2, nil},
		{"zero spot", 0, 100, 1, 0.2, pricing.ErrInvalidSpot},
		{"negative strike", 100, -1, 1, 0.2, pricing.ErrInvalidStrike},
		{"expired", 100, 100, 0, 0.2, pricing.ErrInvalidExpiry},
		{"nan vol", 100, 100, 1, math.NaN(), pricing.ErrInvalidVol},
		{"inf strike", 100, math.Inf(1), 1, 0.2, pricing.ErrInvalidStrike},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := pricing.Validate(tc.s, tc.k, tc.tt, tc.vol)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	stock := pricing.Instrument{Spot: 10, IsStock: true}
	require.NoError(t, stock.Validate())
}

func TestParseParity(t *testing.T) {
	for _, in := range []string{"call", "CALL", " c "} {
		isCall, err := pricing.ParseParity(in)
		require.NoError(t, err)
		require.True(t, isCall, in)
	}
	for _, in := range []string{"put", "Put", "P"} {
		isCall, err := pricing.ParseParity(in)
		require.NoError(t, err)
		require.False(t, isCall, in)
	}

	_, err := pricing.ParseParity("straddle")
	require.ErrorIs(t, err, pricing.ErrInvalidParity)
}

func TestYearsBetween(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Duration(365.2425 * 24 * float64(time.Hour)))

	assert.InDelta(t, 1.0, pricing.YearsBetween(from, to), 1e-9)
	assert.InDelta(t, -1.0, pricing.YearsBetween(to, from), 1e-9)
}
