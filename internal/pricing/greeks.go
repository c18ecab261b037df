package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Typed errors returned by Validate and ParseParity.
var (
	ErrInvalidSpot   = errors.New("underlying price must be positive")
	ErrInvalidStrike = errors.New("strike must be positive")
	ErrInvalidExpiry = errors.New("time to expiry must be positive")
	ErrInvalidVol    = errors.New("volatility must be positive")
	ErrInvalidParity = errors.New("invalid option parity")
)

// daysPerYear is the average Gregorian year length.
const daysPerYear = 365.2425

// Greeks bundles the price and the five sensitivities of one instrument.
type Greeks struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// Instrument carries the positional arguments of the pricing functions as
// named fields.
type Instrument struct {
	Spot    float64 `json:"s"`
	Strike  float64 `json:"k"`
	Rate    float64 `json:"r"`
	Expiry  float64 `json:"t"`
	Vol     float64 `json:"vol"`
	IsCall  bool    `json:"is_call"`
	IsStock bool    `json:"is_stock"`
}

// Greeks evaluates the instrument.
func (in Instrument) Greeks() Greeks {
	return Evaluate(in.Spot, in.Strike, in.Rate, in.Expiry, in.Vol, in.IsCall, in.IsStock)
}

// Validate checks the instrument's inputs. Stocks are always valid.
func (in Instrument) Validate() error {
	if in.IsStock {
		return nil
	}
	return Validate(in.Spot, in.Strike, in.Expiry, in.Vol)
}

// Evaluate computes price, delta, gamma, theta, vega and rho from a single
// d1/d2 evaluation. The results are bit-identical to the individual functions.
func Evaluate(s, k, r, t, vol float64, isCall, isStock bool) Greeks {
	if isStock {
		return Greeks{Price: s, Delta: 1.0}
	}

	x1 := d1(s, k, r, t, vol)
	x2 := d2(x1, t, vol)
	return Greeks{
		Price: price(s, k, r, t, x1, x2, isCall),
		Delta: delta(x1, isCall),
		Gamma: gamma(s, t, vol, x1),
		Theta: theta(s, k, r, t, vol, x1, x2, isCall),
		Vega:  vega(s, t, x1),
		Rho:   rho(k, r, t, x2, isCall),
	}
}

// Finite reports whether every field of g is a finite number.
func (g Greeks) Finite() bool {
	for _, v := range [...]float64{g.Price, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate reports whether the inputs give finite Black-Scholes values.
// The pricing functions never call it.
func Validate(s, k, t, vol float64) error {
	switch {
	case !(s > 0) || math.IsInf(s, 0):
		return fmt.Errorf("s=%v: %w", s, ErrInvalidSpot)
	case !(k > 0) || math.IsInf(k, 0):
		return fmt.Errorf("k=%v: %w", k, ErrInvalidStrike)
	case !(t > 0) || math.IsInf(t, 0):
		return fmt.Errorf("t=%v: %w", t, ErrInvalidExpiry)
	case !(vol > 0) || math.IsInf(vol, 0):
		return fmt.Errorf("vol=%v: %w", vol, ErrInvalidVol)
	}
	return nil
}

// ParseParity maps "call"/"c" and "put"/"p" (any case) to isCall.
func ParseParity(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return true, nil
	case "put", "p":
		return false, nil
	}
	return false, fmt.Errorf("%q: %w", s, ErrInvalidParity)
}

// YearsBetween returns the signed distance from -> to in average years.
func YearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}
