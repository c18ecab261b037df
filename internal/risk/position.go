// Package risk turns positions in stocks and European options into
// position-weighted Black-Scholes risk and rolls it up by underlying,
// expiry, strike and parity.
//
// Per position:
//
//	UMid   = (SpotBid + SpotAsk) / 2
//	VolMid = (VolBid + VolAsk) / 2
//	Theo   = Price at (UMid, VolMid)
//	Delta, Gamma, Theta, Vega, Rho at (SpotBid, VolBid)
//	JumpUp/JumpDown = Price at UMid·(1±shock) − Theo
//
// Monetary aggregates are carried as decimal.Decimal so rollups do not
// accumulate float drift across large books.
package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contactkeval/option-greeks/internal/pricing"
)

// Instrument types and parities as they appear in position files.
const (
	TypeStock  = "STOCK"
	TypeOption = "OPTION"
	ParityCall = "CALL"
	ParityPut  = "PUT"
)

var (
	ErrExpired     = errors.New("option expired")
	ErrUnknownType = errors.New("unknown instrument type")
	ErrNonFinite   = errors.New("non-finite risk value")
)

// Position is a signed holding with the quotes needed to value it.
type Position struct {
	Underlying string    `json:"underlying" binding:"required"`
	Type       string    `json:"type"`             // STOCK or OPTION; empty means OPTION
	Expiry     time.Time `json:"expiry,omitempty"` // ignored for stock
	Strike     float64   `json:"strike,omitempty"`
	Parity     string    `json:"parity,omitempty"` // CALL or PUT
	Quantity   float64   `json:"quantity"`
	SpotBid    float64   `json:"spot_bid"`
	SpotAsk    float64   `json:"spot_ask"`
	VolBid     float64   `json:"vol_bid,omitempty"`
	VolAsk     float64   `json:"vol_ask,omitempty"`
	Beta       float64   `json:"beta,omitempty"` // 0 is read as 1
}

// IsStock reports whether the position is in the underlying itself.
func (p Position) IsStock() bool {
	return strings.EqualFold(p.Type, TypeStock)
}

// IsCall reports whether the position is a call. Stocks report false.
func (p Position) IsCall() bool {
	return strings.EqualFold(p.Parity, ParityCall)
}

// Key identifies the rollup bucket of the position.
func (p Position) Key() Key {
	k := Key{Underlying: strings.ToUpper(p.Underlying)}
	if !p.IsStock() {
		k.Expiry = p.Expiry
		k.Strike = p.Strike
		k.Parity = strings.ToUpper(p.Parity)
	}
	return k
}

func (p Position) check(dt float64) error {
	t := strings.ToUpper(p.Type)
	switch t {
	case TypeStock:
		if !(p.SpotBid > 0) || !(p.SpotAsk > 0) {
			return fmt.Errorf("stock quote bid=%v ask=%v: %w", p.SpotBid, p.SpotAsk, pricing.ErrInvalidSpot)
		}
		return nil
	case TypeOption, "":
	default:
		return fmt.Errorf("%q: %w", p.Type, ErrUnknownType)
	}

	if _, err := pricing.ParseParity(p.Parity); err != nil {
		return err
	}
	if dt <= 0 {
		return fmt.Errorf("expiry %s: %w", p.Expiry.Format(time.RFC3339), ErrExpired)
	}
	if err := pricing.Validate(p.SpotBid, p.Strike, dt, p.VolBid); err != nil {
		return err
	}
	return pricing.Validate(p.SpotAsk, p.Strike, dt, p.VolAsk)
}

// Greeks is the per-unit valuation of one position.
type Greeks struct {
	UMid     float64 `json:"u_mid"`
	VolMid   float64 `json:"vol_mid"`
	DT       float64 `json:"dt"`
	IsStock  bool    `json:"is_stock"`
	IsCall   bool    `json:"is_call"`
	Theo     float64 `json:"theo"`
	Delta    float64 `json:"delta"`
	Gamma    float64 `json:"gamma"`
	Theta    float64 `json:"theta"`
	Vega     float64 `json:"vega"`
	Rho      float64 `json:"rho"`
	JumpUp   float64 `json:"jump_up"`
	JumpDown float64 `json:"jump_down"`
}

// ComputeGreeks values one unit of p as of asOf under rate and a relative
// spot shock for the jump scenarios.
func ComputeGreeks(p Position, asOf time.Time, rate, shock float64) (Greeks, error) {
	g := Greeks{
		UMid:    (p.SpotBid + p.SpotAsk) / 2,
		VolMid:  (p.VolBid + p.VolAsk) / 2,
		IsStock: p.IsStock(),
		IsCall:  p.IsCall(),
	}
	if !g.IsStock {
		g.DT = pricing.YearsBetween(asOf, p.Expiry)
	}
	if err := p.check(g.DT); err != nil {
		return Greeks{}, err
	}
	inputs := []struct {
		name string
		v    float64
	}{{"quantity", p.Quantity}, {"beta", p.Beta}, {"u_mid", g.UMid}, {"vol_mid", g.VolMid}}
	for _, in := range inputs {
		if !isFinite(in.v) {
			return Greeks{}, fmt.Errorf("%s=%v: %w", in.name, in.v, ErrNonFinite)
		}
	}

	k := p.Strike
	g.Theo = pricing.Price(g.UMid, k, rate, g.DT, g.VolMid, g.IsCall, g.IsStock)

	bid := pricing.Evaluate(p.SpotBid, k, rate, g.DT, p.VolBid, g.IsCall, g.IsStock)
	g.Delta = bid.Delta
	g.Gamma = bid.Gamma
	g.Theta = bid.Theta
	g.Vega = bid.Vega
	g.Rho = bid.Rho

	up := pricing.Price(g.UMid*(1+shock), k, rate, g.DT, g.VolMid, g.IsCall, g.IsStock)
	down := pricing.Price(g.UMid*(1-shock), k, rate, g.DT, g.VolMid, g.IsCall, g.IsStock)
	g.JumpUp = up - g.Theo
	g.JumpDown = down - g.Theo

	for _, v := range []float64{g.Theo, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho, g.JumpUp, g.JumpDown} {
		if !isFinite(v) {
			return Greeks{}, ErrNonFinite
		}
	}
	return g, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
