package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Key is the rollup coordinate of a risk row. Stock rows leave everything
// but Underlying zero.
type Key struct {
	Underlying string    `json:"underlying"`
	Expiry     time.Time `json:"expiry,omitempty"`
	Strike     float64   `json:"strike,omitempty"`
	Parity     string    `json:"parity,omitempty"`
}

// Measures are the position-weighted risk amounts.
type Measures struct {
	Theo            decimal.Decimal `json:"theo"`
	DollarDelta     decimal.Decimal `json:"dollar_delta"`
	BetaDollarDelta decimal.Decimal `json:"beta_dollar_delta"`
	GammaPercent    decimal.Decimal `json:"gamma_percent"`
	Theta           decimal.Decimal `json:"theta"`
	VegaPercent     decimal.Decimal `json:"vega_percent"`
	Rho             decimal.Decimal `json:"rho"`
	JumpUp          decimal.Decimal `json:"jump_up"`
	JumpDown        decimal.Decimal `json:"jump_down"`
}

// Add returns the field-wise sum.
func (m Measures) Add(o Measures) Measures {
	return Measures{
		Theo:            m.Theo.Add(o.Theo),
		DollarDelta:     m.DollarDelta.Add(o.DollarDelta),
		BetaDollarDelta: m.BetaDollarDelta.Add(o.BetaDollarDelta),
		GammaPercent:    m.GammaPercent.Add(o.GammaPercent),
		Theta:           m.Theta.Add(o.Theta),
		VegaPercent:     m.VegaPercent.Add(o.VegaPercent),
		Rho:             m.Rho.Add(o.Rho),
		JumpUp:          m.JumpUp.Add(o.JumpUp),
		JumpDown:        m.JumpDown.Add(o.JumpDown),
	}
}

// Round returns m rounded to places decimal places, for display.
func (m Measures) Round(places int32) Measures {
	return Measures{
		Theo:            m.Theo.Round(places),
		DollarDelta:     m.DollarDelta.Round(places),
		BetaDollarDelta: m.BetaDollarDelta.Round(places),
		GammaPercent:    m.GammaPercent.Round(places),
		Theta:           m.Theta.Round(places),
		VegaPercent:     m.VegaPercent.Round(places),
		Rho:             m.Rho.Round(places),
		JumpUp:          m.JumpUp.Round(places),
		JumpDown:        m.JumpDown.Round(places),
	}
}

// Row is the risk of one position.
type Row struct {
	Key
	Quantity float64 `json:"quantity"`
	Measures
}

// ComputeRisk scales per-unit greeks by the position.
//
//	DollarDelta     = UMid · Delta · Q
//	BetaDollarDelta = Beta · DollarDelta
//	GammaPercent    = UMid · Gamma · Q
//	VegaPercent     = VolMid · Vega · Q
//
// Theo, Theta, Rho and the jump scenarios are multiplied by Q.
func ComputeRisk(g Greeks, p Position) Row {
	q := decimal.NewFromFloat(p.Quantity)
	beta := p.Beta
	if beta == 0 {
		beta = 1
	}
	uMid := decimal.NewFromFloat(g.UMid)
	dollarDelta := uMid.Mul(decimal.NewFromFloat(g.Delta)).Mul(q)

	return Row{
		Key:      p.Key(),
		Quantity: p.Quantity,
		Measures: Measures{
			Theo:            decimal.NewFromFloat(g.Theo).Mul(q),
			DollarDelta:     dollarDelta,
			BetaDollarDelta: decimal.NewFromFloat(beta).Mul(dollarDelta),
			GammaPercent:    uMid.Mul(decimal.NewFromFloat(g.Gamma)).Mul(q),
			Theta:           decimal.NewFromFloat(g.Theta).Mul(q),
			VegaPercent:     decimal.NewFromFloat(g.VolMid).Mul(decimal.NewFromFloat(g.Vega)).Mul(q),
			Rho:             decimal.NewFromFloat(g.Rho).Mul(q),
			JumpUp:          decimal.NewFromFloat(g.JumpUp).Mul(q),
			JumpDown:        decimal.NewFromFloat(g.JumpDown).Mul(q),
		},
	}
}
