// Package pricing implements closed-form Black-Scholes pricing and Greeks for
// European options.
//
// Every function here is pure: no package state, no logging, no validation.
// Invalid market inputs (non-positive strike, expiry or volatility) are not
// rejected; they surface as IEEE-754 NaN or ±Inf in the result. Callers that
// need defined behaviour should run Validate first.
//
// The isStock flag treats the instrument as the underlying itself. It is
// checked before d1/d2 are evaluated, so a stock row may carry any strike,
// expiry or volatility (including zero).
package pricing

import "math"

const sqrt2Pi = 2.5066282746310002

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return (1.0 + math.Erf(x/math.Sqrt2)) / 2.0
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / sqrt2Pi
}

func d1(s, k, r, t, vol float64) float64 {
	return (math.Log(s/k) + (r+vol*vol/2)*t) / (vol * math.Sqrt(t))
}

func d2(d1, t, vol float64) float64 {
	return d1 - vol*math.Sqrt(t)
}

// Price returns the Black-Scholes value of a call or put.
//
// Parameters:
//   - s: underlying price
//   - k: strike
//   - r: risk-free rate (annual, may be negative)
//   - t: time to expiry in years
//   - vol: annualised volatility as a decimal
//   - isCall: true for a call, false for a put
//   - isStock: return s and ignore every other parameter
func Price(s, k, r, t, vol float64, isCall, isStock bool) float64 {
	if isStock {
		return s
	}
	x1 := d1(s, k, r, t, vol)
	return price(s, k, r, t, x1, d2(x1, t, vol), isCall)
}

// Delta is the sensitivity of the price to the underlying. A stock has delta 1.
func Delta(s, k, r, t, vol float64, isCall, isStock bool) float64 {
	if isStock {
		return 1.0
	}
	return delta(d1(s, k, r, t, vol), isCall)
}

// Gamma is the sensitivity of delta to the underlying. Calls and puts share it.
func Gamma(s, k, r, t, vol float64, isStock bool) float64 {
	if isStock {
		return 0.0
	}
	return gamma(s, t, vol, d1(s, k, r, t, vol))
}

// Theta is the sensitivity of the price to time, per year. Long options
// normally carry negative theta.
func Theta(s, k, r, t, vol float64, isCall, isStock bool) float64 {
	if isStock {
		return 0.0
	}
	x1 := d1(s, k, r, t, vol)
	return theta(s, k, r, t, vol, x1, d2(x1, t, vol), isCall)
}

// Vega is the sensitivity of the price to volatility. Calls and puts share it.
func Vega(s, k, r, t, vol float64, isStock bool) float64 {
	if isStock {
		return 0.0
	}
	return vega(s, t, d1(s, k, r, t, vol))
}

// Rho is the sensitivity of the price to the rate, scaled to a 1% move.
func Rho(s, k, r, t, vol float64, isCall, isStock bool) float64 {
	if isStock {
		return 0.0
	}
	x1 := d1(s, k, r, t, vol)
	return rho(k, r, t, d2(x1, t, vol), isCall)
}

// The helpers below take d1/d2 already evaluated and are shared by the
// exported functions and Evaluate, so both produce identical results.

func price(s, k, r, t, x1, x2 float64, isCall bool) float64 {
	if isCall {
		return s*NormCDF(x1) - k*math.Exp(-r*t)*NormCDF(x2)
	}
	return k*math.Exp(-r*t)*NormCDF(-x2) - s*NormCDF(-x1)
}

func delta(x1 float64, isCall bool) float64 {
	if isCall {
		return NormCDF(x1)
	}
	return -NormCDF(-x1)
}

func gamma(s, t, vol, x1 float64) float64 {
	return NormPDF(x1) / (s * vol * math.Sqrt(t))
}

func theta(s, k, r, t, vol, x1, x2 float64, isCall bool) float64 {
	decay := -(s * NormPDF(x1) * vol) / (2 * math.Sqrt(t))
	if isCall {
		return decay - r*k*math.Exp(-r*t)*NormCDF(x2)
	}
	return decay + r*k*math.Exp(-r*t)*NormCDF(-x2)
}

func vega(s, t, x1 float64) float64 {
	return s * math.Sqrt(t) * NormPDF(x1)
}

func rho(k, r, t, x2 float64, isCall bool) float64 {
	if isCall {
		return 0.01 * k * t * math.Exp(-r*t) * NormCDF(x2)
	}
	return 0.01 * -k * t * math.Exp(-r*t) * NormCDF(-x2)
}
