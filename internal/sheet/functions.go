package sheet

import (
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/contactkeval/option-greeks/internal/pricing"
)

var (
	ErrArity   = errors.New("wrong number of arguments")
	ErrArgType = errors.New("wrong argument type")
)

// Functions is the function surface visible to formulas. The pricing
// entries keep the positional signatures of the pricing package:
//
//	price(s, k, r, t, vol, is_call, is_stock)
//	delta(s, k, r, t, vol, is_call, is_stock)
//	gamma(s, k, r, t, vol, is_stock)
//	theta(s, k, r, t, vol, is_call, is_stock)
//	vega(s, k, r, t, vol, is_stock)
//	rho(s, k, r, t, vol, is_call, is_stock)
//	norm_cdf(x), norm_pdf(x)
func Functions() map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"norm_cdf": unary("norm_cdf", pricing.NormCDF),
		"norm_pdf": unary("norm_pdf", pricing.NormPDF),
		"price":    withParity("price", pricing.Price),
		"delta":    withParity("delta", pricing.Delta),
		"theta":    withParity("theta", pricing.Theta),
		"rho":      withParity("rho", pricing.Rho),
		"gamma":    noParity("gamma", pricing.Gamma),
		"vega":     noParity("vega", pricing.Vega),

		"exp":  unary("exp", math.Exp),
		"log":  unary("log", math.Log),
		"sqrt": unary("sqrt", math.Sqrt),
		"abs":  unary("abs", math.Abs),
		"max":  binary("max", math.Max),
		"min":  binary("min", math.Min),
	}
}

func arity(name string, args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: got %d, want %d: %w", name, len(args), n, ErrArity)
	}
	return nil
}

func floatArg(name string, args []any, i int) (float64, error) {
	switch v := args[i].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%s: argument %d is %T, want number: %w", name, i+1, args[i], ErrArgType)
}

func boolArg(name string, args []any, i int) (bool, error) {
	if v, ok := args[i].(bool); ok {
		return v, nil
	}
	return false, fmt.Errorf("%s: argument %d is %T, want bool: %w", name, i+1, args[i], ErrArgType)
}

// marketArgs reads the leading s, k, r, t, vol.
func marketArgs(name string, args []any) ([5]float64, error) {
	var out [5]float64
	for i := range out {
		f, err := floatArg(name, args, i)
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		x, err := floatArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func binary(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		a, err := floatArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		b, err := floatArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func withParity(name string, fn func(s, k, r, t, vol float64, isCall, isStock bool) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if err := arity(name, args, 7); err != nil {
			return nil, err
		}
		m, err := marketArgs(name, args)
		if err != nil {
			return nil, err
		}
		isCall, err := boolArg(name, args, 5)
		if err != nil {
			return nil, err
		}
		isStock, err := boolArg(name, args, 6)
		if err != nil {
			return nil, err
		}
		return fn(m[0], m[1], m[2], m[3], m[4], isCall, isStock), nil
	}
}

func noParity(name string, fn func(s, k, r, t, vol float64, isStock bool) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if err := arity(name, args, 6); err != nil {
			return nil, err
		}
		m, err := marketArgs(name, args)
		if err != nil {
			return nil, err
		}
		isStock, err := boolArg(name, args, 5)
		if err != nil {
			return nil, err
		}
		return fn(m[0], m[1], m[2], m[3], m[4], isStock), nil
	}
}
