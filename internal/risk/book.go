package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-greeks/internal/logger"
)

// PositionError ties a rejected position to its index in the input.
type PositionError struct {
	Index      int
	Underlying string
	Err        error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d (%s): %v", e.Index, e.Underlying, e.Err)
}

func (e *PositionError) Unwrap() error { return e.Err }

// Book values a set of positions under one rate, shock and valuation time.
type Book struct {
	Rate    float64
	Shock   float64
	Workers int
	AsOf    time.Time
}

// Run values every position concurrently. Rows come back in input order
// and only for positions that valued cleanly; rejected positions are
// reported together in the returned error as *PositionError values. A
// cancelled ctx aborts the run and returns ctx.Err().
func (b *Book) Run(ctx context.Context, positions []Position) ([]Row, error) {
	rows := make([]Row, len(positions))
	errs := make([]error, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Workers, 1))

	for i, p := range positions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gr, err := ComputeGreeks(p, b.AsOf, b.Rate, b.Shock)
			if err != nil {
				logger.Debugf("position %d (%s) rejected: %v", i, p.Underlying, err)
				errs[i] = &PositionError{Index: i, Underlying: p.Underlying, Err: err}
				return nil
			}
			rows[i] = ComputeRisk(gr, p)
			logger.Tracef("position %d (%s): %+v", i, p.Underlying, gr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Row, 0, len(positions))
	for i := range positions {
		if errs[i] == nil {
			out = append(out, rows[i])
		}
	}
	logger.Infof("valued %d of %d positions", len(out), len(positions))
	return out, errors.Join(errs...)
}

// Rejected flattens an error returned by Run into one message per rejected
// position.
func Rejected(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
