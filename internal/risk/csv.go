package risk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var ErrMissingColumn = errors.New("missing column")

var requiredColumns = []string{"underlying", "quantity", "spot_bid", "spot_ask"}

// ReadPositions parses a position file with a header row naming any of
// underlying, type, expiry, strike, parity, quantity, spot_bid, spot_ask,
// vol_bid, vol_ask and beta, in any order and case. Expiry accepts
// 2006-01-02 (midnight UTC) or RFC 3339. Blank numeric cells read as 0.
func ReadPositions(r io.Reader) ([]Position, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingColumn)
		}
	}

	var out []Position
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		p, err := parsePosition(rec, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parsePosition(rec []string, col map[string]int) (Position, error) {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	num := func(name string) (float64, error) {
		s := get(name)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return f, nil
	}

	p := Position{
		Underlying: get("underlying"),
		Type:       strings.ToUpper(get("type")),
		Parity:     strings.ToUpper(get("parity")),
	}
	if s := get("expiry"); s != "" {
		t, err := parseExpiry(s)
		if err != nil {
			return p, err
		}
		p.Expiry = t
	}

	var err error
	fields := []*float64{&p.Strike, &p.Quantity, &p.SpotBid, &p.SpotAsk, &p.VolBid, &p.VolAsk, &p.Beta}
	for i, name := range []string{"strike", "quantity", "spot_bid", "spot_ask", "vol_bid", "vol_ask", "beta"} {
		if *fields[i], err = num(name); err != nil {
			return p, err
		}
	}
	return p, nil
}

func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expiry %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
