package risk

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Level is one grouping dimension of a rollup.
type Level int

const (
	ByUnderlying Level = iota
	ByExpiry
	ByStrike
	ByParity
)

// DefaultLevels is the full underlying → expiry → strike → parity hierarchy.
var DefaultLevels = []Level{ByUnderlying, ByExpiry, ByStrike, ByParity}

func (l Level) String() string {
	switch l {
	case ByUnderlying:
		return "underlying"
	case ByExpiry:
		return "expiry"
	case ByStrike:
		return "strike"
	case ByParity:
		return "parity"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevels parses a comma-separated list such as "underlying,expiry".
func ParseLevels(s string) ([]Level, error) {
	var out []Level
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for _, l := range DefaultLevels {
			if l.String() == part {
				out = append(out, l)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown rollup level %q", part)
		}
	}
	return out, nil
}

func (l Level) compare(a, b Key) int {
	switch l {
	case ByUnderlying:
		return strings.Compare(a.Underlying, b.Underlying)
	case ByExpiry:
		return a.Expiry.Compare(b.Expiry)
	case ByStrike:
		return cmp.Compare(a.Strike, b.Strike)
	case ByParity:
		return strings.Compare(a.Parity, b.Parity)
	}
	return 0
}

func (l Level) copyField(dst *Key, src Key) {
	switch l {
	case ByUnderlying:
		dst.Underlying = src.Underlying
	case ByExpiry:
		dst.Expiry = src.Expiry
	case ByStrike:
		dst.Strike = src.Strike
	case ByParity:
		dst.Parity = src.Parity
	}
}

// Total is a subtotal at Depth levels into the rollup; Depth 0 is the grand
// total. Key fields below Depth are zero.
type Total struct {
	Key
	Depth int `json:"depth"`
	Count int `json:"count"`
	Measures
}

// Rollup sums rows by every prefix of by, depth first: the grand total,
// then each first-level group followed by its children, groups in ascending
// key order. An empty input yields no totals.
func Rollup(rows []Row, by ...Level) []Total {
	if len(rows) == 0 {
		return nil
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		for _, l := range by {
			if c := l.compare(a.Key, b.Key); c != 0 {
				return c
			}
		}
		return 0
	})

	var out []Total
	var walk func(group []Row, depth int)
	walk = func(group []Row, depth int) {
		t := Total{Depth: depth, Count: len(group)}
		for _, l := range by[:depth] {
			l.copyField(&t.Key, group[0].Key)
		}
		for _, r := range group {
			t.Measures = t.Measures.Add(r.Measures)
		}
		out = append(out, t)

		if depth == len(by) {
			return
		}
		l := by[depth]
		for start := 0; start < len(group); {
			end := start + 1
			for end < len(group) && l.compare(group[start].Key, group[end].Key) == 0 {
				end++
			}
			walk(group[start:end], depth+1)
			start = end
		}
	}
	walk(sorted, 0)
	return out
}
