// Package sheet evaluates formula columns over a small in-memory table, with
// the pricing functions callable from the formulas.
//
// A formula has the form "Name = expression". Expressions are parsed by
// govaluate and may reference any earlier column, the row index i, and the
// functions listed in Functions:
//
//	t := sheet.Empty(10)
//	err := t.Update(
//		"UnderlyingPrice = 100 + i",
//		"Price = price(UnderlyingPrice, 95, 0.05, 0.6, 0.4, true, false)",
//	)
package sheet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/contactkeval/option-greeks/internal/logger"
)

// RowIndex is the implicit column holding each row's zero-based position.
const RowIndex = "i"

var (
	ErrBadFormula = errors.New("bad formula")
	ErrBadColumn  = errors.New("bad column name")
	ErrRowWidth   = errors.New("row width does not match columns")
)

var (
	identRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	formulaRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*)$`)
)

// Formula is a parsed "Name = expression".
type Formula struct {
	Name string
	Expr string
}

// ParseFormula splits s at its first assignment.
func ParseFormula(s string) (Formula, error) {
	m := formulaRe.FindStringSubmatch(s)
	if m == nil {
		return Formula{}, fmt.Errorf("%q: %w", s, ErrBadFormula)
	}
	f := Formula{Name: m[1], Expr: strings.TrimSpace(m[2])}
	if f.Expr == "" {
		return Formula{}, fmt.Errorf("%q: empty expression: %w", s, ErrBadFormula)
	}
	if f.Name == RowIndex {
		return Formula{}, fmt.Errorf("%q: %s is reserved: %w", s, RowIndex, ErrBadColumn)
	}
	return f, nil
}

// Table is a row-major table of float64, bool and string cells.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New returns an empty table with the given columns.
func New(columns ...string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := t.addColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Empty returns a table with n rows and no columns, to be filled by Update.
func Empty(n int) *Table {
	t := &Table{index: map[string]int{}, rows: make([][]any, n)}
	for i := range t.rows {
		t.rows[i] = []any{}
	}
	return t
}

func (t *Table) addColumn(name string) error {
	if !identRe.MatchString(name) || name == RowIndex {
		return fmt.Errorf("%q: %w", name, ErrBadColumn)
	}
	if _, dup := t.index[name]; dup {
		return fmt.Errorf("%q: duplicate: %w", name, ErrBadColumn)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return nil
}

// Append adds one row; values must line up with Columns.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("got %d values for %d columns: %w", len(values), len(t.columns), ErrRowWidth)
	}
	t.rows = append(t.rows, append([]any(nil), values...))
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Value returns the cell at row for column.
func (t *Table) Value(row int, column string) (any, bool) {
	c, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return nil, false
	}
	return t.rows[row][c], true
}

// Float returns the cell at row for column if it holds a number.
func (t *Table) Float(row int, column string) (float64, bool) {
	v, ok := t.Value(row, column)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Update evaluates formulas in order, appending a column per formula or
// replacing a column of the same name. A formula sees the columns produced
// by earlier ones. On error the table is left unchanged.
func (t *Table) Update(formulas ...string) error {
	parsed := make([]Formula, 0, len(formulas))
	for _, s := range formulas {
		f, err := ParseFormula(s)
		if err != nil {
			return err
		}
		parsed = append(parsed, f)
	}
	return t.Apply(parsed...)
}

// Apply is Update for formulas that are already parsed.
func (t *Table) Apply(formulas ...Formula) error {
	next := t.clone()
	fns := Functions()

	for _, f := range formulas {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(f.Expr, fns)
		if err != nil {
			return fmt.Errorf("%s: %v: %w", f.Name, err, ErrBadFormula)
		}

		out := make([]any, len(next.rows))
		for i := range next.rows {
			v, err := expr.Eval(next.params(i))
			if err != nil {
				return fmt.Errorf("%s, row %d: %w", f.Name, i, err)
			}
			out[i] = v
		}
		logger.Tracef("formula %s evaluated over %d rows", f.Name, len(out))

		c, exists := next.index[f.Name]
		if !exists {
			if err := next.addColumn(f.Name); err != nil {
				return err
			}
			c = len(next.columns) - 1
			for i := range next.rows {
				next.rows[i] = append(next.rows[i], nil)
			}
		}
		for i := range next.rows {
			next.rows[i][c] = out[i]
		}
	}

	*t = *next
	return nil
}

func (t *Table) clone() *Table {
	c := &Table{
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]any, len(t.rows)),
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, r := range t.rows {
		c.rows[i] = append(make([]any, 0, len(r)+1), r...)
	}
	return c
}

// rowParams exposes one row to govaluate.
type rowParams struct {
	t   *Table
	row int
}

func (p rowParams) Get(name string) (any, error) {
	if name == RowIndex {
		return float64(p.row), nil
	}
	c, ok := p.t.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	return p.t.rows[p.row][c], nil
}

func (t *Table) params(row int) govaluate.Parameters {
	return rowParams{t: t, row: row}
}
