// Package report writes risk runs to an output directory.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/contactkeval/option-greeks/internal/risk"
)

// File names written by Write.
const (
	JSONFile   = "risk.json"
	RowsFile   = "risk.csv"
	RollupFile = "rollup.csv"
)

// Result is the full output of one risk run.
type Result struct {
	AsOf    time.Time    `json:"as_of"`
	Rate    float64      `json:"risk_free_rate"`
	Shock   float64      `json:"shock"`
	Rows    []risk.Row   `json:"rows"`
	Rollup  []risk.Total `json:"rollup"`
	Skipped []string     `json:"skipped,omitempty"`
}

var measureHeaders = []string{"theo", "dollar_delta", "beta_dollar_delta", "gamma_percent", "theta", "vega_percent", "rho", "jump_up", "jump_down"}

// Write creates outdir if needed and writes the JSON, row CSV and rollup CSV.
func Write(res *Result, outdir string) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outdir, err)
	}
	if err := WriteJSON(res, outdir); err != nil {
		return err
	}
	if err := WriteCSV(res.Rows, outdir); err != nil {
		return err
	}
	return WriteRollupCSV(res.Rollup, outdir)
}

func WriteJSON(res *Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, JSONFile), b, 0644)
}

func WriteCSV(rows []risk.Row, outdir string) error {
	headers := append([]string{"underlying", "expiry", "strike", "parity", "quantity"}, measureHeaders...)
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := append(keyFields(r.Key), fmt.Sprintf("%g", r.Quantity))
		records = append(records, append(rec, measureFields(r.Measures)...))
	}
	return writeCSV(filepath.Join(outdir, RowsFile), headers, records)
}

func WriteRollupCSV(totals []risk.Total, outdir string) error {
	headers := append([]string{"depth", "underlying", "expiry", "strike", "parity", "count"}, measureHeaders...)
	records := make([][]string, 0, len(totals))
	for _, t := range totals {
		rec := append([]string{fmt.Sprintf("%d", t.Depth)}, keyFields(t.Key)...)
		rec = append(rec, fmt.Sprintf("%d", t.Count))
		records = append(records, append(rec, measureFields(t.Measures)...))
	}
	return writeCSV(filepath.Join(outdir, RollupFile), headers, records)
}

func writeCSV(path string, headers []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

func keyFields(k risk.Key) []string {
	expiry, strike := "", ""
	if !k.Expiry.IsZero() {
		expiry = k.Expiry.Format("2006-01-02")
	}
	if k.Strike != 0 {
		strike = fmt.Sprintf("%g", k.Strike)
	}
	return []string{k.Underlying, expiry, strike, k.Parity}
}

func measureFields(m risk.Measures) []string {
	m = m.Round(4)
	return []string{
		m.Theo.StringFixed(4), m.DollarDelta.StringFixed(4), m.BetaDollarDelta.StringFixed(4),
		m.GammaPercent.StringFixed(4), m.Theta.StringFixed(4), m.VegaPercent.StringFixed(4),
		m.Rho.StringFixed(4), m.JumpUp.StringFixed(4), m.JumpDown.StringFixed(4),
	}
}
