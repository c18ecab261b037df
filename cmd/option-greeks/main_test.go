package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/internal/testutil"
)

func TestRunQuoteGolden(t *testing.T) {
	for _, kind := range []string{"call", "put", "stock"} {
		var buf bytes.Buffer
		s, k, ttm, vol := 100.0, 95.0, 0.6, 0.4
		if kind == "stock" {
			s, k, ttm, vol = 42, 0, 0, 0
		}
		require.NoError(t, runQuote(&buf, s, k, 0.05, ttm, vol, kind))
		testutil.CompareWithGolden(t, "quote_"+kind, buf.Bytes())
	}
}

func TestRunQuote(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runQuote(&buf, 100, 100, 0.05, 1, 0.2, "call"))
	out := buf.String()
	require.Contains(t, out, "price     10.450584")
	require.Contains(t, out, "delta      0.636831")
	require.Contains(t, out, "rho        0.532325")

	buf.Reset()
	require.NoError(t, runQuote(&buf, 42, 0, 0.05, 0, 0, "stock"))
	require.Contains(t, buf.String(), "price     42.000000")

	require.Error(t, runQuote(&buf, 100, 100, 0.05, 0, 0.2, "put"))
	require.Error(t, runQuote(&buf, 100, 100, 0.05, 1, 0.2, "future"))
}

func TestRunRisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "positions.csv")
	body := strings.Join([]string{
		"underlying,type,expiry,strike,parity,quantity,spot_bid,spot_ask,vol_bid,vol_ask,beta",
		"AAPL,OPTION,2026-01-16,150,CALL,10,149,151,0.25,0.27,1.1",
		"AAPL,STOCK,,,,-500,149,151,,,1.1",
		"MSFT,OPTION,2024-01-19,400,PUT,3,410,411,0.3,0.32,",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")
	require.NoError(t, runRisk(cfg, path, "2025-06-02T20:00:00Z", "underlying"))

	f, err := os.Open(filepath.Join(cfg.OutputDir, report.RollupFile))
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	// header, grand total, AAPL; the expired MSFT put is skipped.
	require.Len(t, recs, 3)
	require.Equal(t, "2", recs[1][5])
	require.Equal(t, "AAPL", recs[2][1])

	require.Error(t, runRisk(cfg, path, "yesterday", "underlying"))
	require.Error(t, runRisk(cfg, path, "", "sector"))
	require.Error(t, runRisk(cfg, filepath.Join(dir, "missing.csv"), "", "underlying"))
}

func TestRunSheet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "table.csv")
	err := runSheet("", 2, []string{
		"UnderlyingPrice = 100 + i",
		"Price = price(UnderlyingPrice, 95, 0.05, 0.6, 0.4, true, false)",
	}, out)
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "UnderlyingPrice,Price", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "100,16.1361164"), lines[1])

	require.Error(t, runSheet("", 1, []string{"Bad ="}, ""))
}
