package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/pricing"
	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/internal/risk"
	"github.com/contactkeval/option-greeks/internal/server"
	"github.com/contactkeval/option-greeks/internal/sheet"
)

// formulaList collects repeated -f flags.
type formulaList []string

func (f *formulaList) String() string     { return strings.Join(*f, "; ") }
func (f *formulaList) Set(v string) error { *f = append(*f, v); return nil }

func main() {
	configPath := flag.String("config", "", "path to JSON config")
	envPath := flag.String("env", ".env", "dotenv file to load if present")
	rest := flag.Bool("rest", false, "run as REST server")
	port := flag.String("port", "", "REST server listen address (overrides config)")
	verbosity := flag.String("v", "", "log level: error|info|debug|trace (overrides config)")

	s := flag.Float64("s", 100, "underlying price")
	k := flag.Float64("k", 100, "strike")
	r := flag.Float64("r", 0, "risk-free rate (default from config)")
	t := flag.Float64("t", 1, "time to expiry in years")
	vol := flag.Float64("vol", 0.2, "volatility")
	kind := flag.String("type", "call", "call|put|stock")

	positions := flag.String("positions", "", "position CSV for a risk run")
	asOf := flag.String("asof", "", "valuation time for -positions, RFC 3339 (default now)")
	levels := flag.String("rollup", "underlying,expiry,strike,parity", "rollup levels for -positions")
	outDir := flag.String("out", "", "report directory (overrides config)")

	sheetPath := flag.String("sheet", "", "CSV table to evaluate formulas over")
	rows := flag.Int("rows", 0, "evaluate formulas over this many empty rows instead of -sheet")
	sheetOut := flag.String("sheet-out", "", "write the evaluated table as CSV here")
	var formulas formulaList
	flag.Var(&formulas, "f", `formula "Name = expression" (repeatable)`)
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *verbosity != "" {
		cfg.Verbosity = *verbosity
	}
	if *port != "" {
		cfg.ListenAddr = *port
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if set["r"] {
		cfg.RiskFreeRate = *r
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.Level())

	switch {
	case *rest:
		if err := server.New(cfg).ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	case *positions != "":
		if err := runRisk(cfg, *positions, *asOf, *levels); err != nil {
			log.Fatalf("risk run failed: %v", err)
		}
	case *sheetPath != "" || *rows > 0:
		if err := runSheet(*sheetPath, *rows, formulas, *sheetOut); err != nil {
			log.Fatalf("sheet: %v", err)
		}
	default:
		if err := runQuote(os.Stdout, *s, *k, cfg.RiskFreeRate, *t, *vol, *kind); err != nil {
			log.Fatal(err)
		}
	}
}

func runQuote(w io.Writer, s, k, r, t, vol float64, kind string) error {
	in := pricing.Instrument{Spot: s, Strike: k, Rate: r, Expiry: t, Vol: vol}
	if strings.EqualFold(kind, "stock") {
		in.IsStock = true
	} else {
		isCall, err := pricing.ParseParity(kind)
		if err != nil {
			return err
		}
		in.IsCall = isCall
	}
	if err := in.Validate(); err != nil {
		return err
	}

	g := in.Greeks()
	fmt.Fprintf(w, "price  %12.6f\ndelta  %12.6f\ngamma  %12.6f\ntheta  %12.6f\nvega   %12.6f\nrho    %12.6f\n",
		g.Price, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho)
	return nil
}

func runRisk(cfg config.Config, path, asOf, levelSpec string) error {
	by, err := risk.ParseLevels(levelSpec)
	if err != nil {
		return err
	}
	when := time.Now()
	if asOf != "" {
		if when, err = time.Parse(time.RFC3339, asOf); err != nil {
			return fmt.Errorf("-asof: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	ps, err := risk.ReadPositions(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	book := risk.Book{Rate: cfg.RiskFreeRate, Shock: cfg.Shock, Workers: cfg.Workers, AsOf: when}
	rowsOut, err := book.Run(ctx, ps)
	res := &report.Result{AsOf: when, Rate: book.Rate, Shock: book.Shock, Rows: rowsOut}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		res.Skipped = risk.Rejected(err)
		for _, msg := range res.Skipped {
			logger.Errorf("skipped %s", msg)
		}
	}
	res.Rollup = risk.Rollup(rowsOut, by...)

	if err := report.Write(res, cfg.OutputDir); err != nil {
		return err
	}
	logger.Infof("finished in %v, wrote %d rows and %d totals to %s", time.Since(start), len(res.Rows), len(res.Rollup), cfg.OutputDir)
	return nil
}

func runSheet(path string, n int, formulas []string, out string) error {
	var tbl *sheet.Table
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if tbl, err = sheet.ReadCSV(f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	} else {
		tbl = sheet.Empty(n)
	}

	if err := tbl.Update(formulas...); err != nil {
		return err
	}
	logger.Debugf("evaluated %d formulas over %d rows", len(formulas), tbl.Len())

	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := tbl.WriteCSV(f); err != nil {
			return err
		}
		return f.Close()
	}
	return tbl.Print(os.Stdout)
}
