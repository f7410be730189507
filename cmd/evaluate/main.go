// Command evaluate runs one evaluation pass and prints the results as tables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"WolfHunter/internal/collector"
	"WolfHunter/internal/config"
	"WolfHunter/internal/engine"
	"WolfHunter/internal/model"
	"WolfHunter/internal/recorder"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
)

func main() {
	var (
		cfgPath    = flag.String("config", config.DefaultPath, "Path to YAML config")
		provider   = flag.String("provider", "", "Data provider override (mexc, bybit, yahoo, mock, archive)")
		symbol     = flag.String("symbol", "", "Symbol override (e.g. OKMUSDT)")
		timeframes = flag.String("timeframes", "", "Comma-separated timeframes, or \"all\" (default: configured)")
		verbose    = flag.Bool("v", false, "Print evidence for detected signals")
		asJSON     = flag.Bool("json", false, "Print results as JSON instead of tables")
		timeout    = flag.Duration("timeout", 30*time.Second, "Overall timeout")
	)
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *provider != "" {
		cfg.DataSource.Provider = *provider
	}
	if *symbol != "" {
		cfg.DataSource.Symbol = *symbol
	}
	if *timeframes == "all" {
		cfg.Engine.Timeframes = nil
		for _, tf := range model.Timeframes {
			cfg.Engine.Timeframes = append(cfg.Engine.Timeframes, tf.String())
		}
	} else if *timeframes != "" {
		cfg.Engine.Timeframes = strings.Split(*timeframes, ",")
	}
	if err := cfg.ValidateSource(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	tfs, _ := cfg.Timeframes()

	var archive recorder.Archive
	if cfg.DataSource.Provider == config.ProviderArchive {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("[FATAL] open archive: %v", err)
		}
		defer sr.Close()
		archive = sr
	}
	fetcher, err := collector.NewFetcher(cfg, archive)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}

	eng := engine.New(fetcher)
	eng.Limit = cfg.DataSource.Limit

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var results []*model.Result
	failed := false
	for _, tf := range tfs {
		res, err := eng.Evaluate(ctx, tf)
		if err != nil {
			log.Printf("[ERROR] evaluate %s: %v", tf, err)
			failed = true
			continue
		}
		results = append(results, res)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("[FATAL] encode: %v", err)
		}
	} else {
		renderSummary(os.Stdout, cfg.DataSource.Symbol, fetcher.Name(), results)
		if *verbose {
			renderEvidence(os.Stdout, results)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func strengthCell(s model.Signal) string {
	if !s.Detected {
		return "-"
	}
	return fmt.Sprintf("%d", s.Strength)
}

// formatPrice keeps eight decimals so sub-cent quotes stay readable.
func formatPrice(p float64) string {
	return humanize.CommafWithDigits(p, 8)
}

func renderSummary(w io.Writer, symbol, source string, results []*model.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("WolfHunter | %s via %s", symbol, source))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TF", "Close", "Accum", "V-Rev", "Band", "Score", "Level", "Entry", "Stale"})
	for _, res := range results {
		var last float64
		if c, ok := res.Series.Latest(); ok {
			last = c.Close
		}
		row := table.Row{res.Timeframe, formatPrice(last)}
		for _, s := range res.Signals {
			row = append(row, strengthCell(s))
		}
		entry := "-"
		if res.EntryPrice > 0 {
			entry = formatPrice(res.EntryPrice)
		}
		row = append(row, res.BuyScore, res.Level.Label, entry, res.Stale)
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 4, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
}

func renderEvidence(w io.Writer, results []*model.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Evidence")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TF", "Signal", "Name", "Value", "Details"})
	for _, res := range results {
		for _, s := range res.Detected() {
			for _, ev := range s.Evidence {
				t.AppendRow(table.Row{res.Timeframe, s.Type, ev.Name, fmt.Sprintf("%.6g", ev.Value), ev.Details})
			}
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 40, Align: text.AlignLeft},
	})
	t.Render()
}
