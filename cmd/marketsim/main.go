// Command marketsim runs the two-sided spatial ride-market simulation and
// exports its per-tick metrics for downstream plotting.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/ridegrid/internal/config"
	"github.com/talgya/ridegrid/internal/engine"
	"github.com/talgya/ridegrid/internal/persistence"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults when empty)")
	seed := flag.Int64("seed", 0, "override random seed (0 keeps the configured seed)")
	ticks := flag.Int("ticks", 0, "override run length in ticks (0 keeps the configured length)")
	outPath := flag.String("out", "data/metrics.db", "SQLite file receiving per-tick metrics")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			slog.Error("failed to load config", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *ticks > 0 {
		cfg.Ticks = *ticks
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	sim := engine.New(cfg)
	sim.Run()

	series := sim.Series()
	totals := series.Sum()
	runID := uuid.New()

	// ── Metrics export ────────────────────────────────────────────────
	if dir := filepath.Dir(*outPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(*outPath)
	if err != nil {
		slog.Error("failed to open metrics database", "path", *outPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.SaveRun(runID, cfg, series); err != nil {
		slog.Error("failed to save run metrics", "run_id", runID, "error", err)
		os.Exit(1)
	}
	slog.Info("metrics exported", "run_id", runID, "path", *outPath, "ticks", series.Ticks())

	// ── Summary ───────────────────────────────────────────────────────
	finalPrice := 0.0
	if series.Ticks() > 0 {
		finalPrice = series.MeanPrice[series.Ticks()-1]
	}
	fmt.Printf("\nRun %s complete: %s ticks on a %dx%d grid.\n",
		runID, humanize.Comma(int64(series.Ticks())), cfg.GridSize, cfg.GridSize)
	fmt.Printf("Riders:  %s spawned, %s dropped\n",
		humanize.Comma(int64(totals.RidersSpawned)), humanize.Comma(int64(totals.RidersDropped)))
	fmt.Printf("Drivers: %s spawned, %s dropped\n",
		humanize.Comma(int64(totals.DriversSpawned)), humanize.Comma(int64(totals.DriversDropped)))
	fmt.Printf("Matches: %s, final mean price %.3f\n",
		humanize.Comma(int64(sim.Matched())), finalPrice)
}
