package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/astras/config"
	"github.com/pthm-cable/astras/sim"
	"github.com/pthm-cable/astras/telemetry"
)

// telemetryOutput opens the output manager and records the effective
// run configuration next to the stats. A nil manager (empty dir) is
// returned as-is and discards all writes.
func telemetryOutput(dir string, cfg *config.Config) (*telemetry.OutputManager, error) {
	output, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}
	return output, nil
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	speciesPath := flag.String("species", "", "Path to species.json (empty = use embedded dataset)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV stats, config and snapshots")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	ticks := flag.Int("ticks", 10000, "Number of ticks to run")
	logEvery := flag.Int("log-every", 100, "Log a stats line every N ticks (0 = never)")
	snapshotEvery := flag.Int("snapshot-every", 0, "Write a snapshot every N ticks (0 = final only)")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	species, err := config.LoadSpecies(*speciesPath)
	if err != nil {
		slog.Error("failed to load species dataset", "error", err)
		os.Exit(1)
	}

	output, err := telemetryOutput(*outputDir, cfg)
	if err != nil {
		slog.Error("failed to prepare output", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	s := sim.New(logger)
	if err := s.Setup(cfg, species); err != nil {
		slog.Error("setup failed", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"ticks", *ticks,
		"seed", cfg.Seed,
		"output_dir", output.Dir(),
	)

	for i := 0; i < *ticks; i++ {
		snap := s.Step()

		if err := output.WriteStats(s.LastStats()); err != nil {
			slog.Error("failed to write stats", "error", err)
			os.Exit(1)
		}

		if *logEvery > 0 && int(snap.Tick)%*logEvery == 0 {
			slog.Info("tick", "stats", s.LastStats())
		}

		last := i == *ticks-1
		periodic := *snapshotEvery > 0 && int(snap.Tick)%*snapshotEvery == 0
		if last || periodic {
			if _, err := output.WriteSnapshot(&snap); err != nil {
				slog.Error("failed to write snapshot", "error", err)
				os.Exit(1)
			}
		}

		if snap.TotalPopulation() == 0 {
			slog.Info("population extinct", "tick", snap.Tick)
			if _, err := output.WriteSnapshot(&snap); err != nil {
				slog.Error("failed to write snapshot", "error", err)
			}
			break
		}
	}

	slog.Info("simulation finished", "tick", s.Tick())
}
