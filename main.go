package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/sim"
	"github.com/kkingfung/ecosim/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per loop iteration")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	scheduler := sim.New(sim.Options{Seed: rngSeed})
	scheduler.SeedWorld()

	reporter := telemetry.NewReporter(cfg, scheduler.Registry(), scheduler.Climate())
	collector := telemetry.NewCollector(statsWindowSec)
	scheduler.Bus().Subscribe(reporter.Observe)
	scheduler.Bus().Subscribe(collector.Observe)
	sim.AttachEventLogger(scheduler.Bus(), logger)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"biomes", scheduler.Registry().Count(),
		"stats_window", statsWindowSec,
		"max_ticks", *maxTicks,
	)

	for {
		for i := 0; i < *stepsPerUpdate; i++ {
			scheduler.Step()
		}

		if collector.ShouldFlush(scheduler.Time()) {
			stats := collector.Flush(scheduler.Time(),
				reporter.Metrics(scheduler.Tick(), scheduler.Time()))
			if *logStats {
				slog.Info("window", "stats", stats)
			}
			if err := output.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
			if err := output.WriteMetrics(stats.Metrics); err != nil {
				slog.Error("failed to write metrics", "error", err)
			}
		}

		if *maxTicks > 0 && scheduler.Tick() >= *maxTicks {
			break
		}
	}

	report := scheduler.GenerateReport(reporter)
	slog.Info("simulation finished",
		"ticks", scheduler.Tick(),
		"sim_time", scheduler.Time(),
		"species", report.Metrics.TotalSpecies,
		"sustainability", report.Metrics.Sustainability,
		"critical_biomes", report.Stress.Critical,
	)
}
