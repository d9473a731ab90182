package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = until interrupted)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	tickSeconds := flag.Float64("tick-seconds", 0, "Simulated seconds per tick (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshots")
	logStats := flag.Bool("log-stats", false, "Log every telemetry window")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	logFormat := flag.String("log-format", "json", "json or text")
	snapshots := flag.Bool("snapshots", false, "Save a snapshot on every bookmark and at exit (needs -output-dir)")
	progress := flag.Duration("progress", 10*time.Second, "Interval between progress logs (0 disables)")

	flag.Parse()

	logger, err := sim.NewLogger(os.Stdout, *logLevel, *logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *tickSeconds > 0 {
		cfg.Simulation.TickSeconds = *tickSeconds
	}
	if err := cfg.Recompute(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := sim.New(cfg, sim.Options{
		Logger:             logger,
		OutputDir:          *outputDir,
		LogStats:           *logStats,
		SnapshotOnBookmark: *snapshots && *outputDir != "",
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting simulation",
		"seed", cfg.Simulation.Seed,
		"tick_seconds", cfg.Simulation.TickSeconds,
		"max_ticks", *maxTicks,
		"output_dir", *outputDir,
	)

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		return s.Run(gctx, *maxTicks)
	})
	if *progress > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(*progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					logger.Info("progress", "tick", s.Tick(), "time", s.Now(), "animals", s.Population())
				}
			}
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted", "tick", s.Tick())
		err = nil
	}

	if *snapshots && *outputDir != "" {
		if path, serr := s.SaveSnapshot(); serr != nil {
			logger.Error("failed to save snapshot", "error", serr)
		} else {
			logger.Info("snapshot saved", "path", path)
		}
	}
	return err
}
