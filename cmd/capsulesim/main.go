package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"capsulekin/internal/config"
	"capsulekin/internal/logging"
	"capsulekin/internal/viewer"
	"capsulekin/internal/world"

	"github.com/spf13/pflag"
)

func main() {
	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "capsulesim:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("capsulesim", pflag.ContinueOnError)
	configPath := fs.String("config", "", "config file (yaml, json or toml)")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	scene, err := world.LoadScene(cfg.ScenePath)
	if err != nil {
		return err
	}
	if cfg.TuningPath != "" {
		tuning, err := config.LoadTuning(cfg.TuningPath)
		if err != nil {
			return err
		}
		for i := range scene.Spawns {
			scene.Spawns[i].Tuning = tuning
		}
	}

	sim := world.NewSimulation(scene, logger)
	agents := cfg.Agents
	if agents == 0 {
		agents = len(scene.Spawns)
	}
	sim.SpawnAgents(agents)

	logger.Info().
		Str("scene", cfg.ScenePath).
		Int("colliders", len(scene.World.Colliders())).
		Int("agents", len(sim.Agents)).
		Int("tickRate", cfg.TickRate).
		Msg("capsulesim: scene loaded")

	if cfg.Viewer.Enabled {
		viewer.New(sim, cfg, logger).Run()
		sim.LogSummary()
		return nil
	}

	start := time.Now()
	sim.Run(cfg.Ticks, cfg.DeltaTime())
	elapsed := time.Since(start)

	sim.LogSummary()
	logger.Info().
		Int("ticks", cfg.Ticks).
		Float32("simulated", sim.Time).
		Dur("elapsed", elapsed).
		Msg("capsulesim: done")
	return nil
}
