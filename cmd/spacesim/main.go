// Command spacesim runs the autonomous space-sector simulation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/api"
	"github.com/talgya/starlane/internal/engine"
	"github.com/talgya/starlane/internal/entropy"
	"github.com/talgya/starlane/internal/persistence"
	"github.com/talgya/starlane/internal/tuning"
	"github.com/talgya/starlane/internal/world"
)

func main() {
	configPath := flag.String("config", "", "tuning YAML (defaults when empty)")
	dbPath := flag.String("db", "data/starlane.db", "SQLite database path")
	port := flag.Int("port", 8080, "HTTP API port")
	seed := flag.Int64("seed", 42, "world seed (0 = random)")
	speed := flag.Float64("speed", 1, "initial speed multiplier (0 = paused)")
	autosave := flag.Uint64("autosave", 3000, "ticks between saves (0 = only on shutdown)")
	snapshotDir := flag.String("snapshots", "data/snapshots", "directory for zstd snapshot exports (empty disables)")
	pretty := flag.Bool("pretty", false, "colored human-readable logs")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	setupLogging(*pretty, *debug)
	if err := run(options{
		configPath:  *configPath,
		dbPath:      *dbPath,
		port:        *port,
		seed:        *seed,
		speed:       *speed,
		autosave:    *autosave,
		snapshotDir: *snapshotDir,
	}); err != nil {
		slog.Error("spacesim failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	dbPath      string
	port        int
	seed        int64
	speed       float64
	autosave    uint64
	snapshotDir string
}

func setupLogging(pretty, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if pretty {
		h := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Level:           charmlog.Level(level),
			Prefix:          "spacesim",
		})
		slog.SetDefault(slog.New(h))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(opts options) error {
	slog.Info("Starlane: autonomous sector simulation")

	cfg := tuning.Default()
	if opts.configPath != "" {
		loaded, err := tuning.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load tuning: %w", err)
		}
		cfg = loaded
	}
	sector := world.NewSector(cfg.World)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(opts.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", opts.dbPath)

	// ── Load or generate the sector ───────────────────────────────────
	worldSeed := opts.seed
	if stored, err := db.GetMeta("seed"); err == nil {
		if v, err := strconv.ParseInt(stored, 10, 64); err == nil {
			worldSeed = v
		}
	}
	startTick, err := db.LastTick()
	if err != nil {
		return fmt.Errorf("read last tick: %w", err)
	}

	all, err := db.LoadAgents()
	switch {
	case errors.Is(err, persistence.ErrNoWorld):
		slog.Info("no saved state found, generating new sector...", "seed", worldSeed)
		gen := world.DefaultGenConfig(sector)
		gen.Seed = worldSeed
		layout := world.Generate(gen)
		worldSeed = layout.Seed
		all, err = layout.Populate(agents.NewSpawner(worldSeed, cfg))
		if err != nil {
			return fmt.Errorf("populate sector: %w", err)
		}
		startTick = 0
		for t, n := range world.TypeCounts(layout) {
			slog.Info("placed", "type", t, "count", n)
		}
	case err != nil:
		return fmt.Errorf("load agents: %w", err)
	default:
		slog.Info("sector restored", "agents", len(all), "tick", startTick,
			"sim_time", engine.SimTime(startTick, cfg.TickDuration()))
	}

	spawner := agents.NewSpawner(worldSeed, cfg)
	var maxID agents.AgentID
	for _, a := range all {
		maxID = max(maxID, a.ID)
	}
	spawner.SetNextID(maxID + 1)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(cfg, sector, all, entropy.New(worldSeed))
	sim.Spawner = spawner
	sim.LastTick = startTick

	if startTick == 0 {
		if err := db.SaveMeta("seed", strconv.FormatInt(worldSeed, 10)); err != nil {
			slog.Error("seed save failed", "error", err)
		}
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine(cfg.TickDuration())
	eng.SetTick(startTick)
	if err := eng.SetSpeed(opts.speed); err != nil {
		return err
	}
	eng.ReportEvery = uint64(cfg.ReportEvery)
	eng.OnTick = func(tick uint64) {
		sim.Step(tick)
		if opts.autosave > 0 && tick%opts.autosave == 0 {
			if err := db.SaveWorldState(sim); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}
	eng.OnReport = sim.Report

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("SPACESIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("SPACESIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Port:        opts.port,
		Seed:        worldSeed,
		AdminKey:    adminKey,
		RelayKey:    os.Getenv("SPACESIM_RELAY_KEY"),
		SnapshotDir: opts.snapshotDir,
	}
	httpServer := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nStarlane is alive: %d agents in sector %s.\n", len(all), sector)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", opts.port)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", startTick, engine.SimTime(startTick, cfg.TickDuration()))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	fmt.Println("Simulation stopped. Sector state saved.")
	return nil
}
