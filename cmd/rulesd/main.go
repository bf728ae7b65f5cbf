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

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oss-qm/freecol-sub000/internal/codec"
	"github.com/oss-qm/freecol-sub000/internal/config"
	"github.com/oss-qm/freecol-sub000/internal/data"
	"github.com/oss-qm/freecol-sub000/internal/db"
	"github.com/oss-qm/freecol-sub000/internal/spec"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

type options struct {
	configPath string
	gameFile   string
	gameID     string
	exportFile string
	checkOnly  bool
	interval   time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", config.Path(), "configuration file")
	flag.StringVar(&opts.gameFile, "game", "", "restore the game from a saved YAML file")
	flag.StringVar(&opts.gameID, "load", "", "restore the game with this id from the database")
	flag.StringVar(&opts.exportFile, "export", "", "write the game to this YAML file on shutdown")
	flag.BoolVar(&opts.checkOnly, "check", false, "load, run the integrity check and exit")
	flag.DurationVar(&opts.interval, "interval", time.Minute, "maintenance interval")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// Load config FIRST to determine log level
	cfg, err := config.LoadRulesd(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("rulesd starting", "log_level", cfg.LogLevel, "config", opts.configPath)

	sp, err := loadSpecification(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("specification loaded",
		"types", sp.Len(),
		"building_types", len(sp.BuildingTypes()),
		"unit_types", len(sp.UnitTypes()),
		"nation_types", len(sp.NationTypes()),
		"checksum", fmt.Sprintf("%016x", sp.Checksum()))

	var persister *db.GamePersistenceService
	if cfg.PersistenceEnabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if _, err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		persister = db.NewGamePersistenceService(database.Pool())
	}

	regOpts := world.RegistryOptions{
		SweepThreshold: cfg.Registry.SweepThreshold,
		SweepBatch:     cfg.Registry.SweepBatch,
	}
	game, err := openGame(ctx, opts, sp, regOpts, persister)
	if err != nil {
		return err
	}

	report := game.CheckIntegrity(true)
	slog.Info("integrity check",
		"game", game.ID(),
		"status", report.Status,
		"problems", len(report.Problems))
	if opts.checkOnly {
		if report.Status != world.IntegrityOK {
			return fmt.Errorf("game %s: integrity %s", game.ID(), report.Status)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting maintenance loop", "interval", opts.interval)
		maintain(gctx, game, opts.interval, persister)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// shutdown: the run context is done, save with a fresh one
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return saveGame(saveCtx, game, opts.exportFile, persister)
}

// loadSpecification loads the configured rule set or files and applies
// patches on top.
func loadSpecification(ctx context.Context, cfg config.Rulesd) (*spec.Specification, error) {
	var (
		sp  *spec.Specification
		err error
	)
	if len(cfg.SpecPaths) > 0 {
		inputs := make([]spec.Input, len(cfg.SpecPaths))
		for i, p := range cfg.SpecPaths {
			inputs[i] = spec.File(p)
		}
		sp, err = spec.Load(ctx, inputs...)
	} else {
		sp, err = data.Load(ctx, cfg.RuleSet)
	}
	if err != nil {
		return nil, fmt.Errorf("loading specification: %w", err)
	}

	if len(cfg.PatchPaths) > 0 {
		inputs := make([]spec.Input, len(cfg.PatchPaths))
		for i, p := range cfg.PatchPaths {
			inputs[i] = spec.File(p)
		}
		if sp, err = spec.Patch(ctx, sp, inputs...); err != nil {
			return nil, fmt.Errorf("patching specification: %w", err)
		}
	}
	return sp, nil
}

func openGame(ctx context.Context, opts options, sp *spec.Specification, regOpts world.RegistryOptions, persister *db.GamePersistenceService) (*world.Game, error) {
	switch {
	case opts.gameID != "":
		if persister == nil {
			return nil, errors.New("-load requires persistence_enabled")
		}
		id, err := uuid.Parse(opts.gameID)
		if err != nil {
			return nil, fmt.Errorf("game id %q: %w", opts.gameID, err)
		}
		g, err := persister.LoadGame(ctx, id, sp, regOpts)
		if err != nil {
			return nil, fmt.Errorf("loading game: %w", err)
		}
		slog.Info("game loaded", "game", g.ID(), "turn", g.Turn(), "objects", g.Registry().Len())
		return g, nil

	case opts.gameFile != "":
		raw, err := os.ReadFile(opts.gameFile)
		if err != nil {
			return nil, fmt.Errorf("reading game %s: %w", opts.gameFile, err)
		}
		g, err := codec.Decode(raw, sp, regOpts)
		if err != nil {
			return nil, fmt.Errorf("decoding game %s: %w", opts.gameFile, err)
		}
		slog.Info("game restored", "file", opts.gameFile, "game", g.ID(), "turn", g.Turn(), "objects", g.Registry().Len())
		return g, nil
	}

	g := world.NewGame(sp, world.Options{Registry: regOpts})
	slog.Info("new game", "game", g.ID())
	return g, nil
}

// maintain sweeps the registry and checks integrity every interval until
// ctx is done, saving the game when persistence is on.
func maintain(ctx context.Context, game *world.Game, interval time.Duration, persister *db.GamePersistenceService) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		swept := game.Registry().Sweep()
		report := game.CheckIntegrity(false)
		stats := game.Registry().Stats()
		slog.Debug("maintenance",
			"game", game.ID(),
			"swept", swept,
			"live", stats.Live,
			"dead", stats.Dead,
			"integrity", report.Status)

		if persister != nil {
			if err := persister.SaveGame(ctx, game); err != nil && ctx.Err() == nil {
				slog.Error("periodic save failed", "game", game.ID(), "error", err)
			}
		}
	}
}

func saveGame(ctx context.Context, game *world.Game, exportFile string, persister *db.GamePersistenceService) error {
	if persister != nil {
		if err := persister.SaveGame(ctx, game); err != nil {
			return fmt.Errorf("saving game: %w", err)
		}
	}
	if exportFile == "" {
		return nil
	}
	raw, err := codec.Encode(game)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportFile, raw, 0o644); err != nil {
		return fmt.Errorf("writing game %s: %w", exportFile, err)
	}
	slog.Info("game exported", "file", exportFile, "game", game.ID())
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
