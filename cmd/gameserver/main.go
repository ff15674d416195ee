// Package main provides the game server binary that drives combat
// encounters against the PostgreSQL-backed world state.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/crownspire/mud/internal/config"
	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/encounter"
	"github.com/crownspire/mud/internal/game/rng"
	"github.com/crownspire/mud/internal/notify"
	"github.com/crownspire/mud/internal/observability"
	"github.com/crownspire/mud/internal/server"
	"github.com/crownspire/mud/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	seedPlayer := flag.String("seed-player", "", "create a dev warrior with this name if absent")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.Duration("tick_interval", cfg.Combat.TickInterval),
		zap.Int("flee_chance_pct", cfg.Combat.FleeChancePct),
	)

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	store := postgres.NewStore(pool)

	if *seedPlayer != "" {
		if err := ensurePlayer(ctx, store, *seedPlayer, logger); err != nil {
			logger.Fatal("seeding player", zap.Error(err))
		}
	}

	engine := encounter.NewEngine(store, rng.NewCryptoSource(), encounter.Config{
		TickInterval:  cfg.Combat.TickInterval,
		FleeChancePct: cfg.Combat.FleeChancePct,
		RespawnRoomID: cfg.Combat.RespawnRoomID,
	}, logger)

	scheduler := encounter.NewScheduler(engine,
		cfg.Combat.SchedulerInterval, cfg.Combat.SchedulerWorkers, logger)
	dispatcher := notify.NewDispatcher(notify.NewLogSink(logger))

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("combat-scheduler", &server.FuncService{
		StartFn: func() error {
			results := scheduler.Subscribe()
			scheduler.Start(ctx)
			dispatcher.Run(ctx, results)
			return nil
		},
		StopFn: scheduler.Stop,
	})

	logger.Info("game server ready", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}

// ensurePlayer creates a level-1 warrior for local development when no
// player with that name exists yet.
func ensurePlayer(ctx context.Context, store *postgres.Store, name string, logger *zap.Logger) error {
	existing, err := store.PlayerByName(ctx, name)
	if err != nil && !errors.Is(err, encounter.ErrNotFound) {
		return err
	}
	if existing != nil {
		logger.Info("seed player exists",
			zap.String("name", name),
			zap.String("id", existing.ID.String()),
		)
		return nil
	}

	p := character.NewPlayer(name, character.ClassWarrior, time.Now().UTC())
	if err := store.CreatePlayer(ctx, p); err != nil {
		return err
	}
	logger.Info("seed player created",
		zap.String("name", name),
		zap.String("id", p.ID.String()),
	)
	return nil
}
