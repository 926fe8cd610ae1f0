package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/dungeon-engine/internal/activitylog"
	"github.com/jwebster45206/dungeon-engine/internal/config"
	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/internal/handlers"
	"github.com/jwebster45206/dungeon-engine/internal/logger"
	"github.com/jwebster45206/dungeon-engine/internal/middleware"
	"github.com/jwebster45206/dungeon-engine/internal/observe"
	"github.com/jwebster45206/dungeon-engine/internal/services/queue"
	"github.com/jwebster45206/dungeon-engine/internal/storage"
	"github.com/jwebster45206/dungeon-engine/internal/worker"
	"github.com/jwebster45206/dungeon-engine/pkg/dice"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
	"golang.org/x/sync/errgroup"
)

const serviceName = "dungeon-engine"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Dungeon Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"world_file", cfg.WorldFile,
		"activity_consumer", cfg.ActivityConsumer)

	shutdownMetrics, err := observe.InitProvider(context.Background(), serviceName, version)
	if err != nil {
		log.Error("Failed to initialize metrics provider", "error", err)
		os.Exit(1)
	}
	metrics := observe.DefaultMetrics()

	w, err := world.Load(cfg.WorldFile)
	if err != nil {
		log.Error("Failed to load world", "error", err, "path", cfg.WorldFile)
		os.Exit(1)
	}
	log.Info("World loaded", "name", w.Name, "rooms", len(w.Rooms), "enemies", len(w.Enemies))

	store, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// The activity queue shares the storage connection pool.
	activityQueue := queue.NewActivityQueue(queue.NewClientFromRedis(store.Client(), log))

	activityStore, err := activitylog.Open(cfg.ActivityDBPath)
	if err != nil {
		log.Error("Failed to open activity store", "error", err, "path", cfg.ActivityDBPath)
		os.Exit(1)
	}
	log.Info("Activity store opened", "path", cfg.ActivityDBPath)

	roller := dice.NewRandomRoller()
	svc := game.NewService(store, w, log,
		game.WithRoller(roller),
		game.WithPublisher(activityQueue),
		game.WithMetrics(metrics),
		game.WithLockTTL(cfg.LockTTL),
	)
	if err := svc.Seed(storageCtx); err != nil {
		log.Error("Failed to seed world", "error", err)
		os.Exit(1)
	}
	log.Info("World seeded")

	mux := http.NewServeMux()

	handlers.NewHealthHandler(serviceName, log,
		handlers.Checker{Name: "redis", Check: store.Ping},
		handlers.Checker{Name: "sqlite", Check: activityStore.Ping},
	).Register(mux)
	mux.Handle("GET /metrics", observe.Handler())

	handlers.NewPlayerHandler(log, store).Register(mux)
	handlers.NewWorldHandler(log, store, svc).Register(mux)
	handlers.NewProgressHandler(log, store).Register(mux)
	handlers.NewDiceHandler(log, roller).Register(mux)
	handlers.NewActivityHandler(log, activityStore).Register(mux)
	handlers.NewGameHandler(log, svc).Register(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, observe.Middleware(metrics)(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.ActivityConsumer {
		consumer := worker.New(activityQueue, activityStore, metrics, log, cfg.WorkerID)
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server is shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	if err := activityStore.Close(); err != nil {
		log.Error("Error closing activity store", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownMetrics(flushCtx); err != nil {
		log.Error("Error shutting down metrics provider", "error", err)
	}

	if runErr != nil {
		log.Error("Server stopped with error", "error", runErr)
		os.Exit(1)
	}
	log.Info("Server exited")
}
