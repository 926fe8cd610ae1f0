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
	"github.com/jwebster45206/dungeon-engine/internal/handlers"
	"github.com/jwebster45206/dungeon-engine/internal/logger"
	"github.com/jwebster45206/dungeon-engine/internal/observe"
	"github.com/jwebster45206/dungeon-engine/internal/services/queue"
	"github.com/jwebster45206/dungeon-engine/internal/worker"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Dungeon Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"activity_db", cfg.ActivityDBPath)

	shutdownMetrics, err := observe.InitProvider(context.Background(), "dungeon-engine-worker", version)
	if err != nil {
		log.Error("Failed to initialize metrics provider", "error", err)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	activityQueue := queue.NewActivityQueue(queueClient)
	log.Info("Queue client initialized", "queue", activityQueue.Name())

	activityStore, err := activitylog.Open(cfg.ActivityDBPath)
	if err != nil {
		log.Error("Failed to open activity store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := activityStore.Close(); err != nil {
			log.Error("Error closing activity store", "error", err)
		}
	}()

	w := worker.New(activityQueue, activityStore, observe.DefaultMetrics(), log, cfg.WorkerID)

	// Probes and metrics for the worker process.
	mux := http.NewServeMux()
	handlers.NewHealthHandler("dungeon-engine-worker", log,
		handlers.Checker{Name: "redis", Check: func(ctx context.Context) error {
			return queueClient.GetRedisClient().Ping(ctx).Err()
		}},
		handlers.Checker{Name: "sqlite", Check: activityStore.Ping},
	).Register(mux)
	mux.Handle("GET /metrics", observe.Handler())
	server := &http.Server{
		Addr:              ":" + cfg.WorkerPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	log.Info("Worker started, waiting for activity events...", "worker_id", w.ID(), "probe_addr", server.Addr)

	runErr := g.Wait()
	log.Info("Worker shutdown signal received")

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownMetrics(flushCtx); err != nil {
		log.Error("Error shutting down metrics provider", "error", err)
	}

	if runErr != nil {
		log.Error("Worker stopped with error", "error", runErr)
		os.Exit(1)
	}
	log.Info("Worker exited")
}
