// Package main is the entrypoint for the blueprint generation worker. It
// holds its own database and redis connections rather than sharing the API
// server's, so either process can restart without the other noticing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fromscratch/blueprint/internal/config"
	"github.com/fromscratch/blueprint/internal/events"
	"github.com/fromscratch/blueprint/internal/llm"
	"github.com/fromscratch/blueprint/internal/notify"
	"github.com/fromscratch/blueprint/internal/pipeline"
	"github.com/fromscratch/blueprint/internal/queue"
	"github.com/fromscratch/blueprint/internal/store"
	"github.com/hibiken/asynq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "llm_provider", cfg.LLM.Provider,
		"concurrency", cfg.Queue.Concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	bus, err := events.NewRedisBus(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create status bus: %w", err)
	}
	defer bus.Close()

	if err := bus.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}
	slog.Info("LLM provider initialized", "provider", provider.Name())

	pgStore := store.NewPostgresStore(pool)
	stages := pipeline.NewStages(provider, cfg.LLM.InferenceTimeout)
	executor := pipeline.NewExecutor(stages)
	worker := queue.NewWorker(pgStore, executor, bus, notify.NewWebhookNotifier())

	redisOpt, err := queue.RedisOpt(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeGenerateBlueprint, worker.ProcessTask)

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("start queue server: %w", err)
	}
	slog.Info("worker started", "queue", "default")

	<-ctx.Done()
	slog.Info("shutdown signal received, finishing in-flight jobs...")

	srv.Shutdown()
	slog.Info("worker stopped gracefully")
	return nil
}
