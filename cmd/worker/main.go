package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rollcall/internal/audit"
	"rollcall/internal/config"
	"rollcall/internal/logging"
	"rollcall/internal/queue"
	"rollcall/internal/store"
)

// Worker consumes attendance events from Redis and flags duplicate check-ins.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel).Named("worker")
	defer func() { _ = logger.Sync() }()

	if cfg.QueueBackend != "redis" {
		logger.Fatal("worker needs a shared queue", zap.String("queue_backend", cfg.QueueBackend),
			zap.String("hint", "set QUEUE_BACKEND=redis; with the memory backend the API audits in-process"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if !redisClient.Healthy(pingCtx) {
		logger.Warn("redis not reachable yet, consumer will keep retrying", zap.String("addr", cfg.RedisAddr))
	}
	cancel()

	q := queue.NewRedisQueue(redisClient.Client, "")
	consumer := audit.NewConsumer(audit.NewRedisTracker(redisClient.Client), logger)
	if err := consumer.Run(ctx, q); err != nil {
		logger.Fatal("audit consumer failed", zap.Error(err))
	}
	logger.Info("worker stopped")
}
