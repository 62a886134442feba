// Package main runs the background job worker (booking confirmation emails).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-meet/backend/config"
	"github.com/aura-meet/backend/internal/emaillogs"
	"github.com/aura-meet/backend/internal/notify"
	"github.com/aura-meet/backend/internal/worker"
	"github.com/aura-meet/backend/pkg/database"
	"github.com/aura-meet/backend/pkg/queue"
	"github.com/aura-meet/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnIdleTime: 5 * time.Minute,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	if cfg.Email.SendGridKey == "" {
		logger.Warn("SENDGRID_API_KEY not set; confirmation jobs will fail and land in the DLQ")
	}
	sender := notify.NewSendGrid(notify.SendGridConfig{
		APIKey:    cfg.Email.SendGridKey,
		FromEmail: cfg.Email.FromAddress,
		FromName:  cfg.Email.FromName,
		Host:      cfg.Email.SendGridHost,
	}, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	emailLogs := emaillogs.NewRepository(pool)
	processor := worker.NewConfirmationProcessor(jobQueue, sender, emailLogs, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
