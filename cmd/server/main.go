// Package main runs the booking HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-meet/backend/config"
	"github.com/aura-meet/backend/internal/auth"
	"github.com/aura-meet/backend/internal/bookings"
	"github.com/aura-meet/backend/internal/emaillogs"
	"github.com/aura-meet/backend/internal/eventtypes"
	"github.com/aura-meet/backend/internal/health"
	"github.com/aura-meet/backend/internal/meet"
	"github.com/aura-meet/backend/internal/middleware"
	"github.com/aura-meet/backend/internal/slots"
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

	window, err := slots.ParseWindow(cfg.Booking.WindowStart, cfg.Booking.WindowEnd, cfg.Booking.SlotMinutes)
	if err != nil {
		logger.Fatal("booking window", zap.Error(err))
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

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

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

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Meeting provisioning
	providerHTTP := &http.Client{Timeout: cfg.Google.HTTPTimeout()}
	var tokens meet.TokenProvider
	if cfg.Google.ServiceAccountFile != "" {
		sa, err := meet.LoadServiceAccount(cfg.Google.ServiceAccountFile)
		if err != nil {
			logger.Warn("service account unavailable, using fallback links", zap.Error(err))
		} else if creds, err := meet.NewCredentials(sa, providerHTTP, meet.NewRedisTokenCache(rdb.Client), logger); err != nil {
			logger.Warn("service account key invalid, using fallback links", zap.Error(err))
		} else {
			tokens = creds
		}
	}
	provisioner := meet.NewProvisioner(tokens, meet.Config{
		CalendarID: cfg.Google.CalendarID,
		MeetDomain: cfg.Google.MeetDomain,
		Endpoint:   cfg.Google.CalendarEndpoint,
		Policy:     meet.PolicyFromFlags(cfg.Google.StrictAuth, cfg.Google.StrictProvider, cfg.Google.StrictUnexpected),
	}, providerHTTP, logger)

	// Event types
	eventRepo := eventtypes.NewRepository(pool)
	eventHandler := eventtypes.NewHandler(eventRepo, window, logger)

	// Bookings
	bookingRepo := bookings.NewRepository(pool)
	bookingService := bookings.NewService(bookingRepo, eventRepo, provisioner, jobQueue, logger)
	bookingHandler := bookings.NewHandler(bookingService, logger)

	// Host accounts and confirmation delivery log
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	emailLogsHandler := emaillogs.NewHandler(emaillogs.NewRepository(pool), bookingService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	healthHandler := health.NewHandler(map[string]health.CheckFunc{
		"postgres": pool.Ping,
		"redis":    rdb.Healthy,
	}, 2*time.Second, logger)
	router.GET("/health", healthHandler.Status)

	// Public: booking page
	router.GET("/api/embed/:slug", eventHandler.GetEmbed)
	router.GET("/api/embed/:slug/slots", eventHandler.Slots)
	router.POST("/bookings", middleware.RateLimit(cfg.Booking.RateLimitPerMin, cfg.Booking.RateLimitBurst, logger), bookingHandler.Create)
	router.GET("/bookings/:id", bookingHandler.Get)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Host API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/event-types", middleware.RequireRole(auth.RoleHost), eventHandler.List)
		api.POST("/event-types", middleware.RequireRole(auth.RoleHost), eventHandler.Create)
		api.GET("/bookings/:id/emails", middleware.RequireRole(auth.RoleHost), emailLogsHandler.ListByBooking)
		api.POST("/bookings/:id/emails/resend", middleware.RequireRole(auth.RoleHost), emailLogsHandler.Resend)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.Bool("provider_configured", tokens != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
