package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/Yasserk123/HealthVision-Projet/internal/config"
	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository/postgres"
	notificationService "github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	"github.com/Yasserk123/HealthVision-Projet/internal/worker"
	"github.com/Yasserk123/HealthVision-Projet/pkg/logger"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging/redis"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if !cfg.DatabaseEnabled() {
		log.Fatal().Msg("The worker needs database.dsn (HV_DATABASE_DSN)")
	}
	if !cfg.Reminder.Enabled {
		log.Info().Msg("Reminders disabled, nothing to do")
		return
	}

	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Reminder.Timezone).Msg("Unknown reminder timezone")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	appMetrics := metrics.NewMetrics("healthvision_worker", registry)

	// Initialize database
	db, err := postgres.NewDB(postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	checks := map[string]handler.Check{"database": db.PingContext}

	// Initialize Redis broker
	var broker messaging.Broker = messaging.NopBroker{}
	if cfg.RedisEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rb, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Redis broker")
		}
		defer rb.Close()
		broker = rb
		if p, ok := rb.(interface{ Ping(context.Context) error }); ok {
			checks["redis"] = p.Ping
		}
	}

	notifications := notificationService.NewService(postgres.NewNotificationRepository(db), broker, appLogger)
	job := worker.NewReminderJob(postgres.NewAppointmentScheduleRepository(db), notifications, loc, appMetrics, appLogger)

	scheduler := gocron.NewScheduler(loc)
	if _, err := job.Schedule(scheduler, cfg.Reminder.At); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule reminders")
	}
	scheduler.StartAsync()
	log.Info().Str("at", cfg.Reminder.At).Str("timezone", loc.String()).Msg("Reminder worker started")

	// Probe and metrics endpoints
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery())
	handler.NewHandler(registry, checks).RegisterRoutes(engine.Group(""))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.Port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health check server failed")
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
