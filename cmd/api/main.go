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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Yasserk123/HealthVision-Projet/internal/backend"
	"github.com/Yasserk123/HealthVision-Projet/internal/config"
	"github.com/Yasserk123/HealthVision-Projet/internal/email"
	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	appointmentHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/appointment"
	authHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/auth"
	dashboardHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/dashboard"
	doctorHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/doctor"
	notificationHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/notification"
	prescriptionHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/prescription"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository/rest"
	"github.com/Yasserk123/HealthVision-Projet/internal/router"
	appointmentService "github.com/Yasserk123/HealthVision-Projet/internal/service/appointment"
	doctorService "github.com/Yasserk123/HealthVision-Projet/internal/service/doctor"
	notificationService "github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	prescriptionService "github.com/Yasserk123/HealthVision-Projet/internal/service/prescription"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	"github.com/Yasserk123/HealthVision-Projet/pkg/logger"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging/redis"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics("healthvision", registry)

	// Hosted backend
	client, err := backend.New(backend.Config{
		URL:     cfg.Backend.URL,
		APIKey:  cfg.Backend.AnonKey,
		Timeout: cfg.Backend.Timeout,
	}, backend.WithMetrics(appMetrics))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure backend client")
	}

	checks := map[string]handler.Check{"backend": client.Ping}

	// Message broker; without Redis events only reach streams of this process
	var broker messaging.Broker = messaging.NewLocalBroker()
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
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rb.Close()
		broker = rb
		if p, ok := rb.(interface{ Ping(context.Context) error }); ok {
			checks["redis"] = p.Ping
		}
	}

	var mailer email.Service
	if cfg.SMTPEnabled() {
		mailer = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	// Initialize repositories
	v := validator.New()
	repos := rest.NewSet(client, v)

	// Initialize services
	notificationSvc := notificationService.NewService(repos.Notifications, broker, appLogger)
	notificationStream := notificationService.NewStream(broker, appLogger)
	doctorSvc := doctorService.NewService(repos.Doctors)
	appointmentSvc := appointmentService.NewService(repos.Appointments, notificationSvc, mailer, v, appMetrics, appLogger)
	prescriptionSvc := prescriptionService.NewService(repos.Prescriptions, notificationSvc, v, appMetrics, appLogger)

	// Client sessions
	sessionRegistry := session.NewRegistry(cfg.Session.TTL, cfg.Session.CleanupInterval, func() *session.Store {
		return session.NewStore(client.NewAuthSession(), repos.Profiles, appLogger)
	}, appMetrics)
	sessions := middleware.NewSessions(sessionRegistry, middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
		MaxAge:     int(cfg.Session.TTL / time.Second),
	})

	// Setup router
	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Registerer:     registry,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(sessions, handler.NewHandler(registry, checks), routerConfig,
		authHandler.NewHandler(sessions, v),
		doctorHandler.NewHandler(doctorSvc),
		appointmentHandler.NewHandler(appointmentSvc, v),
		prescriptionHandler.NewHandler(prescriptionSvc),
		notificationHandler.NewHandler(notificationSvc, notificationStream),
		dashboardHandler.NewHandler(appointmentSvc, prescriptionSvc, notificationSvc, appLogger),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Backend.URL).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(srv, appLogger)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains srv.
func waitForShutdown(srv *http.Server, logger zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server exited properly")
}
