package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/app"
	"github.com/wishwell/api/internal/clock"
	"github.com/wishwell/api/internal/config"
	"github.com/wishwell/api/internal/realtime"
	"github.com/wishwell/api/internal/storage/postgres"
	"github.com/wishwell/api/internal/token"
	transporthttp "github.com/wishwell/api/internal/transport/http"
	"github.com/wishwell/api/migrations"
	"github.com/wishwell/api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))
	cfg := config.Load(log)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	wishlistRepo := postgres.NewWishlistRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	contributionRepo := postgres.NewContributionRepository(pool)

	hub := realtime.NewHub(log)
	var broadcaster app.Broadcaster = hub

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("parse redis URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(startupCtx).Err(); err != nil {
			log.WithError(err).Fatal("redis ping")
		}
		defer client.Close()

		bridge := realtime.NewRedisBridge(client, hub, log)
		broadcaster = bridge
		go func() {
			if err := bridge.Run(runCtx); err != nil {
				log.WithError(err).Error("redis snapshot feed stopped")
			}
		}()
		log.Info("cross-instance fan-out enabled via redis")
	}

	publisher := app.NewSnapshotPublisher(wishlistRepo, broadcaster, log)
	clk := clock.NewSystem()
	slugs := token.NewSlugger(wishlistRepo)

	wishlistSvc := app.NewWishlistService(wishlistRepo, slugs, token.NewSecret, clk, publisher)
	reservationSvc := app.NewReservationService(reservationRepo, token.NewSecret, clk, publisher,
		app.WithReservationRetry(postgres.IsTransient))
	contributionSvc := app.NewContributionService(contributionRepo, token.NewSecret, clk, publisher,
		app.WithContributionRetry(postgres.IsTransient))

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Wishlists:      wishlistSvc,
		Items:          wishlistSvc,
		Reservations:   reservationSvc,
		Contributions:  contributionSvc,
		Hub:            hub,
		Log:            log,
		Metrics:        transporthttp.NewMetrics(),
		AllowedOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: transporthttp.CORS(cfg.CORSOrigins, router),
	}

	log.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-runCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
