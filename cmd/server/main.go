package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"             // structured logging

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/metrics"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()
	m := metrics.Init()

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if cfg.DB.MigrateOnStart {
		if err := database.RunMigrations(db.DB); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	// cache and rate limiter pass through without redis
	rdb, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.EventPublisher = queue.NopPublisher{}
	var consumers sync.WaitGroup
	if cfg.AMQP.URL != "" {
		pub := queue.NewAMQPPublisher(cfg.AMQP)
		defer pub.Close()
		events = pub

		consumer := queue.NewConsumer(cfg.AMQP, "")
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking event consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("AMQP_URL not set, booking events are not published")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	tx := repository.NewTransactor(db, cfg.DB, repository.WithRetryHook(m.TxRetriesTotal.Inc))

	opts := []service.Option{service.WithLockTTL(cfg.SeatLockTTL), service.WithMetrics(m)}
	locks := service.NewSeatLockManager(tx, shows, bookings, opts...)
	bookingSvc := service.NewBookingService(tx, shows, bookings, events, opts...)
	catalog := service.NewCatalogService(movies, theaters, shows, opts...)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e, m)

	router.RegisterRoutes(e, handler.NewHealthHandler(db), cfg.MetricsUser, cfg.MetricsPassword)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterCatalog(e, router.CatalogDeps{
		Movies:     handler.NewMovieHandler(catalog),
		Theaters:   handler.NewTheaterHandler(catalog),
		Shows:      handler.NewShowHandler(catalog),
		JWTSecret:  cfg.JWTSecret,
		Cache:      middleware.NewRedisCache(cfg.Cache, rdb),
		Invalidate: middleware.InvalidateCache(cfg.Cache, rdb),
	})
	router.RegisterSeatLocks(e, handler.NewSeatLockHandler(locks), middleware.NewTokenBucket(cfg.RateLimit, rdb))
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc), cfg.JWTSecret)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	consumers.Wait()
}
