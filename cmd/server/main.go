package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/donation-holds/internal/catalog"
	"github.com/iliyamo/donation-holds/internal/clock"
	"github.com/iliyamo/donation-holds/internal/config"
	"github.com/iliyamo/donation-holds/internal/database"
	"github.com/iliyamo/donation-holds/internal/handler"
	"github.com/iliyamo/donation-holds/internal/logger"
	"github.com/iliyamo/donation-holds/internal/middleware"
	"github.com/iliyamo/donation-holds/internal/queue"
	"github.com/iliyamo/donation-holds/internal/repository"
	"github.com/iliyamo/donation-holds/internal/router"
	"github.com/iliyamo/donation-holds/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}

	var cat catalog.Catalog = catalog.NewFixture()
	if cfg.CatalogURL != "" {
		cat = catalog.NewHTTPClient(cfg.CatalogURL, cfg.CatalogTimeout)
		log.Info("using remote catalog", zap.String("url", cfg.CatalogURL))
	} else {
		log.Info("using built-in catalog fixture")
	}

	holds := service.NewHoldService(repository.NewHoldRepo(db), clock.NewSystem(), log,
		service.WithHoldTTL(cfg.HoldTTL))
	reservations := service.NewReservationService(
		holds,
		service.NewAvailabilityService(cat, holds, log),
		cat,
		service.NewPickupLedger(repository.NewPickupRepo(db)),
		queue.NewPublisher(cfg.AMQPURL, log),
		log,
	)
	users := service.NewUserService(repository.NewUserRepo(db), log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.RequestLogger(log))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log)

	router.RegisterRoutes(e)
	router.RegisterDonations(e, handler.NewDonationHandler(reservations, log))
	router.RegisterHolds(e, handler.NewHoldHandler(reservations, log), handler.NewHistoryHandler(reservations, log), limit)
	router.RegisterUsers(e, handler.NewUserHandler(users, log), limit, cache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if cfg.PickupConsumerEnabled {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.PickupLogDir, log)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
