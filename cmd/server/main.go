// @title Price Matcher API
// @version 1.0
// @description Competitor price comparison and discount management for the shop catalog.
// @BasePath /
// @securityDefinitions.apikey InternalAPIKey
// @in header
// @name X-Internal-API-Key
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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"github.com/artpricematcher/price-matcher/config"
	_ "github.com/artpricematcher/price-matcher/docs"
	"github.com/artpricematcher/price-matcher/internal/app"
	"github.com/artpricematcher/price-matcher/internal/handlers"
	"github.com/artpricematcher/price-matcher/internal/middleware"
	"github.com/artpricematcher/price-matcher/internal/scheduler"
	"github.com/artpricematcher/price-matcher/internal/sweepers"
	"github.com/artpricematcher/price-matcher/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "price-matcher: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := app.NewLogger(cfg.Logging, "price-matcher")
	logger.Info().Msg("Starting price matcher")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(sctx); err != nil {
				logger.Warn().Err(err).Msg("Telemetry shutdown failed")
			}
		}()
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info().Str("catalog", cfg.Catalog.Driver).Msg("Database connected")

	if err := a.Migrate(ctx); err != nil {
		return err
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes := &handlers.Routes{
		Ping:        a.Ping,
		Cron:        handlers.NewCronHandler(a.Runner, logger),
		Competitors: handlers.NewCompetitorHandler(a.Competitors),
		Runs:        handlers.NewRunHandler(a.Competitors, a.Compare, a.Discounts, a.Sources, logger),
		Discounts:   handlers.NewDiscountHandler(a.Discounts, a.Compare),
		Statistics:  handlers.NewStatisticsHandler(a.Recorder),
		Settings:    handlers.NewSettingsHandler(a.ConfigStore),
		CronMiddleware: []gin.HandlerFunc{
			middleware.RateLimitMiddleware(ctx, middleware.DefaultRateLimiterConfig()),
		},
		InternalMiddleware: []gin.HandlerFunc{
			middleware.InternalAuthMiddleware(cfg.Server.InternalAPIKey),
			middleware.ServiceRateLimitMiddleware(cfg.Server.APIRateLimit, cfg.Server.APIBurst),
		},
	}
	routes.Register(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sched := scheduler.New(cfg.Cron, a.Runner, logger)
	sweeper := sweepers.NewDiscountSweeper(a.Discounts, logger, cfg.Cron.CleanInterval)
	retention := sweepers.NewRetentionSweeper(a.Retention, logger, cfg.Retention.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	g.Go(func() error {
		sweeper.Start(gctx)
		return nil
	})
	g.Go(func() error {
		retention.Start(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		sweeper.Stop()
		retention.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	err = g.Wait()
	logger.Info().Msg("Server exited")
	return err
}
