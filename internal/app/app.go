// Package app wires the stores and services shared by the server and CLI
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/compare"
	"github.com/artpricematcher/price-matcher/internal/competitors"
	"github.com/artpricematcher/price-matcher/internal/database"
	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	httpclient "github.com/artpricematcher/price-matcher/internal/http"
	"github.com/artpricematcher/price-matcher/internal/http/ratelimit"
	"github.com/artpricematcher/price-matcher/internal/jobs"
	"github.com/artpricematcher/price-matcher/internal/prestashop"
	"github.com/artpricematcher/price-matcher/internal/runner"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/stats"
	"github.com/artpricematcher/price-matcher/internal/storage"
)

// Catalog drivers
const (
	DriverPostgres   = "postgres"
	DriverPrestaShop = "prestashop"
)

// ShopStore is the catalog and specific price side, served either by
// Postgres or by a PrestaShop database
type ShopStore interface {
	compare.Catalog
	discounts.ProductStore
	discounts.SpecificPriceStore
}

// App holds the wired services
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Logger *zerolog.Logger

	CompetitorStore *database.CompetitorStore
	ConfigStore     *database.ConfigStore
	MatchStore      *database.MatchStore
	Shop            ShopStore

	Competitors *competitors.Service
	Resolver    *settings.Resolver
	Recorder    *stats.Recorder
	Storage     *storage.LocalStorage
	Feeds       *feeds.Registry
	Sources     *feeds.Selector
	Compare     *compare.Pipeline
	Discounts   *discounts.Service
	Runner      *runner.Runner
	Retention   *jobs.Retention

	closers []func() error
}

// Build connects to the databases and wires every service. Close releases
// the connections.
func Build(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := database.Connect(ctx, cfg.Database); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Pool: database.Pool(), Logger: logger}
	a.closers = append(a.closers, func() error { database.Close(); return nil })

	if err := a.openShop(cfg); err != nil {
		a.Close()
		return nil, err
	}

	fs, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("error opening feed storage: %w", err)
	}
	a.Storage = fs

	a.wire(logger)
	return a, nil
}

func (a *App) openShop(cfg *config.Config) error {
	switch strings.ToLower(cfg.Catalog.Driver) {
	case "", DriverPostgres:
		a.Shop = struct {
			*database.CatalogStore
			*database.DiscountStore
		}{database.NewCatalogStore(a.Pool), database.NewDiscountStore(a.Pool, cfg.Shop.ID)}
	case DriverPrestaShop:
		ps, err := prestashop.Open(cfg.Catalog, cfg.Shop.ID)
		if err != nil {
			return err
		}
		a.Shop = ps
		a.closers = append(a.closers, ps.Close)
	default:
		return fmt.Errorf("unknown catalog driver %q", cfg.Catalog.Driver)
	}
	return nil
}

func (a *App) wire(logger *zerolog.Logger) {
	cfg := a.Config
	a.CompetitorStore = database.NewCompetitorStore(a.Pool)
	a.ConfigStore = database.NewConfigStore(a.Pool)
	a.MatchStore = database.NewMatchStore(a.Pool)
	locker := database.NewLocker(a.Pool)

	a.Competitors = competitors.NewService(a.CompetitorStore, logger)
	a.Resolver = settings.NewResolver(a.ConfigStore, a.CompetitorStore)
	statistics := database.NewStatisticsStore(a.Pool)
	a.Recorder = stats.NewRecorder(statistics, logger)
	a.Retention = jobs.NewRetention(statistics, a.Storage, a.CompetitorStore, cfg.Retention, logger)

	client := httpclient.NewClient(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		MaxRetries:        cfg.RateLimit.MaxRetries,
		InitialBackoffMs:  cfg.RateLimit.InitialBackoffMs,
		MaxBackoffMs:      cfg.RateLimit.MaxBackoffMs,
	})
	a.Feeds = feeds.NewRegistry()
	feeds.InitializeDefaultSources(a.Feeds, a.Storage, client)
	a.Sources = a.Feeds.Bind(cfg.Feeds)

	a.Compare = compare.New(compare.Deps{
		Competitors: a.CompetitorStore,
		Catalog:     a.Shop,
		Matches:     a.MatchStore,
		Resolver:    a.Resolver,
		Locker:      locker,
		Recorder:    a.Recorder,
	}, logger)

	a.Discounts = discounts.New(discounts.Deps{
		SpecificPrices: a.Shop,
		Tracking:       database.NewActiveDiscountStore(a.Pool),
		Matches:        a.MatchStore,
		Products:       a.Shop,
		Competitors:    a.CompetitorStore,
		Settings:       a.Resolver,
		Config:         a.ConfigStore,
		Locker:         locker,
		Recorder:       a.Recorder,
	}, logger)

	a.Runner = runner.New(runner.Deps{
		Competitors: a.CompetitorStore,
		Sources:     a.Sources,
		Comparer:    a.Compare,
		Updater:     a.Discounts,
		Tokens:      a.Resolver,
		Recorder:    a.Recorder,
	}, logger)
}

// Migrate creates the matcher tables, plus the catalog tables when the
// catalog lives in Postgres, and seeds an empty config table
func (a *App) Migrate(ctx context.Context) error {
	driver := strings.ToLower(a.Config.Catalog.Driver)
	withCatalog := driver == "" || driver == DriverPostgres
	if err := database.Migrate(ctx, a.Pool, withCatalog); err != nil {
		return err
	}
	defaults, err := settings.InstallDefaults()
	if err != nil {
		return err
	}
	return a.ConfigStore.SeedConfig(ctx, defaults)
}

// Ping checks the matcher database
func (a *App) Ping(ctx context.Context) error {
	return database.Status(ctx)
}

// Close releases database connections in reverse order
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing resource")
		}
	}
	a.closers = nil
}
