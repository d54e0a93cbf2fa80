// Package discounts promotes staged price matches into time-boxed specific
// prices and manages their lifecycle
package discounts

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// UpdateBatchLimit caps the staged rows promoted per competitor and run
const UpdateBatchLimit = 1000

// SpecificPriceStore is the shop's discount table
type SpecificPriceStore interface {
	FindSpecificPrice(ctx context.Context, productID int64) (*types.SpecificPrice, bool, error)
	CreateSpecificPrice(ctx context.Context, sp *types.SpecificPrice) error
	UpdateSpecificPrice(ctx context.Context, id int64, price float64, from, to time.Time) error
	SetSpecificPriceExpiration(ctx context.Context, id int64, to time.Time) error
	DeleteSpecificPrices(ctx context.Context, ids []int64) (int64, error)
	DeleteExpiredSpecificPrices(ctx context.Context, now time.Time) (int64, error)
}

// TrackingStore records which specific prices the matcher owns
type TrackingStore interface {
	UpsertActiveDiscount(ctx context.Context, d *types.ActiveDiscount) error
	GetActiveDiscount(ctx context.Context, id int64) (*types.ActiveDiscount, error)
	ListActiveDiscounts(ctx context.Context, competitorID *int64) ([]types.ActiveDiscount, error)
	ListExpiredDiscounts(ctx context.Context, now time.Time) ([]types.ActiveDiscount, error)
	DeleteActiveDiscounts(ctx context.Context, ids []int64) (int64, error)
	SetActiveDiscountExpiration(ctx context.Context, id int64, expiration time.Time) error
}

// MatchStore is the staging table read by updates
type MatchStore interface {
	ListMatchesForUpdate(ctx context.Context, competitorID int64, limit int) ([]types.PriceMatch, error)
	DeleteMatch(ctx context.Context, productID, competitorID int64) error
}

// ProductStore loads catalog products in bulk
type ProductStore interface {
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]types.Product, error)
}

// CompetitorStore loads competitors
type CompetitorStore interface {
	GetCompetitor(ctx context.Context, id int64) (*types.Competitor, error)
	GetCompetitorByName(ctx context.Context, name string) (*types.Competitor, error)
	ListCompetitors(ctx context.Context) ([]types.Competitor, error)
}

// SettingsSource resolves effective and global settings
type SettingsSource interface {
	ResolveFor(ctx context.Context, competitor *types.Competitor) (settings.Settings, error)
	Global(ctx context.Context) (settings.Global, error)
}

// Locker serializes runs per competitor
type Locker interface {
	Acquire(ctx context.Context, competitorID int64) (func(), error)
}

// Recorder persists operation statistics without failing the run
type Recorder interface {
	RecordQuietly(ctx context.Context, rec types.OperationRecord)
}

// Deps groups the service collaborators
type Deps struct {
	SpecificPrices SpecificPriceStore
	Tracking       TrackingStore
	Matches        MatchStore
	Products       ProductStore
	Competitors    CompetitorStore
	Settings       SettingsSource
	Config         settings.ConfigWriter
	Locker         Locker
	Recorder       Recorder
}

// Service runs updates, cleanups and active discount administration
type Service struct {
	deps   Deps
	logger *zerolog.Logger
	now    func() time.Time
}

// New creates a discount service
func New(deps Deps, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{deps: deps, logger: logger, now: time.Now}
}
