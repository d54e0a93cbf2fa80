// Package compare runs competitor feeds through matching, exclusion and
// pricing and stages the resulting candidate discounts
package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/artpricematcher/price-matcher/internal/exclusion"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	"github.com/artpricematcher/price-matcher/internal/matching"
	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/stats"
	"github.com/artpricematcher/price-matcher/internal/storage"
	"github.com/artpricematcher/price-matcher/internal/telemetry"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// ErrNoFeed is returned when a run request names neither a path nor a source
var ErrNoFeed = errors.New("no feed path or source given")

// CompetitorStore loads competitors
type CompetitorStore interface {
	GetCompetitor(ctx context.Context, id int64) (*types.Competitor, error)
	GetCompetitorByName(ctx context.Context, name string) (*types.Competitor, error)
	TouchCompetitor(ctx context.Context, id int64) error
}

// Catalog is the product side of the comparison
type Catalog interface {
	matching.Catalog
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
	GetTaxRate(ctx context.Context, productID int64) (float64, error)
}

// MatchStore is the staging table
type MatchStore interface {
	UpsertMatch(ctx context.Context, m *types.PriceMatch) error
	DeleteMatch(ctx context.Context, productID, competitorID int64) error
	ListPriceDifferences(ctx context.Context, competitorID int64, minDiscount float64) ([]types.PriceMatch, error)
}

// SettingsResolver yields the effective settings for a competitor
type SettingsResolver interface {
	ResolveFor(ctx context.Context, competitor *types.Competitor) (settings.Settings, error)
}

// Locker serializes runs per competitor
type Locker interface {
	Acquire(ctx context.Context, competitorID int64) (func(), error)
}

// Recorder persists operation statistics without failing the run
type Recorder interface {
	RecordQuietly(ctx context.Context, rec types.OperationRecord)
}

// Deps groups the pipeline collaborators
type Deps struct {
	Competitors CompetitorStore
	Catalog     Catalog
	Matches     MatchStore
	Resolver    SettingsResolver
	Locker      Locker
	Recorder    Recorder
}

// RunRequest selects the competitor and feed for one run. CompetitorID wins
// over CompetitorName, FeedPath over Source.
type RunRequest struct {
	CompetitorID   int64
	CompetitorName string
	FeedPath       string
	Source         feeds.Source
	Initiator      types.Initiator
	// Progress, when set, is called after every feed row
	Progress func(RowResult)
}

// Stats aggregates the outcome of one comparison run
type Stats struct {
	Competitor       string        `json:"competitor"`
	FeedPath         string        `json:"feedPath,omitempty"`
	TotalProducts    int           `json:"totalProducts"`
	ProductsFound    int           `json:"productsFound"`
	ProductsNotFound int           `json:"productsNotFound"`
	ProductsMatched  int           `json:"productsMatched"`
	ProductsLower    int           `json:"productsLower"`
	ProductsSkipped  int           `json:"productsSkipped"`
	ExecutionTime    time.Duration `json:"executionTime"`
}

func (s *Stats) add(r RowResult) {
	s.TotalProducts++
	if r.ProductID != 0 && r.Outcome != OutcomeNotFound {
		s.ProductsFound++
	}
	switch r.Outcome {
	case OutcomeNotFound:
		s.ProductsNotFound++
	case OutcomeSkipped:
		s.ProductsSkipped++
	case OutcomeMatched:
		s.ProductsMatched++
		s.ProductsLower++
	}
}

// Pipeline runs comparisons
type Pipeline struct {
	deps    Deps
	matcher *matching.Matcher
	logger  *zerolog.Logger
	now     func() time.Time
}

// New creates a comparison pipeline
func New(deps Deps, logger *zerolog.Logger) *Pipeline {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Pipeline{
		deps:    deps,
		matcher: matching.NewMatcher(deps.Catalog, logger),
		logger:  logger,
		now:     time.Now,
	}
}

func (p *Pipeline) competitorID(ctx context.Context, req RunRequest) (int64, error) {
	if req.CompetitorID != 0 {
		return req.CompetitorID, nil
	}
	if req.CompetitorName == "" {
		return 0, fmt.Errorf("%w: no id or name given", types.ErrCompetitorNotFound)
	}
	c, err := p.deps.Competitors.GetCompetitorByName(ctx, req.CompetitorName)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

// Run compares one feed against the catalog. Setup failures (unknown
// competitor, missing feed or columns, busy lock) abort the run; row level
// problems are counted and logged.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*Stats, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "compare.Run")
	defer span.End()

	st, err := p.run(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		stats.RunFailed(types.OperationCompare)
		p.logger.Error().Err(err).
			Int64("competitor_id", req.CompetitorID).
			Str("competitor", req.CompetitorName).
			Msg("Comparison aborted")
	}
	return st, err
}

func (p *Pipeline) run(ctx context.Context, req RunRequest, span trace.Span) (*Stats, error) {
	start := p.now()

	id, err := p.competitorID(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("competitor.id", id))

	release, err := p.deps.Locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	competitor, err := p.deps.Competitors.GetCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}
	st := &Stats{Competitor: competitor.Name}
	if !competitor.Active {
		p.logger.Info().Str("competitor", competitor.Name).Msg("Competitor inactive, skipping comparison")
		return st, nil
	}

	s, err := p.deps.Resolver.ResolveFor(ctx, competitor)
	if err != nil {
		return nil, err
	}

	path, err := p.feedPath(ctx, req, competitor)
	if err != nil {
		return nil, err
	}
	st.FeedPath = path

	reader, err := csv.OpenFeed(path)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", path, err)
	}

	log := p.logger.With().Str("competitor", competitor.Name).Str("feed", filepath.Base(path)).Logger()
	log.Info().Str("strategy", string(s.Strategy)).Msg("Starting comparison")

	rc := &rowContext{
		competitor: competitor,
		settings:   s,
		filter:     exclusion.New(s),
		priceFile:  filepath.Base(path),
		persist:    true,
		logger:     &log,
	}

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var result RowResult
		if err != nil {
			if !errors.Is(err, csv.ErrMalformedRow) {
				return st, fmt.Errorf("read feed: %w", err)
			}
			log.Debug().Err(err).Msg("Malformed feed row")
			result = RowResult{Row: row, Outcome: OutcomeNotFound, Reason: ReasonInvalidRow}
		} else {
			result = p.processRow(ctx, rc, row)
		}

		st.add(result)
		stats.ObserveRows(competitor.Name, string(result.Outcome), 1)
		if req.Progress != nil {
			req.Progress(result)
		}
	}

	if err := p.deps.Competitors.TouchCompetitor(ctx, competitor.ID); err != nil {
		log.Error().Err(err).Msg("Failed to update competitor timestamp")
	}

	st.ExecutionTime = p.now().Sub(start)
	p.deps.Recorder.RecordQuietly(ctx, types.OperationRecord{
		CompetitorID:  &competitor.ID,
		Operation:     types.OperationCompare,
		TotalProducts: st.TotalProducts,
		SuccessCount:  st.ProductsMatched,
		ErrorCount:    st.TotalProducts - st.ProductsMatched - st.ProductsSkipped,
		SkippedCount:  st.ProductsSkipped,
		ExecutionTime: st.ExecutionTime,
		InitiatedBy:   req.Initiator,
	})

	span.SetAttributes(
		attribute.Int("rows.total", st.TotalProducts),
		attribute.Int("rows.matched", st.ProductsMatched),
	)
	log.Info().
		Int("total", st.TotalProducts).
		Int("found", st.ProductsFound).
		Int("not_found", st.ProductsNotFound).
		Int("matched", st.ProductsMatched).
		Int("skipped", st.ProductsSkipped).
		Dur("duration", st.ExecutionTime).
		Msg("Comparison finished")
	return st, nil
}

func (p *Pipeline) feedPath(ctx context.Context, req RunRequest, competitor *types.Competitor) (string, error) {
	if req.FeedPath != "" {
		return req.FeedPath, nil
	}
	if req.Source == nil {
		return "", ErrNoFeed
	}
	res, err := req.Source.Fetch(ctx, competitor)
	if err != nil {
		return "", fmt.Errorf("fetch feed from %s: %w", req.Source.Name(), err)
	}
	return res.Path, nil
}

// DryRun evaluates rows without staging anything. The competitor does not
// need to be active and no lock is taken.
func (p *Pipeline) DryRun(ctx context.Context, competitorID int64, rows []types.FeedRow) ([]RowResult, *Stats, error) {
	competitor, err := p.deps.Competitors.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, nil, err
	}
	s, err := p.deps.Resolver.ResolveFor(ctx, competitor)
	if err != nil {
		return nil, nil, err
	}

	rc := &rowContext{
		competitor: competitor,
		settings:   s,
		filter:     exclusion.New(s),
		logger:     p.logger,
	}
	st := &Stats{Competitor: competitor.Name}
	results := make([]RowResult, 0, len(rows))
	for _, row := range rows {
		r := p.processRow(ctx, rc, row)
		st.add(r)
		results = append(results, r)
	}
	return results, st, nil
}

// PriceDifferences lists staged rows where the competitor undercuts the shop
// by at least the competitor's minimum discount
func (p *Pipeline) PriceDifferences(ctx context.Context, competitorID int64) ([]types.PriceMatch, error) {
	competitor, err := p.deps.Competitors.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	s, err := p.deps.Resolver.ResolveFor(ctx, competitor)
	if err != nil {
		return nil, err
	}
	return p.deps.Matches.ListPriceDifferences(ctx, competitor.ID, s.MinDiscountPercent)
}

// LatestFeed returns the newest <name>_*.csv in dir
func LatestFeed(ctx context.Context, dir, competitorName string) (string, error) {
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return "", err
	}
	info, err := store.Latest(ctx, competitorName)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}
