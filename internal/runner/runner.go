// Package runner drives the scheduled download, compare and update cycle
package runner

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/compare"
	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/stats"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Comparer runs one comparison
type Comparer interface {
	Run(ctx context.Context, req compare.RunRequest) (*compare.Stats, error)
}

// Updater promotes staged matches and cleans expired discounts
type Updater interface {
	UpdatePrices(ctx context.Context, req discounts.UpdateRequest) (*discounts.UpdateResult, error)
	CleanExpired(ctx context.Context, initiator types.Initiator) (*discounts.CleanResult, error)
}

// CompetitorLister lists competitors
type CompetitorLister interface {
	ListCompetitors(ctx context.Context) ([]types.Competitor, error)
}

// SourceSelector picks the feed source of a competitor
type SourceSelector interface {
	SourceFor(competitor string) (feeds.Source, error)
}

// TokenReader exposes the stored cron token
type TokenReader interface {
	Global(ctx context.Context) (settings.Global, error)
}

// Recorder persists operation statistics without failing the run
type Recorder interface {
	RecordQuietly(ctx context.Context, rec types.OperationRecord)
}

// Deps groups the runner collaborators
type Deps struct {
	Competitors CompetitorLister
	Sources     SourceSelector
	Comparer    Comparer
	Updater     Updater
	Tokens      TokenReader
	Recorder    Recorder
}

// Step names a stage of the cron cycle
type Step string

const (
	StepDownload Step = "download"
	StepCompare  Step = "compare"
	StepUpdate   Step = "update"
)

// CompetitorReport is the outcome of one competitor's cycle
type CompetitorReport struct {
	Name       string                  `json:"name"`
	FeedPath   string                  `json:"feedPath,omitempty"`
	Compare    *compare.Stats          `json:"compare,omitempty"`
	Update     *discounts.UpdateResult `json:"update,omitempty"`
	FailedStep Step                    `json:"failedStep,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Report is the outcome of a full cron cycle
type Report struct {
	Competitors []CompetitorReport     `json:"competitors"`
	Clean       *discounts.CleanResult `json:"clean,omitempty"`
	CleanError  string                 `json:"cleanError,omitempty"`
	Duration    time.Duration          `json:"duration"`
}

// String renders the plain text summary returned to cron callers
func (r *Report) String() string {
	var sb strings.Builder
	if len(r.Competitors) == 0 {
		sb.WriteString("No competitors configured for cron updates\n")
	}
	for _, c := range r.Competitors {
		if c.Error != "" {
			fmt.Fprintf(&sb, "%s: %s failed: %s\n", c.Name, c.FailedStep, c.Error)
			continue
		}
		fmt.Fprintf(&sb, "%s: compared %d rows, %d matched, %d skipped; updated %d of %d, %d skipped, %d failed\n",
			c.Name,
			c.Compare.TotalProducts, c.Compare.ProductsMatched, c.Compare.ProductsSkipped,
			c.Update.Updated, c.Update.TotalChecked, c.Update.Skipped, c.Update.Failed)
	}
	switch {
	case r.CleanError != "":
		fmt.Fprintf(&sb, "Cleaning expired discounts failed: %s\n", r.CleanError)
	case r.Clean != nil:
		fmt.Fprintf(&sb, "Cleaned %d expired discounts\n", r.Clean.Total)
	}
	fmt.Fprintf(&sb, "Cron job executed in %s\n", r.Duration.Round(time.Millisecond))
	return sb.String()
}

// Runner executes the cron cycle
type Runner struct {
	deps   Deps
	logger *zerolog.Logger
	now    func() time.Time
}

// New creates a runner
func New(deps Deps, logger *zerolog.Logger) *Runner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Runner{deps: deps, logger: logger, now: time.Now}
}

// VerifyToken compares token with the stored cron token in constant time
func (r *Runner) VerifyToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: no token provided", types.ErrInvalidToken)
	}
	g, err := r.deps.Tokens.Global(ctx)
	if err != nil {
		return err
	}
	if g.CronToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(g.CronToken)) != 1 {
		return types.ErrInvalidToken
	}
	return nil
}

// RunCron downloads, compares and updates every active competitor with cron
// updates enabled, then cleans expired discounts once more. Each update
// cleans first itself when clean_expired_discounts is set. A failing step
// ends that competitor's cycle and the loop moves on.
func (r *Runner) RunCron(ctx context.Context) (*Report, error) {
	start := r.now()
	r.logger.Info().Msg("Starting cron job")

	competitors, err := r.deps.Competitors.ListCompetitors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}

	report := &Report{}
	for i := range competitors {
		c := &competitors[i]
		if !c.Active || !c.CronUpdate {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Competitors = append(report.Competitors, r.runCompetitor(ctx, c))
	}

	clean, err := r.deps.Updater.CleanExpired(ctx, types.InitiatorCron)
	if err != nil {
		report.CleanError = err.Error()
		r.logger.Error().Err(err).Msg("Cleaning expired discounts failed")
	} else {
		report.Clean = clean
	}

	report.Duration = r.now().Sub(start)
	r.logger.Info().
		Int("competitors", len(report.Competitors)).
		Dur("duration", report.Duration).
		Msg("Cron job completed")
	return report, nil
}

func (r *Runner) runCompetitor(ctx context.Context, c *types.Competitor) CompetitorReport {
	rep := CompetitorReport{Name: c.Name}
	log := r.logger.With().Str("competitor", c.Name).Logger()
	fail := func(step Step, err error) CompetitorReport {
		rep.FailedStep = step
		rep.Error = err.Error()
		log.Error().Err(err).Str("step", string(step)).Msg("Cron step failed")
		return rep
	}

	log.Info().Msg("Downloading prices")
	path, err := r.download(ctx, c)
	if err != nil {
		return fail(StepDownload, err)
	}
	rep.FeedPath = path

	log.Info().Msg("Comparing prices")
	st, err := r.deps.Comparer.Run(ctx, compare.RunRequest{
		CompetitorID: c.ID,
		FeedPath:     path,
		Initiator:    types.InitiatorCron,
	})
	if err != nil {
		return fail(StepCompare, err)
	}
	rep.Compare = st

	log.Info().Msg("Updating prices")
	res, err := r.deps.Updater.UpdatePrices(ctx, discounts.UpdateRequest{
		CompetitorID: c.ID,
		Initiator:    types.InitiatorCron,
	})
	if err != nil {
		return fail(StepUpdate, err)
	}
	rep.Update = res

	log.Info().Msg("Competitor processed")
	return rep
}

// download fetches the feed and records a download statistics row
func (r *Runner) download(ctx context.Context, c *types.Competitor) (string, error) {
	start := r.now()
	src, err := r.deps.Sources.SourceFor(c.Name)
	if err != nil {
		return "", err
	}
	res, err := src.Fetch(ctx, c)
	if err != nil {
		stats.RunFailed(types.OperationDownload)
		return "", err
	}

	r.deps.Recorder.RecordQuietly(ctx, types.OperationRecord{
		CompetitorID:  &c.ID,
		Operation:     types.OperationDownload,
		TotalProducts: res.Rows,
		SuccessCount:  res.Rows,
		ExecutionTime: r.now().Sub(start),
		InitiatedBy:   types.InitiatorCron,
	})
	return res.Path, nil
}
