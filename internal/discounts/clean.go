package discounts

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/stats"
	"github.com/artpricematcher/price-matcher/internal/telemetry"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// CleanResult counts removed discounts
type CleanResult struct {
	Tracked       int           `json:"tracked"`
	Untracked     int           `json:"untracked"`
	Total         int           `json:"total"`
	ExecutionTime time.Duration `json:"executionTime"`
}

// CleanExpired removes expired tracked discounts with their specific prices,
// then any other specific price whose end date has passed. Specific prices
// without an end date are never touched.
func (s *Service) CleanExpired(ctx context.Context, initiator types.Initiator) (*CleanResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "discounts.CleanExpired")
	defer span.End()

	res, err := s.cleanExpired(ctx, initiator)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		stats.RunFailed(types.OperationClean)
		s.logger.Error().Err(err).Msg("Cleaning expired discounts failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("discounts.removed", res.Total))
	return res, nil
}

func (s *Service) cleanExpired(ctx context.Context, initiator types.Initiator) (*CleanResult, error) {
	start := s.now()
	res := &CleanResult{}

	expired, err := s.deps.Tracking.ListExpiredDiscounts(ctx, start)
	if err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		trackingIDs := make([]int64, 0, len(expired))
		priceIDs := make([]int64, 0, len(expired))
		for _, d := range expired {
			trackingIDs = append(trackingIDs, d.ID)
			if d.SpecificPriceID > 0 {
				priceIDs = append(priceIDs, d.SpecificPriceID)
			}
		}
		if _, err := s.deps.SpecificPrices.DeleteSpecificPrices(ctx, priceIDs); err != nil {
			return nil, err
		}
		removed, err := s.deps.Tracking.DeleteActiveDiscounts(ctx, trackingIDs)
		if err != nil {
			return nil, err
		}
		res.Tracked = int(removed)
	}

	untracked, err := s.deps.SpecificPrices.DeleteExpiredSpecificPrices(ctx, start)
	if err != nil {
		return nil, err
	}
	res.Untracked = int(untracked)
	res.Total = res.Tracked + res.Untracked

	if err := s.deps.Config.SetConfig(ctx, map[string]string{
		settings.KeyLastCleanRun: s.now().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("store last clean run: %w", err)
	}

	res.ExecutionTime = s.now().Sub(start)
	stats.DiscountsCleaned(res.Total)
	s.deps.Recorder.RecordQuietly(ctx, types.OperationRecord{
		Operation:     types.OperationClean,
		TotalProducts: res.Total,
		SuccessCount:  res.Total,
		ExecutionTime: res.ExecutionTime,
		InitiatedBy:   initiator,
	})

	s.logger.Info().
		Int("tracked", res.Tracked).
		Int("untracked", res.Untracked).
		Msg("Cleaned expired discounts")
	return res, nil
}
