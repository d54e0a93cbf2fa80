package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

func defaultSettings() settings.Settings {
	return settings.Settings{
		Strategy:            types.StrategyMargin,
		MinMarginPercent:    30,
		MaxDiscountPercent:  24,
		MinDiscountPercent:  5,
		PriceUnderbid:       5,
		MinPriceThreshold:   100,
		MaxDiscountBehavior: types.BehaviorPartial,
		DiscountDaysValid:   2,
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name            string
		in              Input
		mutate          func(s *settings.Settings)
		apply           bool
		reason          Reason
		newPrice        float64
		newMargin       float64
		discountPercent float64
		excl            float64
	}{
		{
			name:   "underbid breaks margin floor",
			in:     Input{CurrentPrice: 100, WholesalePrice: 50, CompetitorPriceRaw: 90, TaxRatePercent: 20},
			reason: ReasonMarginViolated, newPrice: 70, newMargin: 28.5714, discountPercent: 30, excl: 75,
		},
		{
			name:  "partial cap",
			in:    Input{CurrentPrice: 100, WholesalePrice: 40, CompetitorPriceRaw: 80},
			apply: true, newPrice: 76, newMargin: 47.3684, discountPercent: 24, excl: 80,
		},
		{
			name:   "cap with skip behavior",
			in:     Input{CurrentPrice: 100, WholesalePrice: 40, CompetitorPriceRaw: 80},
			mutate: func(s *settings.Settings) { s.MaxDiscountBehavior = types.BehaviorSkip },
			reason: ReasonMaxDiscountExceeded, newPrice: 75, newMargin: 46.6667, discountPercent: 25, excl: 80,
		},
		{
			name:   "already cheaper",
			in:     Input{CurrentPrice: 70, WholesalePrice: 40, CompetitorPriceRaw: 90, TaxRatePercent: 20},
			reason: ReasonAlreadyCompetitive, excl: 75,
		},
		{
			name:   "equal price is already competitive",
			in:     Input{CurrentPrice: 75, WholesalePrice: 40, CompetitorPriceRaw: 90, TaxRatePercent: 20},
			reason: ReasonAlreadyCompetitive, excl: 75,
		},
		{
			name:  "within limits applies underbid",
			in:    Input{CurrentPrice: 100, WholesalePrice: 40, CompetitorPriceRaw: 102.5, TaxRatePercent: 25},
			apply: true, newPrice: 77, newMargin: 48.0519, discountPercent: 23, excl: 82,
		},
		{
			name:   "zero underbid matches competitor",
			in:     Input{CurrentPrice: 100, WholesalePrice: 40, CompetitorPriceRaw: 90},
			mutate: func(s *settings.Settings) { s.PriceUnderbid = 0 },
			apply:  true, newPrice: 90, newMargin: 55.5556, discountPercent: 10, excl: 90,
		},
		{
			name: "underbid larger than competitor price is not applied",
			in:   Input{CurrentPrice: 10, WholesalePrice: 1, CompetitorPriceRaw: 3},
			mutate: func(s *settings.Settings) {
				s.MaxDiscountPercent = 80
			},
			apply: true, newPrice: 3, newMargin: 66.6667, discountPercent: 70, excl: 3,
		},
		{
			name:   "unknown wholesale gives zero margin",
			in:     Input{CurrentPrice: 200, CompetitorPriceRaw: 190},
			reason: ReasonMarginViolated, newPrice: 185, newMargin: 0, discountPercent: 7.5, excl: 190,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSettings()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			d := Price(tt.in, s)

			assert.Equal(t, tt.apply, d.Apply)
			assert.Equal(t, tt.reason, d.Reason)
			assert.InDelta(t, tt.excl, d.CompetitorPriceExclTax, 0.0001)
			if tt.reason == ReasonAlreadyCompetitive {
				return
			}
			assert.InDelta(t, tt.newPrice, d.NewPrice, 0.0001)
			assert.InDelta(t, tt.newMargin, d.NewMargin, 0.0001)
			assert.InDelta(t, tt.discountPercent, d.DiscountPercent, 0.0001)
		})
	}
}

func TestPriceApplyBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	behaviors := []types.MaxDiscountBehavior{types.BehaviorSkip, types.BehaviorPartial}

	for i := 0; i < 5000; i++ {
		s := defaultSettings()
		s.MinMarginPercent = rng.Float64() * 50
		s.MaxDiscountPercent = 1 + rng.Float64()*60
		s.PriceUnderbid = rng.Float64() * 20
		s.MaxDiscountBehavior = behaviors[rng.Intn(2)]

		in := Input{
			CurrentPrice:       1 + rng.Float64()*1000,
			WholesalePrice:     rng.Float64() * 600,
			CompetitorPriceRaw: 1 + rng.Float64()*1200,
			TaxRatePercent:     []float64{0, 6, 12, 25}[rng.Intn(4)],
		}
		d := Price(in, s)

		if in.CurrentPrice <= d.CompetitorPriceExclTax {
			assert.False(t, d.Apply)
			assert.Equal(t, ReasonAlreadyCompetitive, d.Reason)
		}
		if d.Apply {
			assert.Less(t, d.NewPrice, in.CurrentPrice)
			assert.GreaterOrEqual(t, d.DiscountPercent, 0.0)
			assert.LessOrEqual(t, d.DiscountPercent, s.MaxDiscountPercent+1e-9)
		}
	}
}

func TestValidateForUpdate(t *testing.T) {
	tests := []struct {
		name     string
		strategy types.DiscountStrategy
		discount float64
		margin   float64
		accepted bool
		reason   Reason
	}{
		{"below min discount always rejected", types.StrategyDiscount, 4.9, 60, false, ReasonBelowMinDiscount},
		{"margin strategy accepts high discount", types.StrategyMargin, 40, 35, true, ""},
		{"margin strategy rejects low margin", types.StrategyMargin, 10, 29, false, ReasonMarginViolated},
		{"discount strategy ignores margin", types.StrategyDiscount, 10, 5, true, ""},
		{"discount strategy rejects above max", types.StrategyDiscount, 25, 50, false, ReasonMaxDiscountExceeded},
		{"both requires margin", types.StrategyBoth, 10, 20, false, ReasonMarginViolated},
		{"both requires discount", types.StrategyBoth, 30, 50, false, ReasonMaxDiscountExceeded},
		{"both accepts within limits", types.StrategyBoth, 24, 30, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSettings()
			s.Strategy = tt.strategy
			m := &types.PriceMatch{DiscountPercent: tt.discount, NewMargin: tt.margin}

			reason, ok := ValidateForUpdate(m, s)
			assert.Equal(t, tt.accepted, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.InDelta(t, 75.0, ExcludeTax(90, 20), 1e-9)
	assert.Equal(t, 0.0, Margin(100, 0))
	assert.Equal(t, 0.0, Margin(0, 10))
	assert.InDelta(t, -25.0, Margin(80, 100), 1e-9)
	assert.Equal(t, 0.0, DiscountPercent(0, 10))
	assert.InDelta(t, 20.0, DiscountPercent(100, 80), 1e-9)
}
