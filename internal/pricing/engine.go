package pricing

import (
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Reason explains a skip or rejection
type Reason string

const (
	ReasonAlreadyCompetitive  Reason = "already_competitive"
	ReasonMarginViolated      Reason = "margin_violated"
	ReasonMaxDiscountExceeded Reason = "max_discount_exceeded"
	ReasonBelowMinDiscount    Reason = "below_min_discount"
)

// Input holds the prices for one product. CompetitorPriceRaw includes tax.
type Input struct {
	CurrentPrice       float64
	WholesalePrice     float64
	CompetitorPriceRaw float64
	TaxRatePercent     float64
}

// Decision is either Apply with the computed figures or a skip with a Reason.
// CompetitorPriceExclTax and CurrentMargin are always filled in.
type Decision struct {
	Apply                  bool
	Reason                 Reason
	Capped                 bool
	NewPrice               float64
	NewMargin              float64
	DiscountPercent        float64
	CurrentMargin          float64
	CompetitorPriceExclTax float64
}

// ExcludeTax removes a percentage tax from a gross price
func ExcludeTax(raw, taxRatePercent float64) float64 {
	return raw / (1 + taxRatePercent/100)
}

// Margin returns (price-wholesale)/price*100, or 0 when wholesale is unknown
func Margin(price, wholesale float64) float64 {
	if wholesale <= 0 || price == 0 {
		return 0
	}
	return (price - wholesale) / price * 100
}

// DiscountPercent returns how far newPrice is below current, in percent
func DiscountPercent(current, newPrice float64) float64 {
	if current == 0 {
		return 0
	}
	return (current - newPrice) / current * 100
}

// Price computes the candidate price for one product.
// Strategy is not consulted here; see ValidateForUpdate.
func Price(in Input, s settings.Settings) Decision {
	excl := ExcludeTax(in.CompetitorPriceRaw, in.TaxRatePercent)
	d := Decision{
		CompetitorPriceExclTax: excl,
		CurrentMargin:          Margin(in.CurrentPrice, in.WholesalePrice),
	}

	if in.CurrentPrice <= excl {
		d.Reason = ReasonAlreadyCompetitive
		return d
	}

	newPrice := excl
	if s.PriceUnderbid > 0 && excl-s.PriceUnderbid > 0 {
		newPrice = excl - s.PriceUnderbid
	}

	d.NewPrice = newPrice
	d.NewMargin = Margin(newPrice, in.WholesalePrice)
	d.DiscountPercent = DiscountPercent(in.CurrentPrice, newPrice)

	if d.NewMargin < s.MinMarginPercent {
		d.Reason = ReasonMarginViolated
		return d
	}

	if d.DiscountPercent > s.MaxDiscountPercent {
		if s.MaxDiscountBehavior == types.BehaviorSkip {
			d.Reason = ReasonMaxDiscountExceeded
			return d
		}
		d.NewPrice = in.CurrentPrice * (1 - s.MaxDiscountPercent/100)
		d.DiscountPercent = s.MaxDiscountPercent
		d.NewMargin = Margin(d.NewPrice, in.WholesalePrice)
		d.Capped = true
	}

	d.Apply = true
	return d
}

// ValidateForUpdate re-checks a staged match against current settings before
// it is promoted. The minimum discount always applies; the strategy picks
// which of the margin floor and discount ceiling apply as well.
func ValidateForUpdate(m *types.PriceMatch, s settings.Settings) (Reason, bool) {
	if m.DiscountPercent < s.MinDiscountPercent {
		return ReasonBelowMinDiscount, false
	}

	checkMargin := s.Strategy == types.StrategyMargin || s.Strategy == types.StrategyBoth
	checkDiscount := s.Strategy == types.StrategyDiscount || s.Strategy == types.StrategyBoth

	if checkMargin && m.NewMargin < s.MinMarginPercent {
		return ReasonMarginViolated, false
	}
	if checkDiscount && m.DiscountPercent > s.MaxDiscountPercent {
		return ReasonMaxDiscountExceeded, false
	}
	return "", true
}
