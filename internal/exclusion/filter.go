package exclusion

import (
	"regexp"
	"strings"

	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Reason explains why a product is excluded
type Reason string

const (
	ReasonInactive             Reason = "inactive"
	ReasonExcludedReference    Reason = "excluded_reference"
	ReasonExcludedManufacturer Reason = "excluded_manufacturer"
	ReasonExcludedCategory     Reason = "excluded_category"
	ReasonBelowMinPrice        Reason = "below_min_price"
)

type pattern struct {
	exact string
	re    *regexp.Regexp
}

func (p pattern) match(reference string) bool {
	if p.re != nil {
		return p.re.MatchString(reference)
	}
	return strings.EqualFold(p.exact, reference)
}

// Filter decides whether a product is excluded from price matching
type Filter struct {
	patterns      []pattern
	manufacturers map[int64]struct{}
	categories    map[int64]struct{}
	minPrice      float64
}

// New compiles the exclusion rules of s
func New(s settings.Settings) *Filter {
	f := &Filter{
		manufacturers: toSet(s.ExcludedManufacturers),
		categories:    toSet(s.ExcludedCategories),
		minPrice:      s.MinPriceThreshold,
	}
	for _, p := range s.ExcludedReferences {
		f.patterns = append(f.patterns, compile(p))
	}
	return f
}

// compile turns "ABC-*" into an anchored case-insensitive regex; patterns
// without a wildcard compare exactly, ignoring case
func compile(p string) pattern {
	if !strings.Contains(p, "*") {
		return pattern{exact: p}
	}
	parts := strings.Split(p, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return pattern{re: regexp.MustCompile("(?i)^" + strings.Join(parts, ".*") + "$")}
}

// ReferenceExcluded reports whether reference matches an excluded pattern
func (f *Filter) ReferenceExcluded(reference string) bool {
	if reference == "" {
		return false
	}
	for _, p := range f.patterns {
		if p.match(reference) {
			return true
		}
	}
	return false
}

// ShouldSkip checks a resolved product in order: inactive, excluded reference,
// excluded manufacturer, excluded category, price below threshold
func (f *Filter) ShouldSkip(p *types.Product) (Reason, bool) {
	if !p.Active {
		return ReasonInactive, true
	}
	if f.ReferenceExcluded(p.Reference) {
		return ReasonExcludedReference, true
	}
	if _, ok := f.manufacturers[p.ManufacturerID]; ok {
		return ReasonExcludedManufacturer, true
	}
	for _, c := range p.CategoryIDs {
		if _, ok := f.categories[c]; ok {
			return ReasonExcludedCategory, true
		}
	}
	if p.Price < f.minPrice {
		return ReasonBelowMinPrice, true
	}
	return "", false
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
