package settings

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// Config table keys
const (
	KeyDiscountStrategy      = "discount_strategy"
	KeyMinMarginPercent      = "min_margin_percent"
	KeyMaxDiscountPercent    = "max_discount_percent"
	KeyMinDiscountPercent    = "min_discount_percent"
	KeyPriceUnderbid         = "price_underbid"
	KeyMinPriceThreshold     = "min_price_threshold"
	KeyMaxDiscountBehavior   = "max_discount_behavior"
	KeyDiscountDaysValid     = "discount_days_valid"
	KeyCustomerGroups        = "discount_customer_groups"
	KeyExcludedCategories    = "excluded_categories"
	KeyExcludedManufacturers = "excluded_manufacturers"
	KeyExcludedReferences    = "excluded_references"
	KeyCleanExpiredDiscounts = "clean_expired_discounts"
	KeyCronToken             = "cron_token"
	KeyLastCleanRun          = "last_clean_run"
	KeyNotificationThreshold = "notification_threshold"
)

// Defaults applied when a value is absent or out of range
const (
	DefaultMaxDiscountPercent  = 24.0
	DefaultMinMarginPercent    = 30.0
	DefaultMinPriceThreshold   = 100.0
	DefaultPriceUnderbid       = 5.0
	DefaultMinDiscountPercent  = 5.0
	DefaultDiscountDaysValid   = 2
	DefaultMaxDiscountBehavior = types.BehaviorPartial
	DefaultStrategy            = types.StrategyMargin
)

// Settings is the effective, resolved configuration for one competitor run
type Settings struct {
	Strategy              types.DiscountStrategy    `json:"strategy"`
	MinMarginPercent      float64                   `json:"minMarginPercent"`
	MaxDiscountPercent    float64                   `json:"maxDiscountPercent"`
	MinDiscountPercent    float64                   `json:"minDiscountPercent"`
	PriceUnderbid         float64                   `json:"priceUnderbid"`
	MinPriceThreshold     float64                   `json:"minPriceThreshold"`
	MaxDiscountBehavior   types.MaxDiscountBehavior `json:"maxDiscountBehavior"`
	DiscountDaysValid     int                       `json:"discountDaysValid"`
	CustomerGroups        []int64                   `json:"customerGroups"`
	ExcludedCategories    []int64                   `json:"excludedCategories"`
	ExcludedManufacturers []int64                   `json:"excludedManufacturers"`
	ExcludedReferences    []string                  `json:"excludedReferences"`
}

// Merge builds effective settings from raw config values and an optional competitor.
// Competitor values win per field only when OverrideDiscountSettings is set.
func Merge(values map[string]string, competitor *types.Competitor) Settings {
	raw := make(map[string]string, len(values))
	for k, v := range values {
		raw[k] = v
	}

	if competitor != nil && competitor.OverrideDiscountSettings {
		if competitor.DiscountStrategy != nil {
			raw[KeyDiscountStrategy] = *competitor.DiscountStrategy
		}
		if competitor.MinMarginPercent != nil {
			raw[KeyMinMarginPercent] = formatFloat(*competitor.MinMarginPercent)
		}
		if competitor.MaxDiscountPercent != nil {
			raw[KeyMaxDiscountPercent] = formatFloat(*competitor.MaxDiscountPercent)
		}
		if competitor.PriceUnderbid != nil {
			raw[KeyPriceUnderbid] = formatFloat(*competitor.PriceUnderbid)
		}
		if competitor.MinPriceThreshold != nil {
			raw[KeyMinPriceThreshold] = formatFloat(*competitor.MinPriceThreshold)
		}
		if competitor.DiscountDaysValid != nil {
			raw[KeyDiscountDaysValid] = strconv.Itoa(*competitor.DiscountDaysValid)
		}
	}

	s := Settings{
		Strategy:              types.DiscountStrategy(strings.TrimSpace(raw[KeyDiscountStrategy])),
		MinMarginPercent:      positiveOr(raw, KeyMinMarginPercent, DefaultMinMarginPercent),
		MaxDiscountPercent:    positiveOr(raw, KeyMaxDiscountPercent, DefaultMaxDiscountPercent),
		MinDiscountPercent:    positiveOr(raw, KeyMinDiscountPercent, DefaultMinDiscountPercent),
		MinPriceThreshold:     positiveOr(raw, KeyMinPriceThreshold, DefaultMinPriceThreshold),
		MaxDiscountBehavior:   types.MaxDiscountBehavior(strings.TrimSpace(raw[KeyMaxDiscountBehavior])),
		DiscountDaysValid:     int(positiveOr(raw, KeyDiscountDaysValid, DefaultDiscountDaysValid)),
		CustomerGroups:        parseIDSet(raw[KeyCustomerGroups]),
		ExcludedCategories:    parseIDSet(raw[KeyExcludedCategories]),
		ExcludedManufacturers: parseIDSet(raw[KeyExcludedManufacturers]),
		ExcludedReferences:    ParseReferencePatterns(raw[KeyExcludedReferences]),
	}

	// zero is a valid underbid, only absent or negative falls back
	s.PriceUnderbid = DefaultPriceUnderbid
	if v, ok := parseFloat(raw, KeyPriceUnderbid); ok && v >= 0 {
		s.PriceUnderbid = v
	}

	if !s.Strategy.Valid() {
		s.Strategy = DefaultStrategy
	}
	if s.MaxDiscountBehavior != types.BehaviorSkip && s.MaxDiscountBehavior != types.BehaviorPartial {
		s.MaxDiscountBehavior = DefaultMaxDiscountBehavior
	}
	if len(s.CustomerGroups) == 0 {
		s.CustomerGroups = []int64{1}
	}

	return s
}

// ParseReferencePatterns splits a newline separated pattern list, trimming entries
func ParseReferencePatterns(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")

	var patterns []string
	for _, line := range strings.Split(value, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// parseIDSet decodes a JSON array of ids. Values may be numbers or numeric strings;
// anything unparseable yields an empty set.
func parseIDSet(value string) []int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var n json.Number
		var s string
		switch {
		case json.Unmarshal(item, &n) == nil:
			if id, err := n.Int64(); err == nil {
				ids = append(ids, id)
			}
		case json.Unmarshal(item, &s) == nil:
			if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func parseFloat(raw map[string]string, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func positiveOr(raw map[string]string, key string, def float64) float64 {
	if v, ok := parseFloat(raw, key); ok && v > 0 {
		return v
	}
	return def
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EncodeIDSet renders ids the way they are stored in the config table
func EncodeIDSet(ids []int64) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}
