package settings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// Global is the typed form of the config table as the admin edits it.
// Unlike Settings no defaults are applied here.
type Global struct {
	DiscountStrategy      types.DiscountStrategy    `json:"discountStrategy" jsonschema:"enum=margin,enum=discount,enum=both"`
	MinMarginPercent      float64                   `json:"minMarginPercent" jsonschema:"minimum=0,maximum=100"`
	MaxDiscountPercent    float64                   `json:"maxDiscountPercent" jsonschema:"minimum=0,maximum=100"`
	MinDiscountPercent    float64                   `json:"minDiscountPercent" jsonschema:"minimum=0,maximum=100"`
	PriceUnderbid         float64                   `json:"priceUnderbid" jsonschema:"minimum=0"`
	MinPriceThreshold     float64                   `json:"minPriceThreshold" jsonschema:"minimum=0"`
	MaxDiscountBehavior   types.MaxDiscountBehavior `json:"maxDiscountBehavior" jsonschema:"enum=skip,enum=partial"`
	DiscountDaysValid     int                       `json:"discountDaysValid" jsonschema:"minimum=1"`
	CustomerGroups        []int64                   `json:"customerGroups"`
	ExcludedCategories    []int64                   `json:"excludedCategories"`
	ExcludedManufacturers []int64                   `json:"excludedManufacturers"`
	ExcludedReferences    []string                  `json:"excludedReferences"`
	CleanExpiredDiscounts bool                      `json:"cleanExpiredDiscounts"`
	NotificationThreshold float64                   `json:"notificationThreshold"`
	CronToken             string                    `json:"cronToken"`
	LastCleanRun          *time.Time                `json:"lastCleanRun,omitempty"`
}

// ValidationError reports an invalid settings field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigWriter persists config values
type ConfigWriter interface {
	SetConfig(ctx context.Context, values map[string]string) error
}

// ParseGlobal reads raw config values without applying defaults
func ParseGlobal(values map[string]string) Global {
	g := Global{
		DiscountStrategy:      types.DiscountStrategy(values[KeyDiscountStrategy]),
		MaxDiscountBehavior:   types.MaxDiscountBehavior(values[KeyMaxDiscountBehavior]),
		CustomerGroups:        parseIDSet(values[KeyCustomerGroups]),
		ExcludedCategories:    parseIDSet(values[KeyExcludedCategories]),
		ExcludedManufacturers: parseIDSet(values[KeyExcludedManufacturers]),
		ExcludedReferences:    ParseReferencePatterns(values[KeyExcludedReferences]),
		CronToken:             values[KeyCronToken],
	}
	g.MinMarginPercent, _ = parseFloat(values, KeyMinMarginPercent)
	g.MaxDiscountPercent, _ = parseFloat(values, KeyMaxDiscountPercent)
	g.MinDiscountPercent, _ = parseFloat(values, KeyMinDiscountPercent)
	g.PriceUnderbid, _ = parseFloat(values, KeyPriceUnderbid)
	g.MinPriceThreshold, _ = parseFloat(values, KeyMinPriceThreshold)
	g.NotificationThreshold, _ = parseFloat(values, KeyNotificationThreshold)
	days, _ := parseFloat(values, KeyDiscountDaysValid)
	g.DiscountDaysValid = int(days)
	g.CleanExpiredDiscounts = isTruthy(values[KeyCleanExpiredDiscounts])

	if v := values[KeyLastCleanRun]; v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			g.LastCleanRun = &t
		}
	}
	return g
}

// Values renders g as config table rows. LastCleanRun is owned by the cleaner
// and is not written here.
func (g Global) Values() map[string]string {
	clean := "0"
	if g.CleanExpiredDiscounts {
		clean = "1"
	}
	return map[string]string{
		KeyDiscountStrategy:      string(g.DiscountStrategy),
		KeyMinMarginPercent:      formatFloat(g.MinMarginPercent),
		KeyMaxDiscountPercent:    formatFloat(g.MaxDiscountPercent),
		KeyMinDiscountPercent:    formatFloat(g.MinDiscountPercent),
		KeyPriceUnderbid:         formatFloat(g.PriceUnderbid),
		KeyMinPriceThreshold:     formatFloat(g.MinPriceThreshold),
		KeyMaxDiscountBehavior:   string(g.MaxDiscountBehavior),
		KeyDiscountDaysValid:     strconv.Itoa(g.DiscountDaysValid),
		KeyCustomerGroups:        EncodeIDSet(g.CustomerGroups),
		KeyExcludedCategories:    EncodeIDSet(g.ExcludedCategories),
		KeyExcludedManufacturers: EncodeIDSet(g.ExcludedManufacturers),
		KeyExcludedReferences:    strings.Join(g.ExcludedReferences, "\n"),
		KeyCleanExpiredDiscounts: clean,
		KeyNotificationThreshold: formatFloat(g.NotificationThreshold),
		KeyCronToken:             g.CronToken,
	}
}

// ValidateGlobal checks the ranges enforced when settings are saved
func ValidateGlobal(g Global) error {
	switch {
	case strings.TrimSpace(g.CronToken) == "":
		return &ValidationError{Field: KeyCronToken, Message: "cron token is required"}
	case g.MinMarginPercent < 0 || g.MinMarginPercent > 100:
		return &ValidationError{Field: KeyMinMarginPercent, Message: "must be between 0 and 100"}
	case g.MaxDiscountPercent < 0 || g.MaxDiscountPercent > 100:
		return &ValidationError{Field: KeyMaxDiscountPercent, Message: "must be between 0 and 100"}
	case g.MinDiscountPercent < 0 || g.MinDiscountPercent > 100:
		return &ValidationError{Field: KeyMinDiscountPercent, Message: "must be between 0 and 100"}
	case g.PriceUnderbid < 0:
		return &ValidationError{Field: KeyPriceUnderbid, Message: "cannot be negative"}
	case g.MinPriceThreshold < 0:
		return &ValidationError{Field: KeyMinPriceThreshold, Message: "cannot be negative"}
	case g.DiscountDaysValid < 1:
		return &ValidationError{Field: KeyDiscountDaysValid, Message: "must be at least 1 day"}
	case g.DiscountStrategy != "" && !g.DiscountStrategy.Valid():
		return &ValidationError{Field: KeyDiscountStrategy, Message: "must be margin, discount or both"}
	case g.MaxDiscountBehavior != "" && g.MaxDiscountBehavior != types.BehaviorSkip && g.MaxDiscountBehavior != types.BehaviorPartial:
		return &ValidationError{Field: KeyMaxDiscountBehavior, Message: "must be skip or partial"}
	}
	return nil
}

// SaveGlobal validates g and writes every key
func SaveGlobal(ctx context.Context, w ConfigWriter, g Global) error {
	if err := ValidateGlobal(g); err != nil {
		return err
	}
	if err := w.SetConfig(ctx, g.Values()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateToken returns a random 32 character alphanumeric cron token
func GenerateToken() (string, error) {
	var sb strings.Builder
	sb.Grow(32)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < 32; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		sb.WriteByte(tokenAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// RotateToken generates and stores a new cron token
func RotateToken(ctx context.Context, w ConfigWriter) (string, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := w.SetConfig(ctx, map[string]string{KeyCronToken: token}); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// InstallDefaults returns the rows seeded into an empty config table,
// including a freshly generated cron token
func InstallDefaults() (map[string]string, error) {
	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyCronToken:             token,
		KeyNotificationThreshold: "15",
		KeyMaxDiscountBehavior:   string(DefaultMaxDiscountBehavior),
		KeyDiscountDaysValid:     strconv.Itoa(DefaultDiscountDaysValid),
		KeyMinPriceThreshold:     formatFloat(DefaultMinPriceThreshold),
		KeyPriceUnderbid:         formatFloat(DefaultPriceUnderbid),
		KeyMaxDiscountPercent:    formatFloat(DefaultMaxDiscountPercent),
		KeyMinMarginPercent:      formatFloat(DefaultMinMarginPercent),
		KeyDiscountStrategy:      string(DefaultStrategy),
		KeyMinDiscountPercent:    formatFloat(DefaultMinDiscountPercent),
	}, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
