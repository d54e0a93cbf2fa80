package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpricematcher/price-matcher/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestMergeDefaults(t *testing.T) {
	s := Merge(map[string]string{}, nil)

	assert.Equal(t, types.StrategyMargin, s.Strategy)
	assert.Equal(t, 30.0, s.MinMarginPercent)
	assert.Equal(t, 24.0, s.MaxDiscountPercent)
	assert.Equal(t, 5.0, s.MinDiscountPercent)
	assert.Equal(t, 5.0, s.PriceUnderbid)
	assert.Equal(t, 100.0, s.MinPriceThreshold)
	assert.Equal(t, types.BehaviorPartial, s.MaxDiscountBehavior)
	assert.Equal(t, 2, s.DiscountDaysValid)
	assert.Equal(t, []int64{1}, s.CustomerGroups)
	assert.Empty(t, s.ExcludedCategories)
	assert.Empty(t, s.ExcludedManufacturers)
	assert.Empty(t, s.ExcludedReferences)
}

func TestMergeGlobalValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		check  func(t *testing.T, s Settings)
	}{
		{
			"non-positive margin falls back",
			map[string]string{KeyMinMarginPercent: "0"},
			func(t *testing.T, s Settings) { assert.Equal(t, 30.0, s.MinMarginPercent) },
		},
		{
			"zero underbid is kept",
			map[string]string{KeyPriceUnderbid: "0"},
			func(t *testing.T, s Settings) { assert.Equal(t, 0.0, s.PriceUnderbid) },
		},
		{
			"negative underbid falls back",
			map[string]string{KeyPriceUnderbid: "-3"},
			func(t *testing.T, s Settings) { assert.Equal(t, 5.0, s.PriceUnderbid) },
		},
		{
			"unknown strategy falls back to margin",
			map[string]string{KeyDiscountStrategy: "aggressive"},
			func(t *testing.T, s Settings) { assert.Equal(t, types.StrategyMargin, s.Strategy) },
		},
		{
			"unknown behavior falls back to partial",
			map[string]string{KeyMaxDiscountBehavior: "cap"},
			func(t *testing.T, s Settings) { assert.Equal(t, types.BehaviorPartial, s.MaxDiscountBehavior) },
		},
		{
			"skip behavior is kept",
			map[string]string{KeyMaxDiscountBehavior: "skip"},
			func(t *testing.T, s Settings) { assert.Equal(t, types.BehaviorSkip, s.MaxDiscountBehavior) },
		},
		{
			"json sets with strings and numbers",
			map[string]string{
				KeyCustomerGroups:        `["3", 4]`,
				KeyExcludedCategories:    `[10,11]`,
				KeyExcludedManufacturers: `["7"]`,
			},
			func(t *testing.T, s Settings) {
				assert.Equal(t, []int64{3, 4}, s.CustomerGroups)
				assert.Equal(t, []int64{10, 11}, s.ExcludedCategories)
				assert.Equal(t, []int64{7}, s.ExcludedManufacturers)
			},
		},
		{
			"invalid json yields empty sets and default group",
			map[string]string{
				KeyCustomerGroups:     `not json`,
				KeyExcludedCategories: `{"a":1}`,
			},
			func(t *testing.T, s Settings) {
				assert.Equal(t, []int64{1}, s.CustomerGroups)
				assert.Empty(t, s.ExcludedCategories)
			},
		},
		{
			"reference patterns split on any newline",
			map[string]string{KeyExcludedReferences: " SPECIAL-*\r\nABC-1\rXYZ\n\n  "},
			func(t *testing.T, s Settings) {
				assert.Equal(t, []string{"SPECIAL-*", "ABC-1", "XYZ"}, s.ExcludedReferences)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Merge(tt.values, nil))
		})
	}
}

func TestMergeCompetitorOverride(t *testing.T) {
	global := map[string]string{
		KeyDiscountStrategy:   "margin",
		KeyMinMarginPercent:   "30",
		KeyMaxDiscountPercent: "24",
		KeyPriceUnderbid:      "5",
		KeyMinPriceThreshold:  "100",
		KeyDiscountDaysValid:  "2",
	}
	competitor := &types.Competitor{
		ID:                 1,
		DiscountStrategy:   ptr("both"),
		MinMarginPercent:   ptr(20.0),
		MaxDiscountPercent: ptr(40.0),
		PriceUnderbid:      ptr(1.0),
		DiscountDaysValid:  ptr(7),
	}

	t.Run("override flag off keeps global", func(t *testing.T) {
		s := Merge(global, competitor)
		assert.Equal(t, types.StrategyMargin, s.Strategy)
		assert.Equal(t, 30.0, s.MinMarginPercent)
		assert.Equal(t, 2, s.DiscountDaysValid)
	})

	t.Run("override flag on replaces present fields only", func(t *testing.T) {
		c := *competitor
		c.OverrideDiscountSettings = true
		s := Merge(global, &c)
		assert.Equal(t, types.StrategyBoth, s.Strategy)
		assert.Equal(t, 20.0, s.MinMarginPercent)
		assert.Equal(t, 40.0, s.MaxDiscountPercent)
		assert.Equal(t, 1.0, s.PriceUnderbid)
		assert.Equal(t, 7, s.DiscountDaysValid)
		// not overridden
		assert.Equal(t, 100.0, s.MinPriceThreshold)
	})

	t.Run("merge does not mutate the input map", func(t *testing.T) {
		c := *competitor
		c.OverrideDiscountSettings = true
		Merge(global, &c)
		assert.Equal(t, "30", global[KeyMinMarginPercent])
	})
}

type stubConfig struct {
	values map[string]string
	err    error
	saved  map[string]string
}

func (s *stubConfig) GetConfig(ctx context.Context) (map[string]string, error) {
	return s.values, s.err
}

func (s *stubConfig) SetConfig(ctx context.Context, values map[string]string) error {
	if s.err != nil {
		return s.err
	}
	s.saved = values
	return nil
}

type stubCompetitors map[int64]*types.Competitor

var errNoCompetitor = errors.New("competitor not found")

func (s stubCompetitors) GetCompetitor(ctx context.Context, id int64) (*types.Competitor, error) {
	c, ok := s[id]
	if !ok {
		return nil, errNoCompetitor
	}
	return c, nil
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	cfg := &stubConfig{values: map[string]string{KeyMinMarginPercent: "25"}}
	competitors := stubCompetitors{
		1: {ID: 1, OverrideDiscountSettings: true, MinMarginPercent: ptr(12.0)},
		2: {ID: 2},
	}
	r := NewResolver(cfg, competitors)

	s, err := r.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12.0, s.MinMarginPercent)

	s, err = r.Resolve(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.MinMarginPercent)

	_, err = r.Resolve(ctx, 99)
	assert.ErrorIs(t, err, errNoCompetitor)

	cfg.err = errors.New("db down")
	_, err = r.ResolveFor(ctx, nil)
	assert.Error(t, err)
}

func validGlobal() Global {
	return Global{
		DiscountStrategy:    types.StrategyBoth,
		MinMarginPercent:    30,
		MaxDiscountPercent:  24,
		MinDiscountPercent:  5,
		PriceUnderbid:       5,
		MinPriceThreshold:   100,
		MaxDiscountBehavior: types.BehaviorPartial,
		DiscountDaysValid:   2,
		CronToken:           "token",
	}
}

func TestValidateGlobal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Global)
		field  string
	}{
		{"valid", func(g *Global) {}, ""},
		{"missing token", func(g *Global) { g.CronToken = "  " }, KeyCronToken},
		{"margin above 100", func(g *Global) { g.MinMarginPercent = 101 }, KeyMinMarginPercent},
		{"negative max discount", func(g *Global) { g.MaxDiscountPercent = -1 }, KeyMaxDiscountPercent},
		{"min discount above 100", func(g *Global) { g.MinDiscountPercent = 150 }, KeyMinDiscountPercent},
		{"negative underbid", func(g *Global) { g.PriceUnderbid = -0.5 }, KeyPriceUnderbid},
		{"negative min price", func(g *Global) { g.MinPriceThreshold = -1 }, KeyMinPriceThreshold},
		{"zero days", func(g *Global) { g.DiscountDaysValid = 0 }, KeyDiscountDaysValid},
		{"bad strategy", func(g *Global) { g.DiscountStrategy = "cheap" }, KeyDiscountStrategy},
		{"bad behavior", func(g *Global) { g.MaxDiscountBehavior = "cap" }, KeyMaxDiscountBehavior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGlobal()
			tt.mutate(&g)
			err := ValidateGlobal(g)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSaveGlobalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &stubConfig{}

	g := validGlobal()
	g.CustomerGroups = []int64{1, 3}
	g.ExcludedReferences = []string{"SPECIAL-*", "X1"}
	g.CleanExpiredDiscounts = true
	require.NoError(t, SaveGlobal(ctx, store, g))

	parsed := ParseGlobal(store.saved)
	assert.Equal(t, g.CustomerGroups, parsed.CustomerGroups)
	assert.Equal(t, g.ExcludedReferences, parsed.ExcludedReferences)
	assert.True(t, parsed.CleanExpiredDiscounts)
	assert.Equal(t, g.DiscountDaysValid, parsed.DiscountDaysValid)

	bad := validGlobal()
	bad.DiscountDaysValid = 0
	assert.Error(t, SaveGlobal(ctx, &stubConfig{}, bad))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Regexp(t, `^[A-Za-z0-9]{32}$`, a)
	assert.NotEqual(t, a, b)
}

func TestInstallDefaults(t *testing.T) {
	values, err := InstallDefaults()
	require.NoError(t, err)
	assert.Len(t, values[KeyCronToken], 32)
	assert.Equal(t, "15", values[KeyNotificationThreshold])

	s := Merge(values, nil)
	assert.Equal(t, DefaultStrategy, s.Strategy)
	assert.Equal(t, DefaultMaxDiscountPercent, s.MaxDiscountPercent)
	assert.Equal(t, DefaultDiscountDaysValid, s.DiscountDaysValid)

	assert.NoError(t, ValidateGlobal(ParseGlobal(values)))
}

func TestRotateToken(t *testing.T) {
	store := &stubConfig{}
	token, err := RotateToken(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, token, store.saved[KeyCronToken])
}
