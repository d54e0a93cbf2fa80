package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/artpricematcher/price-matcher/internal/compare"
	"github.com/artpricematcher/price-matcher/internal/competitors"
	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	"github.com/artpricematcher/price-matcher/internal/runner"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

type fakeCompetitorService struct {
	rows map[int64]types.Competitor
}

func (f *fakeCompetitorService) List(ctx context.Context) ([]types.Competitor, error) {
	var out []types.Competitor
	for _, c := range f.rows {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCompetitorService) Get(ctx context.Context, id int64) (*types.Competitor, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", types.ErrCompetitorNotFound, id)
	}
	return &c, nil
}

func (f *fakeCompetitorService) Add(ctx context.Context, d competitors.Details) (*types.Competitor, error) {
	if err := competitors.ValidateName(d.Name); err != nil {
		return nil, err
	}
	for _, c := range f.rows {
		if strings.EqualFold(c.Name, d.Name) {
			return nil, types.ErrDuplicateName
		}
	}
	c := types.Competitor{ID: int64(len(f.rows) + 1), Name: d.Name, Active: true}
	f.rows[c.ID] = c
	return &c, nil
}

func (f *fakeCompetitorService) Update(ctx context.Context, id int64, d competitors.Details) (*types.Competitor, error) {
	c, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.URL = d.URL
	f.rows[id] = *c
	return c, nil
}

func (f *fakeCompetitorService) Toggle(ctx context.Context, id int64) (bool, error) {
	c, err := f.Get(ctx, id)
	if err != nil {
		return false, err
	}
	c.Active = !c.Active
	f.rows[id] = *c
	return c.Active, nil
}

func (f *fakeCompetitorService) Delete(ctx context.Context, id int64) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCompetitorService) UpdateSettings(ctx context.Context, id int64, o competitors.Overrides) (*types.Competitor, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	c, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.OverrideDiscountSettings = o.Enabled
	return c, nil
}

type fakeComparer struct {
	busy bool
	reqs []compare.RunRequest
}

func (f *fakeComparer) Run(ctx context.Context, req compare.RunRequest) (*compare.Stats, error) {
	f.reqs = append(f.reqs, req)
	if f.busy {
		return nil, types.ErrRunInProgress
	}
	return &compare.Stats{TotalProducts: 4, ProductsMatched: 1}, nil
}

func (f *fakeComparer) PriceDifferences(ctx context.Context, competitorID int64) ([]types.PriceMatch, error) {
	if competitorID != 1 {
		return nil, types.ErrCompetitorNotFound
	}
	return []types.PriceMatch{{ProductID: 42, Reference: "LAMP-X", NewPrice: 76}}, nil
}

type fakeUpdater struct{}

func (fakeUpdater) UpdatePrices(ctx context.Context, req discounts.UpdateRequest) (*discounts.UpdateResult, error) {
	return &discounts.UpdateResult{Competitor: "Rival", TotalChecked: 2, Updated: 2}, nil
}

func (fakeUpdater) UpdateAll(ctx context.Context, initiator types.Initiator) (*discounts.UpdateAllResult, error) {
	return &discounts.UpdateAllResult{TotalCompetitors: 1, Succeeded: 1}, nil
}

func (fakeUpdater) CleanExpired(ctx context.Context, initiator types.Initiator) (*discounts.CleanResult, error) {
	return &discounts.CleanResult{Tracked: 2, Total: 2}, nil
}

type namedSource struct{}

func (namedSource) Name() string { return "local" }

func (namedSource) Fetch(ctx context.Context, c *types.Competitor) (*feeds.Result, error) {
	return &feeds.Result{Path: "/feeds/x.csv"}, nil
}

type fakeSources struct{}

func (fakeSources) SourceFor(string) (feeds.Source, error) { return namedSource{}, nil }

type fakeAdmin struct {
	filters  []discounts.Filter
	extended []int
}

func (f *fakeAdmin) List(ctx context.Context, flt discounts.Filter) (*discounts.Page, error) {
	f.filters = append(f.filters, flt)
	items := []types.ActiveDiscountView{}
	if flt.Page <= 1 {
		items = append(items, types.ActiveDiscountView{ActiveDiscount: types.ActiveDiscount{ID: 7}, ProductName: "Desk Lamp"})
	}
	return &discounts.Page{Items: items, Total: 1, Page: flt.Page, Limit: flt.Limit}, nil
}

func (f *fakeAdmin) Remove(ctx context.Context, id int64) error {
	if id != 7 {
		return types.ErrDiscountNotFound
	}
	return nil
}

func (f *fakeAdmin) Extend(ctx context.Context, id int64, days int) (*types.ActiveDiscount, error) {
	f.extended = append(f.extended, days)
	return &types.ActiveDiscount{ID: id}, nil
}

type fakeStats struct{ days, limit int }

func (f *fakeStats) Summary(ctx context.Context, days int) ([]types.OperationSummary, error) {
	f.days = days
	return nil, nil
}

func (f *fakeStats) Recent(ctx context.Context, limit int) ([]types.OperationRecord, error) {
	f.limit = limit
	return []types.OperationRecord{{Operation: types.OperationCompare}}, nil
}

type memConfig struct{ values map[string]string }

func (m *memConfig) GetConfig(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memConfig) SetConfig(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

type fakeCron struct{ runs int }

func (f *fakeCron) VerifyToken(ctx context.Context, token string) error {
	if token != "s3cret" {
		return types.ErrInvalidToken
	}
	return nil
}

func (f *fakeCron) RunCron(ctx context.Context) (*runner.Report, error) {
	f.runs++
	return &runner.Report{}, nil
}

type testAPI struct {
	router   *gin.Engine
	comparer *fakeComparer
	admin    *fakeAdmin
	stats    *fakeStats
	config   *memConfig
	cron     *fakeCron
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cs := &fakeCompetitorService{rows: map[int64]types.Competitor{1: {ID: 1, Name: "Rival", Active: true}}}
	api := &testAPI{
		router:   gin.New(),
		comparer: &fakeComparer{},
		admin:    &fakeAdmin{},
		stats:    &fakeStats{},
		config:   &memConfig{values: map[string]string{settings.KeyCronToken: "s3cret", settings.KeyDiscountDaysValid: "3"}},
		cron:     &fakeCron{},
	}
	routes := &Routes{
		Ping:        func(ctx context.Context) error { return nil },
		Cron:        NewCronHandler(api.cron, nil),
		Competitors: NewCompetitorHandler(cs),
		Runs:        NewRunHandler(cs, api.comparer, fakeUpdater{}, fakeSources{}, nil),
		Discounts:   NewDiscountHandler(api.admin, api.comparer),
		Statistics:  NewStatisticsHandler(api.stats),
		Settings:    NewSettingsHandler(api.config),
	}
	routes.Register(api.router)
	return api
}

func (a *testAPI) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		ping   func(context.Context) error
		status int
		db     string
	}{
		{"connected", func(context.Context) error { return nil }, http.StatusOK, "connected"},
		{"down", func(context.Context) error { return errors.New("refused") }, http.StatusServiceUnavailable, "disconnected"},
		{"not configured", nil, http.StatusOK, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", HealthCheck(tt.ping))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.db, decode[HealthResponse](t, w).Database)
		})
	}
}

func TestCron(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/cron?token=wrong", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, api.cron.runs)

	w = api.do(http.MethodGet, "/cron?token=s3cret", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "No competitors configured for cron updates")
	assert.Equal(t, 1, api.cron.runs)
}

func TestCompetitorEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
	}{
		{"list", http.MethodGet, "/internal/competitors", nil, http.StatusOK},
		{"get", http.MethodGet, "/internal/competitors/1", nil, http.StatusOK},
		{"get missing", http.MethodGet, "/internal/competitors/9", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/internal/competitors/abc", nil, http.StatusBadRequest},
		{"create", http.MethodPost, "/internal/competitors", competitors.Details{Name: "Other_Shop"}, http.StatusCreated},
		{"create invalid name", http.MethodPost, "/internal/competitors", competitors.Details{Name: "bad name"}, http.StatusBadRequest},
		{"create duplicate", http.MethodPost, "/internal/competitors", competitors.Details{Name: "rival"}, http.StatusConflict},
		{"update", http.MethodPut, "/internal/competitors/1", competitors.Details{URL: "https://x.example"}, http.StatusOK},
		{"toggle", http.MethodPost, "/internal/competitors/1/toggle", nil, http.StatusOK},
		{"settings invalid", http.MethodPut, "/internal/competitors/1/settings", map[string]interface{}{"enabled": true, "minMarginPercent": 150}, http.StatusUnprocessableEntity},
		{"settings", http.MethodPut, "/internal/competitors/1/settings", map[string]interface{}{"enabled": true, "minMarginPercent": 15}, http.StatusOK},
		{"delete", http.MethodDelete, "/internal/competitors/1", nil, http.StatusNoContent},
		{"delete missing", http.MethodDelete, "/internal/competitors/5", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			w := api.do(tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestSettingsValidationReportsField(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPut, "/internal/competitors/1/settings", map[string]interface{}{"enabled": true, "discountDaysValid": 0})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, settings.KeyDiscountDaysValid, decode[ErrorResponse](t, w).Field)
}

func TestCompare(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/internal/competitors/1/compare", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[compare.Stats](t, w).ProductsMatched)
	require.Len(t, api.comparer.reqs, 1)
	assert.Equal(t, "local", api.comparer.reqs[0].Source.Name())
	assert.Equal(t, types.InitiatorManual, api.comparer.reqs[0].Initiator)

	api.comparer.busy = true
	w = api.do(http.MethodPost, "/internal/competitors/1/compare", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/internal/competitors/9/compare", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/internal/competitors/1/update", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[discounts.UpdateResult](t, w).Updated)

	w = api.do(http.MethodPost, "/internal/update-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[discounts.UpdateAllResult](t, w).Succeeded)

	w = api.do(http.MethodPost, "/internal/discounts/clean", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[discounts.CleanResult](t, w).Total)
}

func TestDiscountEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/internal/discounts?competitorId=3&search=lamp&page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, api.admin.filters, 1)
	f := api.admin.filters[0]
	require.NotNil(t, f.CompetitorID)
	assert.Equal(t, int64(3), *f.CompetitorID)
	assert.Equal(t, "lamp", f.Search)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.Limit)

	w = api.do(http.MethodGet, "/internal/discounts?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/internal/discounts/7/extend", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/internal/discounts/7/extend", ExtendRequest{Days: 14})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0, 14}, api.admin.extended)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/internal/discounts/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/internal/discounts/8", nil).Code)
}

func TestMatchesAndExports(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/internal/competitors/1/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[PriceDifferencesResponse](t, w).Matches, 1)

	w = api.do(http.MethodGet, "/internal/competitors/1/matches/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	v, err := f.GetCellValue("Matches", "B2")
	require.NoError(t, err)
	assert.Equal(t, "LAMP-X", v)
	require.NoError(t, f.Close())

	w = api.do(http.MethodGet, "/internal/discounts/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f, err = excelize.OpenReader(w.Body)
	require.NoError(t, err)
	v, err = f.GetCellValue("Discounts", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", v)
	require.NoError(t, f.Close())

	w = api.do(http.MethodGet, "/internal/competitors/2/matches/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatisticsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/internal/statistics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, api.stats.days)
	assert.NotNil(t, decode[SummaryResponse](t, w).Operations)

	w = api.do(http.MethodGet, "/internal/statistics/recent?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, api.stats.limit)
}

func TestSettingsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/internal/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s3cret", decode[settings.Global](t, w).CronToken)

	g := settings.Global{CronToken: "s3cret", DiscountDaysValid: 0}
	w = api.do(http.MethodPut, "/internal/settings", g)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, settings.KeyDiscountDaysValid, decode[ErrorResponse](t, w).Field)

	g.DiscountDaysValid = 5
	g.MinMarginPercent = 12
	w = api.do(http.MethodPut, "/internal/settings", g)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", api.config.values[settings.KeyDiscountDaysValid])

	w = api.do(http.MethodPost, "/internal/settings/generate-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[TokenResponse](t, w).CronToken
	assert.Len(t, token, 32)
	assert.Equal(t, token, api.config.values[settings.KeyCronToken])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", types.ErrCompetitorNotFound), http.StatusNotFound},
		{types.ErrRunInProgress, http.StatusConflict},
		{types.ErrInvalidToken, http.StatusForbidden},
		{compare.ErrNoFeed, http.StatusBadRequest},
		{&settings.ValidationError{Field: "x"}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
