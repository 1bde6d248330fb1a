package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/retailpulse/retailpulse/internal/dashboard"
	"github.com/retailpulse/retailpulse/internal/dashboard/provider"
	"github.com/retailpulse/retailpulse/internal/dashboard/ui"
	"github.com/retailpulse/retailpulse/internal/shared"
	"github.com/retailpulse/retailpulse/internal/view"
)

type failingSource struct{}

func (failingSource) Load(ctx context.Context) (dashboard.DashboardData, error) {
	return dashboard.DashboardData{}, errors.New("snapshot unavailable")
}

func newTestHandler(t *testing.T, source dashboard.Source) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	service := dashboard.NewService(source, nil)
	return NewHandler(nil, service, templates, ui.Renderer{}, ui.Renderer{}, shared.NewCSRFManager("test-secret"))
}

func withSession(req *http.Request, sess *shared.Session) *http.Request {
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func newSession(t *testing.T, filters *dashboard.FilterState) *shared.Session {
	t.Helper()
	sess := &shared.Session{ID: "0b7f6c1e-3f7c-4a51-9d3e-1d1f2f3a4b5c"}
	if filters != nil {
		require.NoError(t, sess.SetJSON(FiltersSessionKey, filters))
	}
	return sess
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func storedFilters(t *testing.T, sess *shared.Session) (dashboard.FilterState, bool) {
	t.Helper()
	var got dashboard.FilterState
	ok, err := sess.GetJSON(FiltersSessionKey, &got)
	require.NoError(t, err)
	return got, ok
}

func TestDashboardRendersDefaultView(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sess))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Total Sales")
	assert.Contains(t, body, "INR 588,700")
	assert.Contains(t, body, "12.4%")
	assert.Contains(t, body, "Festival mode is OFF")
	assert.Contains(t, body, `data-series="main"`)
	assert.NotContains(t, body, `data-series="baseline"`)

	token := sess.Get(shared.CSRFSessionKey)
	require.NotEmpty(t, token)
	assert.Contains(t, body, token)
}

func TestDashboardFestivalDrawsBaseline(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, &dashboard.FilterState{Month: dashboard.MonthAll, Category: "Books", Festival: true})
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sess))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-series="baseline"`)
	assert.Contains(t, body, "48,300")
	assert.Contains(t, body, "Consider discounts mainly for Books.")
}

func TestDashboardEmptySeriesRendersPlaceholder(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	vm, err := handler.buildViewModel(dashboard.View{
		Filters:        dashboard.FilterState{Month: "Smarch", Category: dashboard.CategoryAll},
		MonthlySeries:  []dashboard.MonthlySalesPoint{},
		CategorySeries: []dashboard.CategorySalesPoint{{Category: dashboard.Food, Sales: 1}},
	}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(vm.MonthlySVG), "No months match this filter.")
	assert.Contains(t, string(vm.ForecastSVG), "No daily history to forecast from.")
	assert.Empty(t, vm.ForecastSummary)
	assert.Contains(t, string(vm.CategorySVG), "<svg")
	assert.False(t, vm.NoData)
}

func TestDashboardDrawsForecast(t *testing.T) {
	handler := newTestHandler(t, provider.NewLoader(provider.NewGeneratedProvider(2024, 42)))
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Sales Forecast")
	assert.Contains(t, body, `data-series="band"`)
	assert.Contains(t, body, "Projected sales over the next 90 days")
}

func TestDashboardWithoutDataShowsFallback(t *testing.T) {
	handler := newTestHandler(t, failingSource{})
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), newSession(t, nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No data available")
}

func TestDashboardIgnoresCorruptSessionFilters(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, nil)
	sess.Set(FiltersSessionKey, `{"month":"Smarch","category":"All"}`)
	assert.Equal(t, dashboard.DefaultFilters(), handler.sessionFilters(sess))

	sess.Set(FiltersSessionKey, "not json")
	assert.Equal(t, dashboard.DefaultFilters(), handler.sessionFilters(sess))
}

func TestFilterMutationsPersistInSession(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, nil)

	rr := httptest.NewRecorder()
	handler.handleSetMonth(rr, withSession(postForm("/dashboard/filters/month", url.Values{"month": {"Mar"}}), sess))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	handler.handleSetCategory(rr, withSession(postForm("/dashboard/filters/category", url.Values{"category": {"Food"}}), sess))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = httptest.NewRecorder()
	handler.handleToggleFestival(rr, withSession(postForm("/dashboard/filters/festival", nil), sess))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	got, ok := storedFilters(t, sess)
	require.True(t, ok)
	assert.Equal(t, dashboard.FilterState{Month: "Mar", Category: "Food", Festival: true}, got)

	rr = httptest.NewRecorder()
	handler.handleReset(rr, withSession(postForm("/dashboard/filters/reset", nil), sess))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	got, _ = storedFilters(t, sess)
	assert.Equal(t, dashboard.DefaultFilters(), got)
}

func TestFilterMutationRejectsUnknownValue(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	initial := dashboard.FilterState{Month: "Feb", Category: dashboard.CategoryAll}
	sess := newSession(t, &initial)

	rr := httptest.NewRecorder()
	handler.handleSetMonth(rr, withSession(postForm("/dashboard/filters/month", url.Values{"month": {"Smarch"}}), sess))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.handleSetCategory(rr, withSession(postForm("/dashboard/filters/category", url.Values{"category": {"Toys"}}), sess))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	got, ok := storedFilters(t, sess)
	require.True(t, ok)
	assert.Equal(t, initial, got)
}

func TestFilterMutationRejectsPaddedValues(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, nil)

	rr := httptest.NewRecorder()
	handler.handleSetMonth(rr, withSession(postForm("/dashboard/filters/month", url.Values{"month": {" Jan"}}), sess))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.handleSetCategory(rr, withSession(postForm("/dashboard/filters/category", url.Values{"category": {"Books "}}), sess))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	_, ok := storedFilters(t, sess)
	assert.False(t, ok)
}

func TestFilterMutationWithoutSessionFails(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleReset(rr, postForm("/dashboard/filters/reset", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAPIViewAppliesQueryFilters(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?month=Jan&festival=true", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got dashboard.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.MonthlySeries, 1)
	assert.Equal(t, dashboard.MonthlySalesPoint{Month: dashboard.Jan, Sales: 48300}, got.MonthlySeries[0])
	assert.Len(t, got.CategorySeries, 5)
	assert.Len(t, got.KPIs, 4)
}

func TestAPIViewUnknownValuesMatchNothing(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?month=Smarch&category=Toys", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"monthlySeries":[]`)
	assert.Contains(t, body, `"categorySeries":[]`)
}

func TestAPIViewMatchesValuesExactly(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?month=Jan%20&category=%20Food", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got dashboard.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Jan ", got.Filters.Month)
	assert.Equal(t, " Food", got.Filters.Category)
	assert.Empty(t, got.MonthlySeries)
	assert.Empty(t, got.CategorySeries)
}

func TestAPIViewRejectsMalformedFestival(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?festival=maybe", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestAPIViewSourceFailure(t *testing.T) {
	handler := newTestHandler(t, failingSource{})
	rr := httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAPIForecast(t *testing.T) {
	handler := newTestHandler(t, provider.NewLoader(provider.NewGeneratedProvider(2024, 42)))

	rr := httptest.NewRecorder()
	handler.handleAPIForecast(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard/forecast", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got forecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, provider.DefaultForecastHorizon, got.HorizonDays)
	require.Len(t, got.Points, provider.DefaultForecastHorizon)
	for _, p := range got.Points {
		assert.LessOrEqual(t, p.Lower, p.Yhat)
		assert.LessOrEqual(t, p.Yhat, p.Upper)
	}

	rr = httptest.NewRecorder()
	handler.handleAPIForecast(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard/forecast?days=7", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 7, got.HorizonDays)
	assert.Len(t, got.Points, 7)

	rr = httptest.NewRecorder()
	handler.handleAPIForecast(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard/forecast?days=soon", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPIForecastWithoutDailyHistory(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleAPIForecast(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard/forecast", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"horizonDays":0,"points":[]}`, rr.Body.String())
}

func TestAPIFiltersReportsSessionState(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, &dashboard.FilterState{Month: "Dec", Category: "Books", Festival: true})
	rr := httptest.NewRecorder()
	handler.handleAPIFilters(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/dashboard/filters", nil), sess))

	require.Equal(t, http.StatusOK, rr.Code)
	var got filtersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, dashboard.FilterState{Month: "Dec", Category: "Books", Festival: true}, got.Filters)
	assert.Len(t, got.Months, 13)
	assert.Equal(t, dashboard.MonthAll, got.Months[0])
	assert.Len(t, got.Categories, 6)
}

func TestCSVExportUsesSessionFilters(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	sess := newSession(t, &dashboard.FilterState{Month: "Jan", Category: "Food", Festival: true})
	rr := httptest.NewRecorder()
	handler.handleCSV(rr, withSession(httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil), sess))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "sales-jan-food-festival.csv")
	body := rr.Body.String()
	assert.Contains(t, body, "Jan,48300.00")
	assert.Contains(t, body, "Food,182000.00")
	assert.NotContains(t, body, "Books,")
}

func TestXLSXExport(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	rr := httptest.NewRecorder()
	handler.handleXLSX(rr, withSession(httptest.NewRequest(http.MethodGet, "/dashboard/export.xlsx", nil), newSession(t, nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxMediaType, rr.Header().Get("Content-Type"))
	book, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"KPIs", "Monthly", "Categories"}, book.GetSheetList())
	rows, err := book.GetRows("Monthly")
	require.NoError(t, err)
	assert.Len(t, rows, 13)
}

func TestExportsAreRateLimited(t *testing.T) {
	handler := newTestHandler(t, provider.StaticProvider{})
	router := chi.NewRouter()
	handler.MountRoutes(router)

	for i := 0; i < ExportLimit; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimitKeyPrefersSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil)
	key, err := rateLimitKey(req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "ip:"))

	key, err = rateLimitKey(withSession(req, &shared.Session{ID: "abc"}))
	require.NoError(t, err)
	assert.Equal(t, "session:abc", key)
}

func TestAPIViewReadsThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)
	cache := dashboard.NewCache(client, time.Minute)
	handler := NewHandler(nil, dashboard.NewService(provider.StaticProvider{}, cache), templates, ui.Renderer{}, ui.Renderer{}, nil)

	rr := httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?month=Feb", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, mr.Exists("dashboard:view:Feb:All:false:1"))

	rr = httptest.NewRecorder()
	handler.handleAPIView(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard?month=Smarch", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, mr.Exists("dashboard:view:Smarch:All:false:1"))
}
