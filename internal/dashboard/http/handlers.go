package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/retailpulse/retailpulse/internal/dashboard"
	"github.com/retailpulse/retailpulse/internal/dashboard/export"
	"github.com/retailpulse/retailpulse/internal/dashboard/svg"
	"github.com/retailpulse/retailpulse/internal/dashboard/ui"
	"github.com/retailpulse/retailpulse/internal/platform/httpx"
	"github.com/retailpulse/retailpulse/internal/shared"
	"github.com/retailpulse/retailpulse/internal/view"
)

// FiltersSessionKey stores the JSON encoded filter state in the session.
const FiltersSessionKey = "dashboard_filters"

const (
	dashboardPath  = "/dashboard"
	requestTimeout = 2 * time.Second
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	forecastLabelEvery = 15
)

// DashboardService defines the data contract used by the handler.
type DashboardService interface {
	Snapshot(ctx context.Context) (dashboard.DashboardData, error)
	View(ctx context.Context, filters dashboard.FilterState) (dashboard.View, error)
}

// TokenIssuer hands out the CSRF token embedded in filter forms.
type TokenIssuer interface {
	EnsureToken(ctx context.Context, sess *shared.Session) (string, error)
}

// Handler serves the sales dashboard page, its filter mutations, the JSON
// API and the exports.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	line      ui.LineRenderer
	bar       ui.BarRenderer
	csrf      TokenIssuer
	format    *ui.Formatter
	bufPool   sync.Pool
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, line ui.LineRenderer, bar ui.BarRenderer, csrf TokenIssuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		line:      line,
		bar:       bar,
		csrf:      csrf,
		format:    ui.NewFormatter(nil),
	}
	h.bufPool.New = func() any { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	filters := h.sessionFilters(sess)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	vm, err := h.loadViewModel(ctx, filters)
	if err != nil {
		h.logError("load dashboard", err)
		vm = noDataViewModel(filters)
	}

	var flash *shared.FlashMessage
	csrfToken := ""
	if sess != nil {
		flash = sess.PopFlash()
		if h.csrf != nil {
			token, err := h.csrf.EnsureToken(r.Context(), sess)
			if err != nil {
				h.handleServerError(w, "issue csrf token", err)
				return
			}
			csrfToken = token
		}
	}

	data := view.TemplateData{
		Title:       "Sales Dashboard",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleSetMonth(w http.ResponseWriter, r *http.Request) {
	month := r.PostFormValue("month")
	h.mutate(w, r, "set month", func(c *dashboard.Controller) (dashboard.View, error) {
		return c.SetMonth(month)
	})
}

func (h *Handler) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PostFormValue("category")
	h.mutate(w, r, "set category", func(c *dashboard.Controller) (dashboard.View, error) {
		return c.SetCategory(category)
	})
}

func (h *Handler) handleToggleFestival(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "toggle festival", (*dashboard.Controller).ToggleFestival)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "reset filters", (*dashboard.Controller).Reset)
}

// mutate replays the session filter state into a Controller, applies op and
// stores the resulting state. Rejected values leave the session untouched.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action string, op func(*dashboard.Controller) (dashboard.View, error)) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.handleServerError(w, action, errors.New("session missing"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.service.Snapshot(ctx)
	if err != nil {
		h.handleServerError(w, "load snapshot", err)
		return
	}
	ctrl, err := dashboard.NewController(&data, h.sessionFilters(sess))
	if err != nil {
		h.handleServerError(w, "init controller", err)
		return
	}
	if _, err := op(ctrl); err != nil {
		if errors.Is(err, dashboard.ErrInvalidInput) {
			http.Error(w, "Invalid filter value", http.StatusBadRequest)
			return
		}
		h.handleServerError(w, action, err)
		return
	}
	if err := sess.SetJSON(FiltersSessionKey, ctrl.State()); err != nil {
		h.handleServerError(w, "store filters", err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (h *Handler) handleAPIView(w http.ResponseWriter, r *http.Request) {
	filters, err := parseQueryFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := h.deriveUncached(ctx, filters)
	if err != nil {
		h.logError("derive api view", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

type forecastResponse struct {
	HorizonDays int                       `json:"horizonDays"`
	Points      []dashboard.ForecastPoint `json:"points"`
}

// handleAPIForecast serves the snapshot forecast. The optional days query
// parameter trims the horizon.
func (h *Handler) handleAPIForecast(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.RespondError(w, fmt.Errorf("%w: days must be a positive integer", httpx.ErrValidation))
			return
		}
		days = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.service.Snapshot(ctx)
	if err != nil {
		h.logError("load forecast", err)
		httpx.RespondError(w, err)
		return
	}
	points := data.Forecast
	if days > 0 && days < len(points) {
		points = points[:days]
	}
	if points == nil {
		points = []dashboard.ForecastPoint{}
	}
	httpx.JSON(w, http.StatusOK, forecastResponse{HorizonDays: len(points), Points: points})
}

type filtersResponse struct {
	Filters    dashboard.FilterState `json:"filters"`
	Months     []string              `json:"months"`
	Categories []string              `json:"categories"`
}

func (h *Handler) handleAPIFilters(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, filtersResponse{
		Filters:    h.sessionFilters(shared.SessionFromContext(r.Context())),
		Months:     dashboard.MonthOptions(),
		Categories: dashboard.CategoryOptions(),
	})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", export.WriteViewCSV)
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", xlsxMediaType, export.WriteViewXLSX)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, dashboard.View) error) {
	filters := h.sessionFilters(shared.SessionFromContext(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	v, err := h.service.View(ctx, filters)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()

	if err := write(buf, v); err != nil {
		h.handleServerError(w, "write "+ext, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(filters, ext)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream "+ext, err)
	}
}

// sessionFilters returns the stored filter state, or the defaults when the
// session has none or holds a value that no longer validates.
func (h *Handler) sessionFilters(sess *shared.Session) dashboard.FilterState {
	filters := dashboard.DefaultFilters()
	if sess == nil {
		return filters
	}
	var stored dashboard.FilterState
	ok, err := sess.GetJSON(FiltersSessionKey, &stored)
	if err != nil {
		h.logger.Warn("decode session filters", slog.Any("error", err))
		return filters
	}
	if !ok {
		return filters
	}
	if err := dashboard.ValidateFilters(stored); err != nil {
		h.logger.Warn("discard session filters", slog.Any("error", err))
		return filters
	}
	return stored
}

// deriveUncached serves unknown filter values straight from the snapshot so
// arbitrary query strings never mint cache keys.
func (h *Handler) deriveUncached(ctx context.Context, filters dashboard.FilterState) (dashboard.View, error) {
	if dashboard.ValidateFilters(filters) == nil {
		return h.service.View(ctx, filters)
	}
	data, err := h.service.Snapshot(ctx)
	if err != nil {
		return dashboard.View{}, err
	}
	return dashboard.DeriveView(&data, filters)
}

func (h *Handler) loadViewModel(ctx context.Context, filters dashboard.FilterState) (ui.DashboardViewModel, error) {
	v, err := h.service.View(ctx, filters)
	if err != nil {
		return ui.DashboardViewModel{}, err
	}
	var forecast []dashboard.ForecastPoint
	if data, err := h.service.Snapshot(ctx); err != nil {
		h.logError("load forecast", err)
	} else {
		forecast = data.Forecast
	}
	var baseline []dashboard.MonthlySalesPoint
	if filters.Festival {
		plain := filters
		plain.Festival = false
		base, err := h.service.View(ctx, plain)
		if err != nil {
			h.logError("load festival baseline", err)
		} else {
			baseline = base.MonthlySeries
		}
	}
	return h.buildViewModel(v, baseline, forecast)
}

func (h *Handler) buildViewModel(v dashboard.View, baseline []dashboard.MonthlySalesPoint, forecast []dashboard.ForecastPoint) (ui.DashboardViewModel, error) {
	if h.line == nil || h.bar == nil {
		return ui.DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}
	vm := ui.DashboardViewModel{
		Filters:         v.Filters,
		MonthOptions:    ui.Options(dashboard.MonthOptions(), v.Filters.Month),
		CategoryOptions: ui.Options(dashboard.CategoryOptions(), v.Filters.Category),
		KPIs:            ui.ToKPICards(v.KPIs, h.format),
		Monthly:         ui.ToMonthlyRows(v.MonthlySeries, h.format),
		Categories:      ui.ToCategoryRows(v.CategorySeries, h.format),
		Insight:         ui.Insight(v.Filters),
		ForecastSummary: ui.ForecastSummary(forecast, h.format),
	}

	if len(v.MonthlySeries) == 0 {
		vm.MonthlySVG = svg.Empty(svg.DefaultWidth, svg.DefaultHeight, "Monthly Sales", "No months match this filter.")
	} else {
		labels := make([]string, 0, len(v.MonthlySeries))
		series := make([]float64, 0, len(v.MonthlySeries))
		for _, p := range v.MonthlySeries {
			labels = append(labels, string(p.Month))
			series = append(series, p.Sales)
		}
		opts := svg.LineOpts{
			Title:       "Monthly Sales",
			Description: "Sales per month for the selected filters",
			ShowDots:    true,
			SeriesLabel: "Sales",
		}
		if len(baseline) == len(series) {
			opts.Baseline = make([]float64, 0, len(baseline))
			for _, p := range baseline {
				opts.Baseline = append(opts.Baseline, p.Sales)
			}
			opts.SeriesLabel = "Festival"
			opts.BaselineLabel = "Regular"
		}
		line, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, series, labels, opts)
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.MonthlySVG = line
	}

	if len(v.CategorySeries) == 0 {
		vm.CategorySVG = svg.Empty(svg.DefaultWidth, svg.DefaultHeight, "Sales by Category", "No categories match this filter.")
	} else {
		labels := make([]string, 0, len(v.CategorySeries))
		series := make([]float64, 0, len(v.CategorySeries))
		for _, p := range v.CategorySeries {
			labels = append(labels, string(p.Category))
			series = append(series, p.Sales)
		}
		highlight := ""
		if v.Filters.Category != dashboard.CategoryAll {
			highlight = v.Filters.Category
		}
		bars, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, series, labels, svg.BarOpts{
			Title:       "Sales by Category",
			Description: "Sales per product category",
			Highlight:   highlight,
		})
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.CategorySVG = bars
	}

	if len(forecast) == 0 {
		vm.ForecastSVG = svg.Empty(svg.DefaultWidth, svg.DefaultHeight, "Sales Forecast", "No daily history to forecast from.")
	} else {
		labels := make([]string, 0, len(forecast))
		series := make([]float64, 0, len(forecast))
		opts := svg.LineOpts{
			Title:       "Sales Forecast",
			Description: "Projected daily sales with an 80% interval",
			StrokeColor: "#7c3aed",
			Dashed:      true,
			Lower:       make([]float64, 0, len(forecast)),
			Upper:       make([]float64, 0, len(forecast)),
			SeriesLabel: "Forecast",
			BandLabel:   "80% interval",
			LabelEvery:  forecastLabelEvery,
		}
		for _, p := range forecast {
			labels = append(labels, p.Date.Format("02 Jan"))
			series = append(series, p.Yhat)
			opts.Lower = append(opts.Lower, p.Lower)
			opts.Upper = append(opts.Upper, p.Upper)
		}
		line, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, series, labels, opts)
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.ForecastSVG = line
	}
	return vm, nil
}

func noDataViewModel(filters dashboard.FilterState) ui.DashboardViewModel {
	return ui.DashboardViewModel{
		Filters:         filters,
		MonthOptions:    ui.Options(dashboard.MonthOptions(), filters.Month),
		CategoryOptions: ui.Options(dashboard.CategoryOptions(), filters.Category),
		NoData:          true,
	}
}

// parseQueryFilters reads month, category and festival from the query.
// Missing values fall back to the defaults. Month and category are taken
// verbatim: unknown or padded values are kept and simply match nothing.
func parseQueryFilters(r *http.Request) (dashboard.FilterState, error) {
	q := r.URL.Query()
	filters := dashboard.DefaultFilters()
	if month := q.Get("month"); month != "" {
		filters.Month = month
	}
	if category := q.Get("category"); category != "" {
		filters.Category = category
	}
	if raw := strings.TrimSpace(q.Get("festival")); raw != "" {
		festival, err := strconv.ParseBool(raw)
		if err != nil {
			return dashboard.FilterState{}, fmt.Errorf("%w: festival must be a boolean", httpx.ErrValidation)
		}
		filters.Festival = festival
	}
	return filters, nil
}

func exportFilename(filters dashboard.FilterState, ext string) string {
	name := fmt.Sprintf("sales-%s-%s", filters.Month, filters.Category)
	if filters.Festival {
		name += "-festival"
	}
	return strings.ToLower(name) + "." + ext
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
