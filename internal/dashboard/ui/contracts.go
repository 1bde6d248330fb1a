package ui

import (
	"html/template"
	"math"

	"github.com/retailpulse/retailpulse/internal/dashboard"
	"github.com/retailpulse/retailpulse/internal/dashboard/svg"
)

// Option is one entry of a filter dropdown.
type Option struct {
	Value    string
	Selected bool
}

// KPICard is a headline metric ready for display.
type KPICard struct {
	Key   string
	Label string
	Value string
	Note  string
}

// SeriesRow is one row of the tables rendered under each chart.
type SeriesRow struct {
	Label string
	Value string
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters         dashboard.FilterState
	MonthOptions    []Option
	CategoryOptions []Option
	KPIs            []KPICard
	Monthly         []SeriesRow
	Categories      []SeriesRow
	MonthlySVG      template.HTML
	CategorySVG     template.HTML
	ForecastSVG     template.HTML
	ForecastSummary string
	Insight         string
	NoData          bool
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, series []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// Renderer is the default pair of chart renderers backed by package svg.
type Renderer struct{}

// Line implements LineRenderer.
func (Renderer) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

// Bars implements BarRenderer.
func (Renderer) Bars(width, height int, series []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, series, labels, opts)
}

// Options marks the selected value within a list of choices.
func Options(values []string, selected string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Selected: v == selected})
	}
	return out
}

// ToKPICards formats the KPI set for the card row.
func ToKPICards(kpis dashboard.KPISet, f *Formatter) []KPICard {
	cards := make([]KPICard, 0, len(kpis))
	for _, kpi := range kpis {
		cards = append(cards, KPICard{
			Key:   kpi.Key,
			Label: kpi.Label,
			Value: f.Amount(kpi.Value, kpi.Unit),
			Note:  kpi.Note,
		})
	}
	return cards
}

// ToMonthlyRows converts the monthly series into table rows.
func ToMonthlyRows(points []dashboard.MonthlySalesPoint, f *Formatter) []SeriesRow {
	rows := make([]SeriesRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, SeriesRow{Label: string(p.Month), Value: f.Number(p.Sales)})
	}
	return rows
}

// ToCategoryRows converts the category series into table rows.
func ToCategoryRows(points []dashboard.CategorySalesPoint, f *Formatter) []SeriesRow {
	rows := make([]SeriesRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, SeriesRow{Label: string(p.Category), Value: f.Number(p.Sales)})
	}
	return rows
}

// ForecastSummary totals the projected days into one sentence. It returns
// an empty string when there is nothing to summarise.
func ForecastSummary(points []dashboard.ForecastPoint, f *Formatter) string {
	if len(points) == 0 {
		return ""
	}
	var yhat, lower, upper float64
	for _, p := range points {
		yhat += p.Yhat
		lower += p.Lower
		upper += p.Upper
	}
	return f.printer.Sprintf("Projected sales over the next %d days: %s (80%% interval %s to %s).",
		len(points), f.Number(math.Round(yhat)), f.Number(math.Round(lower)), f.Number(math.Round(upper)))
}
