package dashboard

import "time"

// Month identifies one calendar month on the sales chart.
type Month string

// Calendar months in chart order.
const (
	Jan Month = "Jan"
	Feb Month = "Feb"
	Mar Month = "Mar"
	Apr Month = "Apr"
	May Month = "May"
	Jun Month = "Jun"
	Jul Month = "Jul"
	Aug Month = "Aug"
	Sep Month = "Sep"
	Oct Month = "Oct"
	Nov Month = "Nov"
	Dec Month = "Dec"
)

// Category identifies a product category on the breakdown chart.
type Category string

// Product categories in display order.
const (
	Food        Category = "Food"
	Clothes     Category = "Clothes"
	Electronics Category = "Electronics"
	Utensils    Category = "Utensils"
	Books       Category = "Books"
)

// Filter wildcards.
const (
	MonthAll    = "All"
	CategoryAll = "All"
)

// FestivalMultiplier is the uniform demand boost simulated by festival mode.
const FestivalMultiplier = 1.15

var months = []Month{Jan, Feb, Mar, Apr, May, Jun, Jul, Aug, Sep, Oct, Nov, Dec}

var categories = []Category{Food, Clothes, Electronics, Utensils, Books}

// Months returns the twelve calendar months in order.
func Months() []Month {
	return append([]Month(nil), months...)
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// MonthOptions lists the month filter choices, wildcard first.
func MonthOptions() []string {
	out := make([]string, 0, len(months)+1)
	out = append(out, MonthAll)
	for _, m := range months {
		out = append(out, string(m))
	}
	return out
}

// CategoryOptions lists the category filter choices, wildcard first.
func CategoryOptions() []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, CategoryAll)
	for _, c := range categories {
		out = append(out, string(c))
	}
	return out
}

// MonthFromIndex maps 1..12 onto the month enumeration.
func MonthFromIndex(i int) (Month, bool) {
	if i < 1 || i > len(months) {
		return "", false
	}
	return months[i-1], true
}

// Valid reports whether m is one of the twelve months.
func (m Month) Valid() bool {
	for _, candidate := range months {
		if candidate == m {
			return true
		}
	}
	return false
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// MonthlySalesPoint is one entry of the monthly sales series.
type MonthlySalesPoint struct {
	Month Month   `json:"month" validate:"required,oneof=Jan Feb Mar Apr May Jun Jul Aug Sep Oct Nov Dec"`
	Sales float64 `json:"sales" validate:"gte=0"`
}

// CategorySalesPoint is one entry of the category breakdown series.
type CategorySalesPoint struct {
	Category Category `json:"category" validate:"required,oneof=Food Clothes Electronics Utensils Books"`
	Sales    float64  `json:"sales" validate:"gte=0"`
}

// KPI is a single headline card. The dashboard never computes on it.
type KPI struct {
	Key   string  `json:"key" validate:"required"`
	Label string  `json:"label" validate:"required"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Note  string  `json:"note,omitempty"`
}

// KPISet is the ordered bag of headline metrics.
type KPISet []KPI

// ForecastPoint is one projected day of total sales with its 80%
// uncertainty interval.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Yhat  float64   `json:"yhat" validate:"gte=0"`
	Lower float64   `json:"yhatLower" validate:"gte=0,ltefield=Yhat"`
	Upper float64   `json:"yhatUpper" validate:"gtefield=Yhat"`
}

// DashboardData is one immutable snapshot supplied by a provider. Forecast
// is empty when the provider has no daily history to project from.
type DashboardData struct {
	KPIs          KPISet               `json:"kpis" validate:"dive"`
	MonthlySales  []MonthlySalesPoint  `json:"monthlySales" validate:"dive"`
	CategorySales []CategorySalesPoint `json:"categorySales" validate:"dive"`
	Forecast      []ForecastPoint      `json:"forecast,omitempty" validate:"dive"`
}

// FilterState is the filter bar selection.
type FilterState struct {
	Month    string `json:"month"`
	Category string `json:"category"`
	Festival bool   `json:"festival"`
}

// DefaultFilters returns the initial selection: everything, festival off.
func DefaultFilters() FilterState {
	return FilterState{Month: MonthAll, Category: CategoryAll, Festival: false}
}

// Multiplier returns the factor applied to monthly sales under this state.
func (f FilterState) Multiplier() float64 {
	if f.Festival {
		return FestivalMultiplier
	}
	return 1
}

// View is the chart-ready output of DeriveView.
type View struct {
	Filters        FilterState          `json:"filters"`
	KPIs           KPISet               `json:"kpis"`
	MonthlySeries  []MonthlySalesPoint  `json:"monthlySeries"`
	CategorySeries []CategorySalesPoint `json:"categorySeries"`
}

// Empty reports whether both derived series have no points.
func (v View) Empty() bool {
	return len(v.MonthlySeries) == 0 && len(v.CategorySeries) == 0
}
