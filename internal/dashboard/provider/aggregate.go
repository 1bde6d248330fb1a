package provider

import (
	"fmt"
	"math"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// KPI keys produced by Aggregate.
const (
	KPITotalSales    = "total_sales"
	KPITotalProfit   = "total_profit"
	KPIUnitsSold     = "units_sold"
	KPIAvgPrice      = "avg_selling_price"
	KPIBestMonth     = "best_month"
	KPITopCategory   = "top_category"
	KPIFestivalShare = "festival_share"
)

// Aggregate rolls daily rows up into a snapshot: twelve monthly totals in
// calendar order, one total per category in display order, and the
// headline KPIs. Months or categories without rows report zero sales.
func Aggregate(rows []Row) dashboard.DashboardData {
	var (
		byMonth       [12]float64
		byCategory    = make(map[dashboard.Category]float64, len(dashboard.Categories()))
		totalSales    float64
		totalProfit   float64
		festivalSales float64
		units         int
	)
	for _, r := range rows {
		byMonth[r.Date.Month()-1] += r.Revenue
		byCategory[r.Category] += r.Revenue
		totalSales += r.Revenue
		totalProfit += r.Profit
		units += r.Units
		if r.Festival != NoFestival && r.Festival != "" {
			festivalSales += r.Revenue
		}
	}

	monthly := make([]dashboard.MonthlySalesPoint, 0, 12)
	best := dashboard.MonthlySalesPoint{}
	for i, m := range dashboard.Months() {
		point := dashboard.MonthlySalesPoint{Month: m, Sales: round2(byMonth[i])}
		if best.Month == "" || point.Sales > best.Sales {
			best = point
		}
		monthly = append(monthly, point)
	}

	categories := make([]dashboard.CategorySalesPoint, 0, len(dashboard.Categories()))
	top := dashboard.CategorySalesPoint{}
	for _, c := range dashboard.Categories() {
		point := dashboard.CategorySalesPoint{Category: c, Sales: round2(byCategory[c])}
		if top.Category == "" || point.Sales > top.Sales {
			top = point
		}
		categories = append(categories, point)
	}

	return dashboard.DashboardData{
		KPIs: dashboard.KPISet{
			{Key: KPITotalSales, Label: "Total Sales", Value: round2(totalSales), Unit: "INR"},
			{Key: KPITotalProfit, Label: "Total Profit", Value: round2(totalProfit), Unit: "INR", Note: marginNote(totalProfit, totalSales)},
			{Key: KPIUnitsSold, Label: "Units Sold", Value: float64(units)},
			{Key: KPIAvgPrice, Label: "Avg Selling Price", Value: ratio(totalSales, float64(units)), Unit: "INR"},
			{Key: KPIBestMonth, Label: "Best Month", Value: best.Sales, Unit: "INR", Note: string(best.Month)},
			{Key: KPITopCategory, Label: "Top Category", Value: top.Sales, Unit: "INR", Note: string(top.Category)},
			{Key: KPIFestivalShare, Label: "Festival Share", Value: share(festivalSales, totalSales), Unit: "%"},
		},
		MonthlySales:  monthly,
		CategorySales: categories,
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

// share returns part as a percentage of whole with one decimal.
func share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*1000) / 10
}

func marginNote(profit, sales float64) string {
	if sales == 0 {
		return ""
	}
	return fmt.Sprintf("margin %.1f%%", share(profit, sales))
}
