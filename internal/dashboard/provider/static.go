package provider

import (
	"context"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// StaticProvider serves a fixed sample year of store sales.
type StaticProvider struct{}

// Load implements Provider. Every call returns a fresh copy.
func (StaticProvider) Load(ctx context.Context) (dashboard.DashboardData, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.DashboardData{}, err
	}
	return dashboard.DashboardData{
		KPIs: dashboard.KPISet{
			{Key: KPITotalSales, Label: "Total Sales", Value: 588700, Unit: "INR"},
			{Key: "orders", Label: "Orders", Value: 7420},
			{Key: "avg_order_value", Label: "Avg Order Value", Value: 79.34, Unit: "INR"},
			{Key: "growth", Label: "Growth", Value: 12.4, Unit: "%", Note: "vs last year"},
		},
		MonthlySales: []dashboard.MonthlySalesPoint{
			{Month: dashboard.Jan, Sales: 42000},
			{Month: dashboard.Feb, Sales: 38500},
			{Month: dashboard.Mar, Sales: 45200},
			{Month: dashboard.Apr, Sales: 47800},
			{Month: dashboard.May, Sales: 51000},
			{Month: dashboard.Jun, Sales: 39800},
			{Month: dashboard.Jul, Sales: 41200},
			{Month: dashboard.Aug, Sales: 46500},
			{Month: dashboard.Sep, Sales: 44100},
			{Month: dashboard.Oct, Sales: 58900},
			{Month: dashboard.Nov, Sales: 63400},
			{Month: dashboard.Dec, Sales: 70200},
		},
		CategorySales: []dashboard.CategorySalesPoint{
			{Category: dashboard.Food, Sales: 182000},
			{Category: dashboard.Clothes, Sales: 121500},
			{Category: dashboard.Electronics, Sales: 156800},
			{Category: dashboard.Utensils, Sales: 64300},
			{Category: dashboard.Books, Sales: 64100},
		},
	}, nil
}
