package dashboard

import "math"

// DeriveView applies the filter state to a snapshot and returns the series
// the charts render. The snapshot is never modified and never aliased.
//
// Month filtering runs first; the festival multiplier is applied only to
// the surviving points and each scaled value is rounded half away from
// zero. The category series is filtered independently and never scaled.
// Filter values outside the enumerations simply match nothing.
func DeriveView(data *DashboardData, filters FilterState) (View, error) {
	if data == nil {
		return View{}, invalidf("dashboard data missing")
	}
	return View{
		Filters:        filters,
		KPIs:           append(KPISet(nil), data.KPIs...),
		MonthlySeries:  deriveMonthly(data.MonthlySales, filters),
		CategorySeries: deriveCategories(data.CategorySales, filters.Category),
	}, nil
}

func deriveMonthly(points []MonthlySalesPoint, filters FilterState) []MonthlySalesPoint {
	out := make([]MonthlySalesPoint, 0, len(points))
	multiplier := filters.Multiplier()
	for _, p := range points {
		if filters.Month != MonthAll && string(p.Month) != filters.Month {
			continue
		}
		if filters.Festival {
			p.Sales = math.Round(p.Sales * multiplier)
		}
		out = append(out, p)
	}
	return out
}

func deriveCategories(points []CategorySalesPoint, category string) []CategorySalesPoint {
	out := make([]CategorySalesPoint, 0, len(points))
	for _, p := range points {
		if category != CategoryAll && string(p.Category) != category {
			continue
		}
		out = append(out, p)
	}
	return out
}
