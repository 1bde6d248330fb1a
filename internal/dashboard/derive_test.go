package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() *DashboardData {
	return &DashboardData{
		KPIs: KPISet{
			{Key: "total_sales", Label: "Total Sales", Value: 125000, Unit: "INR"},
			{Key: "orders", Label: "Orders", Value: 3120},
		},
		MonthlySales: []MonthlySalesPoint{
			{Month: Jan, Sales: 100},
			{Month: Feb, Sales: 200},
			{Month: Mar, Sales: 310},
			{Month: Jan, Sales: 50},
			{Month: Apr, Sales: 10.5},
		},
		CategorySales: []CategorySalesPoint{
			{Category: Food, Sales: 400},
			{Category: Clothes, Sales: 250},
			{Category: Electronics, Sales: 900},
		},
	}
}

func TestDeriveViewAllMonthsKeepsLengthAndOrder(t *testing.T) {
	data := sampleData()
	for _, festival := range []bool{false, true} {
		view, err := DeriveView(data, FilterState{Month: MonthAll, Category: CategoryAll, Festival: festival})
		require.NoError(t, err)
		require.Len(t, view.MonthlySeries, len(data.MonthlySales))
		for i, p := range view.MonthlySeries {
			assert.Equal(t, data.MonthlySales[i].Month, p.Month)
		}
	}
}

func TestDeriveViewExactMonthMatch(t *testing.T) {
	data := sampleData()
	view, err := DeriveView(data, FilterState{Month: "Jan", Category: CategoryAll})
	require.NoError(t, err)
	require.Len(t, view.MonthlySeries, 2)
	for _, p := range view.MonthlySeries {
		assert.Equal(t, Jan, p.Month)
	}
	assert.Equal(t, 100.0, view.MonthlySeries[0].Sales)
	assert.Equal(t, 50.0, view.MonthlySeries[1].Sales)

	view, err = DeriveView(data, FilterState{Month: "jan", Category: CategoryAll})
	require.NoError(t, err)
	assert.Empty(t, view.MonthlySeries)

	view, err = DeriveView(data, FilterState{Month: "Ja", Category: CategoryAll})
	require.NoError(t, err)
	assert.Empty(t, view.MonthlySeries)
}

func TestDeriveViewIsIdempotent(t *testing.T) {
	data := sampleData()
	filters := FilterState{Month: "Feb", Category: "Food", Festival: true}
	first, err := DeriveView(data, filters)
	require.NoError(t, err)
	second, err := DeriveView(data, filters)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeriveViewFestivalScaling(t *testing.T) {
	data := sampleData()

	on, err := DeriveView(data, FilterState{Month: MonthAll, Category: CategoryAll, Festival: true})
	require.NoError(t, err)
	for i, p := range on.MonthlySeries {
		assert.Equal(t, math.Round(data.MonthlySales[i].Sales*1.15), p.Sales)
	}
	assert.Equal(t, 12.0, on.MonthlySeries[4].Sales)
	assert.Equal(t, 230.0, on.MonthlySeries[1].Sales)

	off, err := DeriveView(data, FilterState{Month: MonthAll, Category: CategoryAll})
	require.NoError(t, err)
	assert.Equal(t, 10.5, off.MonthlySeries[4].Sales)
}

func TestDeriveViewCategoryIndependentOfMonthAndFestival(t *testing.T) {
	data := sampleData()
	base, err := DeriveView(data, FilterState{Month: MonthAll, Category: "Clothes"})
	require.NoError(t, err)
	require.Equal(t, []CategorySalesPoint{{Category: Clothes, Sales: 250}}, base.CategorySeries)

	for _, month := range []string{"All", "Jan", "Dec", "nope"} {
		for _, festival := range []bool{false, true} {
			view, err := DeriveView(data, FilterState{Month: month, Category: "Clothes", Festival: festival})
			require.NoError(t, err)
			assert.Equal(t, base.CategorySeries, view.CategorySeries, "month=%s festival=%v", month, festival)
		}
	}

	all, err := DeriveView(data, FilterState{Month: "Jan", Category: CategoryAll, Festival: true})
	require.NoError(t, err)
	assert.Equal(t, data.CategorySales, all.CategorySeries)
}

func TestDeriveViewWorkedExamples(t *testing.T) {
	data := &DashboardData{MonthlySales: []MonthlySalesPoint{{Month: Jan, Sales: 100}, {Month: Feb, Sales: 200}}}

	view, err := DeriveView(data, FilterState{Month: "Jan", Category: CategoryAll, Festival: true})
	require.NoError(t, err)
	assert.Equal(t, []MonthlySalesPoint{{Month: Jan, Sales: 115}}, view.MonthlySeries)

	view, err = DeriveView(data, DefaultFilters())
	require.NoError(t, err)
	assert.Equal(t, data.MonthlySales, view.MonthlySeries)

	view, err = DeriveView(data, FilterState{Month: "Dec", Category: CategoryAll})
	require.NoError(t, err)
	assert.NotNil(t, view.MonthlySeries)
	assert.Empty(t, view.MonthlySeries)
}

func TestDeriveViewNilData(t *testing.T) {
	_, err := DeriveView(nil, DefaultFilters())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeriveViewDoesNotAliasSnapshot(t *testing.T) {
	data := sampleData()
	view, err := DeriveView(data, DefaultFilters())
	require.NoError(t, err)

	view.MonthlySeries[0].Sales = -1
	view.CategorySeries[0].Sales = -1
	view.KPIs[0].Value = -1

	assert.Equal(t, 100.0, data.MonthlySales[0].Sales)
	assert.Equal(t, 400.0, data.CategorySales[0].Sales)
	assert.Equal(t, 125000.0, data.KPIs[0].Value)
}

func TestDeriveViewPassesKPIsThrough(t *testing.T) {
	data := sampleData()
	view, err := DeriveView(data, FilterState{Month: "Mar", Category: "Books", Festival: true})
	require.NoError(t, err)
	assert.Equal(t, data.KPIs, view.KPIs)
	assert.Empty(t, view.CategorySeries)
}
