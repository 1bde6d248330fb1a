package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

func TestGeneratedProviderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewGeneratedProvider(2024, 42).Load(ctx)
	require.NoError(t, err)
	b, err := NewGeneratedProvider(2024, 42).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewGeneratedProvider(2024, 43).Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.MonthlySales, c.MonthlySales)
}

func TestGeneratedProviderShape(t *testing.T) {
	gen := NewGeneratedProvider(2023, 42)
	rows, err := gen.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 365*totalSlots())

	data := Aggregate(rows)
	require.NoError(t, Validate(&data))
	require.Len(t, data.MonthlySales, 12)
	require.Len(t, data.CategorySales, 5)
	for i, p := range data.MonthlySales {
		assert.Equal(t, dashboard.Months()[i], p.Month)
		assert.Positive(t, p.Sales)
	}
	for i, p := range data.CategorySales {
		assert.Equal(t, dashboard.Categories()[i], p.Category)
	}

	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Units, 0)
		assert.LessOrEqual(t, r.SellPrice, r.UnitPrice+0.01)
		if r.Festival == NoFestival {
			continue
		}
		assert.Equal(t, FestivalOn(r.Date), r.Festival)
	}
}

func TestGeneratedProviderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGeneratedProvider(2024, 1).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAggregateRollsUpRows(t *testing.T) {
	jan := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{Date: jan, Category: dashboard.Food, Units: 10, Revenue: 100, Profit: 20, Festival: NewYear},
		{Date: jan, Category: dashboard.Books, Units: 2, Revenue: 300, Profit: 45, Festival: NewYear},
		{Date: mar, Category: dashboard.Food, Units: 8, Revenue: 600, Profit: 135, Festival: NoFestival},
	}

	data := Aggregate(rows)

	assert.Equal(t, 400.0, data.MonthlySales[0].Sales)
	assert.Equal(t, 0.0, data.MonthlySales[1].Sales)
	assert.Equal(t, 600.0, data.MonthlySales[2].Sales)
	assert.Equal(t, 700.0, data.CategorySales[0].Sales)
	assert.Equal(t, 300.0, data.CategorySales[4].Sales)
	assert.Equal(t, 0.0, data.CategorySales[1].Sales)

	kpis := map[string]dashboard.KPI{}
	for _, k := range data.KPIs {
		kpis[k.Key] = k
	}
	assert.Equal(t, 1000.0, kpis[KPITotalSales].Value)
	assert.Equal(t, 200.0, kpis[KPITotalProfit].Value)
	assert.Equal(t, "margin 20.0%", kpis[KPITotalProfit].Note)
	assert.Equal(t, 20.0, kpis[KPIUnitsSold].Value)
	assert.Equal(t, 50.0, kpis[KPIAvgPrice].Value)
	assert.Equal(t, "Mar", kpis[KPIBestMonth].Note)
	assert.Equal(t, "Food", kpis[KPITopCategory].Note)
	assert.Equal(t, 40.0, kpis[KPIFestivalShare].Value)
}

func TestAggregateEmpty(t *testing.T) {
	data := Aggregate(nil)
	assert.Len(t, data.MonthlySales, 12)
	assert.Len(t, data.CategorySales, 5)
	require.NoError(t, Validate(&data))
}

func TestSamplerIsSeeded(t *testing.T) {
	draw := func(seed int64) []float64 {
		s := newSampler(seed)
		return []float64{s.uniform(10, 20), float64(s.poisson(4)), pick(s, []float64{1, 2, 3}, []float64{1, 1, 1})}
	}
	assert.Equal(t, draw(9), draw(9))

	s := newSampler(9)
	for i := 0; i < 200; i++ {
		u := s.uniform(10, 20)
		assert.GreaterOrEqual(t, u, 10.0)
		assert.Less(t, u, 20.0)
		assert.GreaterOrEqual(t, s.poisson(0.5), 0)
		assert.Equal(t, PromoCombo, pick(s, []Promo{PromoFlat, PromoCombo}, []float64{0, 1}))
	}
	assert.False(t, s.chance(0))
	assert.True(t, s.chance(1))
}
