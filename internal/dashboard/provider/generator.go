package provider

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// Season is a coarse climate period that shifts category demand.
type Season string

const (
	Summer  Season = "Summer"
	Monsoon Season = "Monsoon"
	Winter  Season = "Winter"
)

// Festival is a named shopping window.
type Festival string

const (
	NoFestival       Festival = "None"
	NewYear          Festival = "NewYear"
	Pongal           Festival = "Pongal"
	Eid              Festival = "Eid"
	BackToSchool     Festival = "BackToSchool"
	IndependenceWeek Festival = "IndependenceWeek"
	Diwali           Festival = "Diwali"
	Christmas        Festival = "Christmas"
)

// Promo describes the discount mechanic applied to a row.
type Promo string

const (
	PromoNone  Promo = "None"
	PromoFlat  Promo = "Flat"
	PromoCombo Promo = "Combo"
	PromoBOGO  Promo = "BOGO"
)

// Row is one synthetic sales line: a single product slot on a single day.
type Row struct {
	Date        time.Time
	Category    dashboard.Category
	Units       int
	UnitPrice   float64
	DiscountPct float64
	SellPrice   float64
	Revenue     float64
	Cost        float64
	Profit      float64
	Season      Season
	Festival    Festival
	Promo       Promo
}

type categoryProfile struct {
	slots    int
	base     float64
	minPrice float64
	maxPrice float64
	margin   float64
}

var profiles = map[dashboard.Category]categoryProfile{
	dashboard.Food:        {slots: 19, base: 220, minPrice: 20, maxPrice: 350, margin: 0.18},
	dashboard.Clothes:     {slots: 9, base: 55, minPrice: 150, maxPrice: 1800, margin: 0.35},
	dashboard.Electronics: {slots: 9, base: 30, minPrice: 120, maxPrice: 3000, margin: 0.25},
	dashboard.Utensils:    {slots: 8, base: 40, minPrice: 60, maxPrice: 1200, margin: 0.20},
	dashboard.Books:       {slots: 5, base: 35, minPrice: 80, maxPrice: 900, margin: 0.15},
}

var festivalLift = map[Festival]map[dashboard.Category]float64{
	NewYear:          {dashboard.Food: 1.08, dashboard.Electronics: 1.12},
	Pongal:           {dashboard.Food: 1.18, dashboard.Utensils: 1.10},
	Eid:              {dashboard.Food: 1.15, dashboard.Clothes: 1.20},
	BackToSchool:     {dashboard.Books: 1.28 * 1.30},
	IndependenceWeek: {dashboard.Food: 1.06},
	Diwali:           {dashboard.Food: 1.25, dashboard.Utensils: 1.18, dashboard.Electronics: 1.22, dashboard.Clothes: 1.18},
	Christmas:        {dashboard.Food: 1.12, dashboard.Books: 1.08, dashboard.Electronics: 1.14},
}

var seasonLift = map[Season]map[dashboard.Category]float64{
	Summer:  {dashboard.Food: 1.05},
	Monsoon: {dashboard.Clothes: 1.05},
	Winter:  {dashboard.Clothes: 1.12},
}

const (
	yearlyGrowth  = 0.08
	unitsPerSlot  = 0.015
	stockoutOdds  = 0.007
	promoDayOdds  = 0.010
	trickleOdds   = 0.06
	defaultSeedPC = 0x9e3779b97f4a7c15
)

// SeasonOf maps a calendar month onto its season.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.March, time.April, time.May:
		return Summer
	case time.June, time.July, time.August, time.September:
		return Monsoon
	default:
		return Winter
	}
}

// FestivalOn reports the festival window covering the given day, if any.
func FestivalOn(t time.Time) Festival {
	m, d := t.Month(), t.Day()
	switch {
	case (m == time.December && d >= 26) || (m == time.January && d <= 3):
		return NewYear
	case m == time.January && d >= 12 && d <= 17:
		return Pongal
	case (m == time.April || m == time.May) && d >= 5 && d <= 15:
		return Eid
	case (m == time.June || m == time.July) && d <= 20:
		return BackToSchool
	case m == time.August && d >= 10 && d <= 16:
		return IndependenceWeek
	case (m == time.October && d >= 15) || (m == time.November && d <= 15):
		return Diwali
	case m == time.December && d >= 18 && d <= 25:
		return Christmas
	default:
		return NoFestival
	}
}

// GeneratedProvider synthesises a full calendar year of store sales and
// rolls it up into a snapshot. The same year and seed always produce the
// same snapshot.
type GeneratedProvider struct {
	Year int
	Seed int64
}

// NewGeneratedProvider returns a provider for the given year and seed.
func NewGeneratedProvider(year int, seed int64) *GeneratedProvider {
	return &GeneratedProvider{Year: year, Seed: seed}
}

// Load implements Provider. The snapshot carries a DefaultForecastHorizon
// day forecast of total daily sales.
func (g *GeneratedProvider) Load(ctx context.Context) (dashboard.DashboardData, error) {
	rows, err := g.Rows(ctx)
	if err != nil {
		return dashboard.DashboardData{}, err
	}
	data := Aggregate(rows)
	data.Forecast = Forecast(rows, DefaultForecastHorizon)
	return data, nil
}

// Rows generates the daily rows backing the snapshot.
func (g *GeneratedProvider) Rows(ctx context.Context) ([]Row, error) {
	rng := newSampler(g.Seed)
	start := time.Date(g.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	dailyGrowth := math.Pow(1+yearlyGrowth, 1.0/365) - 1

	rows := make([]Row, 0, 366*totalSlots())
	for day, dt := 0, start; dt.Before(end); day, dt = day+1, dt.AddDate(0, 0, 1) {
		if day%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		season := SeasonOf(dt.Month())
		fest := FestivalOn(dt)
		footfall := footfallFor(dt)
		growth := math.Pow(1+dailyGrowth, float64(day))
		shock := 1.0
		if rng.chance(stockoutOdds) {
			shock *= rng.uniform(0.70, 0.88)
		}
		if rng.chance(promoDayOdds) {
			shock *= rng.uniform(1.08, 1.22)
		}

		for _, cat := range dashboard.Categories() {
			p := profiles[cat]
			lift := liftFor(festivalLift[fest], cat) * liftFor(seasonLift[season], cat)
			for slot := 0; slot < p.slots; slot++ {
				basePrice := rng.uniform(p.minPrice, p.maxPrice)
				discount, promo := discountFor(rng, cat, fest)
				sellPrice := basePrice * (1 - discount/100)
				mean := p.base * unitsPerSlot * footfall * growth * shock * lift * affordability(sellPrice)
				units := rng.poisson(math.Max(mean, 0.05))
				if units == 0 && rng.chance(trickleOdds) {
					units = 1
				}
				revenue := float64(units) * sellPrice
				cost := float64(units) * sellPrice * (1 - p.margin)
				rows = append(rows, Row{
					Date:        dt,
					Category:    cat,
					Units:       units,
					UnitPrice:   round2(basePrice),
					DiscountPct: discount,
					SellPrice:   round2(sellPrice),
					Revenue:     round2(revenue),
					Cost:        round2(cost),
					Profit:      round2(revenue - cost),
					Season:      season,
					Festival:    fest,
					Promo:       promo,
				})
			}
		}
	}
	return rows, nil
}

func totalSlots() int {
	n := 0
	for _, p := range profiles {
		n += p.slots
	}
	return n
}

// footfallFor applies the weekend bump and the salary-day effects.
func footfallFor(dt time.Time) float64 {
	f := 1.0
	if wd := dt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		f *= 1.10
	}
	if dt.Day() <= 5 {
		f *= 1.06
	}
	if dt.Day() >= 25 {
		f *= 0.98
	}
	return f
}

func liftFor(lifts map[dashboard.Category]float64, cat dashboard.Category) float64 {
	if v, ok := lifts[cat]; ok {
		return v
	}
	return 1
}

func affordability(price float64) float64 {
	switch {
	case price > 1500:
		return 0.35
	case price > 700:
		return 0.55
	case price > 300:
		return 0.75
	default:
		return 1
	}
}

func discountFor(rng *sampler, cat dashboard.Category, fest Festival) (float64, Promo) {
	bigFestival := fest == Diwali || fest == NewYear || fest == Christmas
	switch {
	case bigFestival && (cat == dashboard.Clothes || cat == dashboard.Electronics):
		pct := pick(rng, []float64{0, 5, 10, 15, 20}, []float64{0.15, 0.20, 0.30, 0.25, 0.10})
		promo := pick(rng, []Promo{PromoFlat, PromoCombo, PromoBOGO}, []float64{0.6, 0.25, 0.15})
		return pct, promo
	case cat == dashboard.Food && rng.chance(0.08):
		pct := pick(rng, []float64{0, 3, 5, 8, 10}, []float64{0.20, 0.25, 0.30, 0.15, 0.10})
		promo := pick(rng, []Promo{PromoFlat, PromoCombo}, []float64{0.8, 0.2})
		return pct, promo
	case rng.chance(0.03):
		return pick(rng, []float64{0, 5, 10}, []float64{0.5, 0.35, 0.15}), PromoFlat
	default:
		return 0, PromoNone
	}
}

// sampler draws every random quantity of one generation run from a single
// seeded source, so a seed fixes the whole dataset.
type sampler struct {
	src rand.Source
}

func newSampler(seed int64) *sampler {
	return &sampler{src: rand.NewPCG(uint64(seed), uint64(seed)^defaultSeedPC)}
}

func (s *sampler) chance(p float64) bool {
	return distuv.Bernoulli{P: p, Src: s.src}.Rand() == 1
}

func (s *sampler) uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.src}.Rand()
}

func (s *sampler) poisson(lambda float64) int {
	return int(distuv.Poisson{Lambda: lambda, Src: s.src}.Rand())
}

// pick returns one of values with probability proportional to its weight.
func pick[T any](s *sampler, values []T, weights []float64) T {
	return values[int(distuv.NewCategorical(weights, s.src).Rand())]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
