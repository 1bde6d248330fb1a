package provider

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

const (
	// DefaultForecastHorizon is the number of days projected past the history.
	DefaultForecastHorizon = 90
	// MinForecastHistory is the shortest daily history Forecast accepts.
	MinForecastHistory = 28

	// z score of a two-sided 80% interval.
	intervalZ = 1.2816
)

// DailyTotal is the revenue of one calendar day across all categories.
type DailyTotal struct {
	Date    time.Time
	Revenue float64
}

// DailyTotals sums row revenue per UTC calendar day, oldest first.
func DailyTotals(rows []Row) []DailyTotal {
	byDay := make(map[time.Time]float64)
	for _, r := range rows {
		byDay[truncateDay(r.Date)] += r.Revenue
	}
	out := make([]DailyTotal, 0, len(byDay))
	for day, revenue := range byDay {
		out = append(out, DailyTotal{Date: day, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Forecast projects total daily sales for the periods days after the last
// row. The model is multiplicative: a least squares linear trend scaled by
// a day-of-week index and a month-of-year index. The interval comes from
// the spread of the fitted residual ratios and widens with the horizon.
// Histories shorter than MinForecastHistory days yield no forecast.
func Forecast(rows []Row, periods int) []dashboard.ForecastPoint {
	history := DailyTotals(rows)
	if periods <= 0 || len(history) < MinForecastHistory {
		return nil
	}

	origin := history[0].Date
	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, d := range history {
		xs[i] = daysSince(origin, d.Date)
		ys[i] = d.Revenue
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	trend := func(x float64) float64 {
		return math.Max(alpha+beta*x, 0)
	}

	ratios := make([]float64, len(history))
	for i := range history {
		ratios[i] = relative(ys[i], trend(xs[i]))
	}
	weekly := seasonalIndex(history, ratios, weekdayBucket, 7)

	deweeked := make([]float64, len(history))
	for i, d := range history {
		deweeked[i] = relative(ratios[i], weekly[weekdayBucket(d.Date)])
	}
	yearly := seasonalIndex(history, deweeked, monthBucket, 12)

	residuals := make([]float64, len(history))
	for i, d := range history {
		residuals[i] = relative(deweeked[i], yearly[monthBucket(d.Date)])
	}
	sigma := stat.StdDev(residuals, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}

	last := history[len(history)-1].Date
	n := float64(len(history))
	out := make([]dashboard.ForecastPoint, 0, periods)
	for h := 1; h <= periods; h++ {
		day := last.AddDate(0, 0, h)
		yhat := trend(daysSince(origin, day)) * weekly[weekdayBucket(day)] * yearly[monthBucket(day)]
		spread := intervalZ * sigma * math.Sqrt(1+float64(h)/n)
		out = append(out, dashboard.ForecastPoint{
			Date:  day,
			Yhat:  round2(yhat),
			Lower: round2(math.Max(yhat*(1-spread), 0)),
			Upper: round2(yhat * (1 + spread)),
		})
	}
	return out
}

// seasonalIndex averages values per bucket and normalises the observed
// buckets to a mean of one. Unobserved or degenerate buckets stay neutral.
func seasonalIndex(history []DailyTotal, values []float64, bucket func(time.Time) int, size int) []float64 {
	groups := make([][]float64, size)
	for i, d := range history {
		b := bucket(d.Date)
		groups[b] = append(groups[b], values[i])
	}
	index := make([]float64, size)
	observed := make([]float64, 0, size)
	for b, g := range groups {
		index[b] = 1
		if len(g) == 0 {
			continue
		}
		if mean := stat.Mean(g, nil); mean > 0 {
			index[b] = mean
		}
		observed = append(observed, index[b])
	}
	if norm := stat.Mean(observed, nil); norm > 0 {
		for b := range index {
			if len(groups[b]) > 0 {
				index[b] /= norm
			}
		}
	}
	return index
}

// relative divides without rounding; a zero base leaves the value neutral.
func relative(v, base float64) float64 {
	if base == 0 {
		return 1
	}
	return v / base
}

func weekdayBucket(t time.Time) int { return int(t.Weekday()) }

func monthBucket(t time.Time) int { return int(t.Month()) - 1 }

func daysSince(origin, t time.Time) float64 {
	return math.Round(t.Sub(origin).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
