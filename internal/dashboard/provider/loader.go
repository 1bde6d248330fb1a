package provider

import (
	"context"
	"sync"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// Loader is the initialisation token for one hosting component. The first
// Load runs the provider and validation; every later call returns the same
// snapshot or the same error. Each component owns its own Loader.
type Loader struct {
	provider Provider

	once   sync.Once
	mu     sync.RWMutex
	loaded bool
	data   dashboard.DashboardData
	err    error
}

// NewLoader wraps p in a fresh token.
func NewLoader(p Provider) *Loader {
	return &Loader{provider: p}
}

// Load returns the memoised snapshot, fetching it on first use. The fetch
// is detached from the caller's cancellation so that an abandoned first
// request cannot spend the token on its own context error.
func (l *Loader) Load(ctx context.Context) (dashboard.DashboardData, error) {
	l.once.Do(func() {
		data, err := l.fetch(context.WithoutCancel(ctx))
		l.mu.Lock()
		l.data, l.err, l.loaded = data, err, true
		l.mu.Unlock()
	})
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return dashboard.DashboardData{}, l.err
	}
	return cloneData(l.data), nil
}

// Loaded reports whether the token has been spent.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

func (l *Loader) fetch(ctx context.Context) (dashboard.DashboardData, error) {
	if l.provider == nil {
		return dashboard.DashboardData{}, Validate(nil)
	}
	data, err := l.provider.Load(ctx)
	if err != nil {
		return dashboard.DashboardData{}, err
	}
	if err := Validate(&data); err != nil {
		return dashboard.DashboardData{}, err
	}
	return data, nil
}

func cloneData(d dashboard.DashboardData) dashboard.DashboardData {
	return dashboard.DashboardData{
		KPIs:          append(dashboard.KPISet(nil), d.KPIs...),
		MonthlySales:  append([]dashboard.MonthlySalesPoint(nil), d.MonthlySales...),
		CategorySales: append([]dashboard.CategorySalesPoint(nil), d.CategorySales...),
		Forecast:      append([]dashboard.ForecastPoint(nil), d.Forecast...),
	}
}
