package dashboard

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source supplies the snapshot the service derives from.
type Source interface {
	Load(ctx context.Context) (DashboardData, error)
}

// ViewRecorder observes every derivation the service performs.
type ViewRecorder interface {
	ViewDerived(festival bool)
}

// DefaultWarmLimit bounds concurrent derivations during Warm.
const DefaultWarmLimit = 8

// Service coordinates snapshot loading and view derivation with the cache layer.
type Service struct {
	source   Source
	cache    *Cache
	recorder ViewRecorder
	group    singleflight.Group
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder attaches a derivation observer.
func WithRecorder(r ViewRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService wires a Source with an optional Cache.
func NewService(source Source, cache *Cache, opts ...Option) *Service {
	s := &Service{source: source, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current dashboard data.
func (s *Service) Snapshot(ctx context.Context) (DashboardData, error) {
	if s == nil || s.source == nil {
		return DashboardData{}, invalidf("dashboard source missing")
	}
	return s.source.Load(ctx)
}

// View derives the view for filters, reading through the cache.
func (s *Service) View(ctx context.Context, filters FilterState) (View, error) {
	key, err := s.cache.BuildKey(ctx, viewKeyParts(filters)...)
	if err != nil {
		return View{}, fmt.Errorf("dashboard: build cache key: %w", err)
	}
	result, err, _ := s.group.Do(key, func() (any, error) {
		var view View
		loader := func(ctx context.Context) (any, error) {
			return s.derive(ctx, filters)
		}
		if err := s.cache.FetchJSON(ctx, key, &view, loader); err != nil {
			return View{}, err
		}
		return view, nil
	})
	if err != nil {
		return View{}, err
	}
	return cloneView(result.(View)), nil
}

// Warm derives each filter combination into the cache, at most limit at a
// time. It returns the number of views warmed.
func (s *Service) Warm(ctx context.Context, combos []FilterState, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultWarmLimit
	}
	if _, err := s.Snapshot(ctx); err != nil {
		return 0, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, combo := range combos {
		g.Go(func() error {
			if _, err := s.View(gctx, combo); err != nil {
				return fmt.Errorf("warm %s: %w", comboLabel(combo), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(combos), nil
}

// Invalidate bumps the cache version so every view is derived afresh.
func (s *Service) Invalidate(ctx context.Context) (int64, error) {
	return s.cache.Bump(ctx)
}

func (s *Service) derive(ctx context.Context, filters FilterState) (View, error) {
	data, err := s.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}
	view, err := DeriveView(&data, filters)
	if err != nil {
		return View{}, err
	}
	if s.recorder != nil {
		s.recorder.ViewDerived(filters.Festival)
	}
	return view, nil
}

// AllFilterCombinations enumerates every valid filter state: each month
// option by each category option by both festival states.
func AllFilterCombinations() []FilterState {
	monthOpts := MonthOptions()
	categoryOpts := CategoryOptions()
	out := make([]FilterState, 0, len(monthOpts)*len(categoryOpts)*2)
	for _, m := range monthOpts {
		for _, c := range categoryOpts {
			for _, festival := range []bool{false, true} {
				out = append(out, FilterState{Month: m, Category: c, Festival: festival})
			}
		}
	}
	return out
}

func comboLabel(f FilterState) string {
	return strings.Join(viewKeyParts(f)[2:], "/")
}

// cloneView keeps singleflight callers from sharing backing arrays.
func cloneView(v View) View {
	v.KPIs = append(KPISet{}, v.KPIs...)
	v.MonthlySeries = append([]MonthlySalesPoint{}, v.MonthlySeries...)
	v.CategorySeries = append([]CategorySalesPoint{}, v.CategorySeries...)
	return v
}
