package dashboard

import "sync"

// Controller owns the filter selection for one dashboard instance and
// recomputes the view after every change. State is replaced, never edited
// in place, so a State() result is never affected by later mutations.
type Controller struct {
	mu    sync.RWMutex
	data  *DashboardData
	state FilterState
}

// NewController validates the initial selection and binds it to data.
func NewController(data *DashboardData, initial FilterState) (*Controller, error) {
	if data == nil {
		return nil, invalidf("dashboard data missing")
	}
	if err := ValidateFilters(initial); err != nil {
		return nil, err
	}
	return &Controller{data: data, state: initial}, nil
}

// State returns the current filter selection.
func (c *Controller) State() FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// View derives the current view without changing state.
func (c *Controller) View() (View, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return DeriveView(c.data, c.state)
}

// SetMonth selects a month or the wildcard.
func (c *Controller) SetMonth(m string) (View, error) {
	if err := validateMonthFilter(m); err != nil {
		return View{}, err
	}
	return c.apply(func(s FilterState) FilterState {
		s.Month = m
		return s
	})
}

// SetCategory selects a category or the wildcard.
func (c *Controller) SetCategory(cat string) (View, error) {
	if err := validateCategoryFilter(cat); err != nil {
		return View{}, err
	}
	return c.apply(func(s FilterState) FilterState {
		s.Category = cat
		return s
	})
}

// ToggleFestival flips festival mode.
func (c *Controller) ToggleFestival() (View, error) {
	return c.apply(func(s FilterState) FilterState {
		s.Festival = !s.Festival
		return s
	})
}

// Reset restores DefaultFilters.
func (c *Controller) Reset() (View, error) {
	return c.apply(func(FilterState) FilterState {
		return DefaultFilters()
	})
}

func (c *Controller) apply(next func(FilterState) FilterState) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	candidate := next(c.state)
	view, err := DeriveView(c.data, candidate)
	if err != nil {
		return View{}, err
	}
	c.state = candidate
	return view, nil
}
