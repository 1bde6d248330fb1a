package ui

import (
	"fmt"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

const defaultDiscountFocus = "Electronics & Clothes"

// Insight returns the quick-insight note shown under the charts.
func Insight(filters dashboard.FilterState) string {
	if !filters.Festival {
		return "Festival mode is OFF → Use this view to identify low-sales months and run targeted discounts."
	}
	focus := filters.Category
	if focus == dashboard.CategoryAll || focus == "" {
		focus = defaultDiscountFocus
	}
	return fmt.Sprintf("Festival mode is ON → Sales boosted by ~15%%. Consider discounts mainly for %s.", focus)
}
