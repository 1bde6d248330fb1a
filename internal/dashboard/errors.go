package dashboard

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks an absent snapshot or a filter value outside the
// month/category enumerations.
var ErrInvalidInput = errors.New("dashboard: invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ValidateFilters checks every field of the state against the enumerations.
func ValidateFilters(f FilterState) error {
	if err := validateMonthFilter(f.Month); err != nil {
		return err
	}
	return validateCategoryFilter(f.Category)
}

func validateMonthFilter(m string) error {
	if m == MonthAll || Month(m).Valid() {
		return nil
	}
	return invalidf("unknown month %q", m)
}

func validateCategoryFilter(c string) error {
	if c == CategoryAll || Category(c).Valid() {
		return nil
	}
	return invalidf("unknown category %q", c)
}
