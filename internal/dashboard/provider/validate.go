package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a snapshot against the record tags on the dashboard
// types. Failures wrap dashboard.ErrInvalidInput and list every offending
// field.
func Validate(data *dashboard.DashboardData) error {
	if data == nil {
		return fmt.Errorf("%w: snapshot missing", dashboard.ErrInvalidInput)
	}
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", dashboard.ErrInvalidInput, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %s", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", dashboard.ErrInvalidInput, strings.Join(problems, "; "))
}
