package ui

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers with locale digit grouping.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for the given locale, English when nil.
func NewFormatter(tag *language.Tag) *Formatter {
	t := language.English
	if tag != nil {
		t = *tag
	}
	return &Formatter{printer: message.NewPrinter(t)}
}

// Number groups thousands and keeps two decimals only for fractional values.
func (f *Formatter) Number(v float64) string {
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return f.printer.Sprintf("%.0f", v)
	}
	return f.printer.Sprintf("%.2f", v)
}

// Amount formats v with its unit: percentages as a suffix, anything else
// as a prefix.
func (f *Formatter) Amount(v float64, unit string) string {
	switch unit {
	case "":
		return f.Number(v)
	case "%":
		return f.printer.Sprintf("%.1f%%", v)
	default:
		return unit + " " + f.Number(v)
	}
}
