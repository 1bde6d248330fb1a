// Package export serialises a derived dashboard view for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// WriteViewCSV writes the view as three blank-line separated sections:
// filters and KPIs, monthly sales, and category sales.
func WriteViewCSV(w io.Writer, view dashboard.View) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	records := [][]string{
		{"Filter", "Value"},
		{"Month", view.Filters.Month},
		{"Category", view.Filters.Category},
		{"Festival", strconv.FormatBool(view.Filters.Festival)},
		{},
		{"KPI", "Value", "Unit", "Note"},
	}
	for _, kpi := range view.KPIs {
		records = append(records, []string{kpi.Label, formatFloat(kpi.Value), kpi.Unit, kpi.Note})
	}
	records = append(records, []string{}, []string{"Month", "Sales"})
	for _, point := range view.MonthlySeries {
		records = append(records, []string{string(point.Month), formatFloat(point.Sales)})
	}
	records = append(records, []string{}, []string{"Category", "Sales"})
	for _, point := range view.CategorySeries {
		records = append(records, []string{string(point.Category), formatFloat(point.Sales)})
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
