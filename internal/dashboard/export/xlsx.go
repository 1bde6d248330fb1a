package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/retailpulse/retailpulse/internal/dashboard"
)

// Sheet names in the exported workbook.
const (
	SheetKPIs       = "KPIs"
	SheetMonthly    = "Monthly"
	SheetCategories = "Categories"
)

const headerFill = "#1E3A8A"

// WriteViewXLSX writes the view as a workbook with one sheet per section.
func WriteViewXLSX(w io.Writer, view dashboard.View) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetKPIs); err != nil {
		return err
	}
	for _, name := range []string{SheetMonthly, SheetCategories} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	kpiRows := [][]any{
		{"Month filter", view.Filters.Month},
		{"Category filter", view.Filters.Category},
		{"Festival mode", view.Filters.Festival},
	}
	for _, kpi := range view.KPIs {
		kpiRows = append(kpiRows, []any{kpi.Label, kpi.Value, kpi.Unit, kpi.Note})
	}
	if err := writeTable(f, SheetKPIs, []string{"Metric", "Value", "Unit", "Note"}, kpiRows, headerStyle, numberStyle); err != nil {
		return err
	}

	monthlyRows := make([][]any, 0, len(view.MonthlySeries))
	for _, p := range view.MonthlySeries {
		monthlyRows = append(monthlyRows, []any{string(p.Month), p.Sales})
	}
	if err := writeTable(f, SheetMonthly, []string{"Month", "Sales"}, monthlyRows, headerStyle, numberStyle); err != nil {
		return err
	}

	categoryRows := make([][]any, 0, len(view.CategorySeries))
	for _, p := range view.CategorySeries {
		categoryRows = append(categoryRows, []any{string(p.Category), p.Sales})
	}
	if err := writeTable(f, SheetCategories, []string{"Category", "Sales"}, categoryRows, headerStyle, numberStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle, numberStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", len(rows)+1), numberStyle); err != nil {
			return err
		}
	}
	endCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", endCol, 18)
}
