// Package svg renders the dashboard charts as inline SVG.
package svg

// LineOpts customises the monthly sales line chart.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// Baseline, when set, is drawn dashed underneath the main series.
	// It must have the same length as the series.
	Baseline      []float64
	BaselineLabel string
	BaselineColor string
	SeriesLabel   string
	// Dashed draws the main series dashed, for projected values.
	Dashed bool
	// Lower and Upper shade an interval band around the main series when
	// both are set. Each must have the same length as the series.
	Lower     []float64
	Upper     []float64
	BandColor string
	BandLabel string
	// LabelEvery keeps every nth x axis label; zero or one keeps them all.
	LabelEvery int
}

// BarOpts customises the category breakdown bar chart.
type BarOpts struct {
	Title          string
	Description    string
	Color          string
	HighlightColor string
	// Highlight names the label whose bar is drawn in HighlightColor.
	Highlight string
	AxisColor string
	GridColor string
	Padding   float64
	TickCount int
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 32.0
	DefaultTicks   = 5
)
