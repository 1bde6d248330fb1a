package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders the category breakdown, one bar per label.
func Bars(width, height int, series []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, opts.Padding, series, opts.AxisColor, opts.GridColor)
	if err != nil {
		return "", err
	}
	color := fallback(opts.Color, "#0ea5e9")
	highlight := fallback(opts.HighlightColor, "#f97316")

	var b strings.Builder
	f.open(&b, "bar", opts.Title, opts.Description, "Bar chart", "Sales by category")
	f.grid(&b, opts.TickCount)

	slot := f.chartWidth / float64(len(labels))
	barWidth := slot * 0.6
	zeroY := f.y(0)
	for i, label := range labels {
		x := f.padding + float64(i)*slot + (slot-barWidth)/2
		y, h := barPosition(series[i], f.scale, zeroY, f.padding, f.bottom())
		fill := color
		selected := opts.Highlight != "" && label == opts.Highlight
		if selected {
			fill = highlight
		}
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"3\" fill=\"%s\" aria-label=\"%s %s\"></rect>", x, y, barWidth, h, fill, template.HTMLEscapeString(label), formatTick(series[i]))
		f.xLabel(&b, x+barWidth/2, label, selected)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	if zeroY+height > bottom {
		height = bottom - zeroY
	}
	return zeroY, math.Max(height, 0)
}
