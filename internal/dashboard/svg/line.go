package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders the monthly sales trend. With opts.Baseline set the
// unscaled values are drawn as a dashed line and a legend is added.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	if len(opts.Baseline) > 0 && len(opts.Baseline) != len(series) {
		return "", fmt.Errorf("svg: baseline length must match series")
	}
	band := len(opts.Lower) > 0 || len(opts.Upper) > 0
	if band && (len(opts.Lower) != len(series) || len(opts.Upper) != len(series)) {
		return "", fmt.Errorf("svg: band bounds must match series")
	}
	all := append(append([]float64(nil), series...), opts.Baseline...)
	all = append(append(all, opts.Lower...), opts.Upper...)
	f, err := newFrame(width, height, opts.Padding, all, opts.AxisColor, opts.GridColor)
	if err != nil {
		return "", err
	}
	strokeColor := fallback(opts.StrokeColor, "#2563eb")
	fillColor := fallback(opts.FillColor, "rgba(37,99,235,0.12)")
	baselineColor := fallback(opts.BaselineColor, "#94a3b8")

	xs := linePositions(f, len(series))
	path := polyline(f, xs, series)

	var b strings.Builder
	f.open(&b, "line", opts.Title, opts.Description, "Line chart", "Monthly sales")
	f.grid(&b, opts.TickCount)

	if band {
		bandColor := fallback(opts.BandColor, "rgba(124,58,237,0.15)")
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"none\" data-series=\"band\"></path>", bandPath(f, xs, opts.Lower, opts.Upper), bandColor)
	} else {
		area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path, xs[len(xs)-1], f.bottom(), xs[0], f.bottom())
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fillColor)
	}

	if len(opts.Baseline) > 0 {
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" stroke-dasharray=\"6,4\" data-series=\"baseline\"></path>", polyline(f, xs, opts.Baseline), baselineColor)
	}
	dash := ""
	if opts.Dashed {
		dash = " stroke-dasharray=\"6,4\""
	}
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"%s data-series=\"main\"></path>", path, strokeColor, dash)

	if opts.ShowDots {
		for i, value := range series {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"><title>%s: %s</title></circle>", xs[i], f.y(value), strokeColor, template.HTMLEscapeString(labels[i]), formatTick(value))
		}
	}
	every := max(opts.LabelEvery, 1)
	for i, label := range labels {
		if i%every == 0 {
			f.xLabel(&b, xs[i], label, false)
		}
	}
	var items []legendItem
	if len(opts.Baseline) > 0 {
		items = append(items,
			legendItem{label: fallback(opts.SeriesLabel, "Sales"), color: strokeColor, dashed: opts.Dashed},
			legendItem{label: fallback(opts.BaselineLabel, "Baseline"), color: baselineColor, dashed: true},
		)
	}
	if band {
		if len(items) == 0 {
			items = append(items, legendItem{label: fallback(opts.SeriesLabel, "Sales"), color: strokeColor, dashed: opts.Dashed})
		}
		items = append(items, legendItem{label: fallback(opts.BandLabel, "Interval"), color: fallback(opts.BandColor, "rgba(124,58,237,0.15)")})
	}
	if len(items) > 0 {
		legend(&b, f, items)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func linePositions(f frame, n int) []float64 {
	xs := make([]float64, n)
	if n == 1 {
		xs[0] = f.padding + f.chartWidth/2
		return xs
	}
	step := f.chartWidth / float64(n-1)
	for i := range xs {
		xs[i] = f.padding + float64(i)*step
	}
	return xs
}

func polyline(f frame, xs, values []float64) string {
	var path strings.Builder
	for i, v := range values {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], f.y(v))
	}
	return path.String()
}

// bandPath traces upper left to right and lower back, closing the shape.
func bandPath(f frame, xs, lower, upper []float64) string {
	var path strings.Builder
	path.WriteString(polyline(f, xs, upper))
	for i := len(lower) - 1; i >= 0; i-- {
		fmt.Fprintf(&path, " L%.2f %.2f", xs[i], f.y(lower[i]))
	}
	path.WriteString(" Z")
	return path.String()
}

type legendItem struct {
	label  string
	color  string
	dashed bool
}

func legend(b *strings.Builder, f frame, items []legendItem) {
	y := f.padding - 14
	if y < 12 {
		y = 12
	}
	x := f.padding
	for _, item := range items {
		dash := ""
		if item.dashed {
			dash = " stroke-dasharray=\"4,3\""
		}
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"2\"%s></line>", x, y-4, x+14, y-4, item.color, dash)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", x+18, y, f.axisColor, template.HTMLEscapeString(item.label))
		x += 110
	}
}
