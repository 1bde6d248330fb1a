package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame holds the geometry shared by every chart type.
type frame struct {
	width, height int
	padding       float64
	chartWidth    float64
	chartHeight   float64
	minVal        float64
	maxVal        float64
	scale         float64
	axisColor     string
	gridColor     string
}

func newFrame(width, height int, padding float64, values []float64, axisColor, gridColor string) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	f := frame{
		width:       width,
		height:      height,
		padding:     padding,
		chartWidth:  float64(width) - 2*padding,
		chartHeight: float64(height) - 2*padding,
		axisColor:   fallback(axisColor, "#475569"),
		gridColor:   fallback(gridColor, "#cbd5e1"),
	}
	if f.chartWidth <= 0 || f.chartHeight <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}
	f.minVal, f.maxVal = bounds(values)
	if f.minVal > 0 {
		f.minVal = 0
	}
	if f.maxVal < 0 {
		f.maxVal = 0
	}
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	f.scale = f.chartHeight / (f.maxVal - f.minVal)
	return f, nil
}

func (f frame) bottom() float64 {
	return f.padding + f.chartHeight
}

func (f frame) y(value float64) float64 {
	return f.bottom() - (value-f.minVal)*f.scale
}

func (f frame) open(b *strings.Builder, kind, title, desc, defaultTitle, defaultDesc string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", f.width, f.height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(desc, defaultDesc)))
}

func (f frame) grid(b *strings.Builder, ticks int) {
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		y := f.bottom() - ratio*f.chartHeight
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", f.padding, y, f.padding+f.chartWidth, y, f.gridColor)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}
	zeroY := f.y(0)
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-label=\"Axes\">", f.axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding, f.padding, f.bottom())
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, zeroY, f.padding+f.chartWidth, zeroY)
	b.WriteString("</g>")
}

func (f frame) xLabel(b *strings.Builder, x float64, label string, bold bool) {
	weight := ""
	if bold {
		weight = " font-weight=\"bold\""
	}
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\"%s>%s</text>", x, f.bottom()+14, f.axisColor, weight, template.HTMLEscapeString(label))
}

// Empty renders a placeholder chart carrying only a message.
func Empty(width, height int, title, message string) template.HTML {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := frame{width: width, height: height}
	var b strings.Builder
	f.open(&b, "empty", title, message, "Chart", "No data")
	fmt.Fprintf(&b, "<text x=\"%d\" y=\"%d\" fill=\"#64748b\" font-size=\"14\" text-anchor=\"middle\">%s</text>", width/2, height/2, template.HTMLEscapeString(fallback(message, "No data")))
	b.WriteString("</svg>")
	return template.HTML(b.String())
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	minVal, maxVal := series[0], series[0]
	for _, v := range series[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
