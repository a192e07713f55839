package tabular

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Bundle maps chart identifiers (pie_chart, box_plot, bar_chart) to
// chart specifications ready for the charting front end.
type Bundle map[string]ChartSpec

// ChartSpec is a plotly-shaped chart payload: one or more series plus
// layout metadata.
type ChartSpec struct {
	Data   []any  `json:"data"`
	Layout Layout `json:"layout"`
}

// Layout carries the chart title, margins and axis titles.
type Layout struct {
	Title      string `json:"title"`
	Margin     Margin `json:"margin"`
	ShowLegend bool   `json:"showlegend,omitempty"`
	XAxis      *Axis  `json:"xaxis,omitempty"`
	YAxis      *Axis  `json:"yaxis,omitempty"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

// Axis labels one chart axis.
type Axis struct {
	Title string `json:"title"`
}

// PieSeries is a single pie/donut series.
type PieSeries struct {
	Values    []float64 `json:"values"`
	Labels    []string  `json:"labels"`
	Type      string    `json:"type"`
	TextInfo  string    `json:"textinfo"`
	HoverInfo string    `json:"hoverinfo"`
	Hole      float64   `json:"hole"`
}

// BoxSeries is a single box-plot series showing all points.
type BoxSeries struct {
	Y         []float64 `json:"y"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	BoxPoints string    `json:"boxpoints"`
	Jitter    float64   `json:"jitter"`
	PointPos  float64   `json:"pointpos"`
}

// BarSeries is a single bar-chart series.
type BarSeries struct {
	X      []string  `json:"x"`
	Y      []float64 `json:"y"`
	Type   string    `json:"type"`
	Marker Marker    `json:"marker"`
}

// Marker styles chart markers.
type Marker struct {
	Color string `json:"color"`
}

const barMarkerColor = "rgba(55, 128, 191, 0.7)"

// Visualizations derives chart-ready series from a cleaned table's
// category/frequency columns. The bundle is empty when either required
// column is absent or no valid rows survive filtering. A shaping panic
// is caught and logged; whatever entries were already built are
// returned.
func Visualizations(t *Table, logger *slog.Logger) (bundle Bundle) {
	if logger == nil {
		logger = slog.Default()
	}
	bundle = Bundle{}
	if t == nil || t.Empty() {
		return bundle
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("visualization shaping failed",
				slog.String("table", t.Name),
				slog.Any("panic", r))
		}
	}()

	categoryCol := t.Column(ColumnAnswerCategories)
	frequencyCol := t.Column(ColumnWeightedFrequency)
	if categoryCol == nil || frequencyCol == nil {
		logger.Warn("missing required columns for visualization",
			slog.String("table", t.Name))
		return bundle
	}

	categories, frequencies := chartRows(categoryCol, frequencyCol)
	if len(categories) == 0 {
		return bundle
	}

	hole := 0.0
	if len(categories) > 5 {
		hole = 0.3
	}
	bundle["pie_chart"] = ChartSpec{
		Data: []any{PieSeries{
			Values:    frequencies,
			Labels:    categories,
			Type:      "pie",
			TextInfo:  "percent",
			HoverInfo: "label+percent+value",
			Hole:      hole,
		}},
		Layout: Layout{
			Title:      fmt.Sprintf("%s: Weighted Distribution", t.Name),
			Margin:     Margin{L: 20, R: 20, B: 20, T: 40},
			ShowLegend: true,
		},
	}

	// Box plot only when upstream cleaning settled the column as numeric.
	if frequencyCol.Kind == ColumnNumeric {
		bundle["box_plot"] = ChartSpec{
			Data: []any{BoxSeries{
				Y:         frequencies,
				Type:      "box",
				Name:      ColumnWeightedFrequency,
				BoxPoints: "all",
				Jitter:    0.3,
				PointPos:  -1.8,
			}},
			Layout: Layout{
				Title:  fmt.Sprintf("%s: Weighted Frequency Distribution", t.Name),
				Margin: Margin{L: 60, R: 20, B: 40, T: 40},
				YAxis:  &Axis{Title: ColumnWeightedFrequency},
			},
		}
	}

	bundle["bar_chart"] = ChartSpec{
		Data: []any{BarSeries{
			X:      categories,
			Y:      frequencies,
			Type:   "bar",
			Marker: Marker{Color: barMarkerColor},
		}},
		Layout: Layout{
			Title:  fmt.Sprintf("%s: Weighted Frequency by Category", t.Name),
			Margin: Margin{L: 60, R: 20, B: 100, T: 40},
			XAxis:  &Axis{Title: ColumnAnswerCategories},
			YAxis:  &Axis{Title: ColumnWeightedFrequency},
		},
	}

	return bundle
}

// chartRows pairs category labels with parsed frequencies, dropping
// missing categories, total rows, and frequencies that do not parse.
func chartRows(categoryCol, frequencyCol *Column) ([]string, []float64) {
	n := len(categoryCol.Cells)
	categories := make([]string, 0, n)
	frequencies := make([]float64, 0, n)
	for i := 0; i < n && i < len(frequencyCol.Cells); i++ {
		category := categoryCol.Cells[i]
		if category.Kind == CellMissing || IsTotalLabel(category.String()) {
			continue
		}
		freq, ok := parseFrequency(frequencyCol.Cells[i])
		if !ok {
			continue
		}
		categories = append(categories, category.String())
		frequencies = append(frequencies, freq)
	}
	return categories, frequencies
}

// parseFrequency re-parses a frequency cell in case upstream cleaning
// left the column textual.
func parseFrequency(cell Cell) (float64, bool) {
	switch cell.Kind {
	case CellNumber:
		return cell.Number, true
	case CellText:
		s := strings.TrimSpace(strings.ReplaceAll(cell.Text, ",", ""))
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
