package tabular

import (
	"log/slog"
	"math"
	"sort"
)

// ColumnStats holds descriptive statistics for one numeric column.
// Std is nil when the sample standard deviation is undefined (fewer
// than two values).
type ColumnStats struct {
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Std    *float64 `json:"std"`
	Count  int      `json:"count"`
}

// Statistics maps numeric column names to their descriptive stats.
type Statistics map[string]ColumnStats

// Summarize computes descriptive statistics for every numeric column
// whose name is not a code column. Missing cells are excluded from all
// aggregates. A column that cannot be summarized is skipped and logged;
// it never takes the rest of the record down with it.
func Summarize(t *Table, logger *slog.Logger) Statistics {
	if logger == nil {
		logger = slog.Default()
	}
	stats := Statistics{}
	if t == nil || t.Empty() {
		return stats
	}
	for i := range t.Columns {
		col := &t.Columns[i]
		if col.Kind != ColumnNumeric || IsCodeColumn(col.Name) {
			continue
		}
		cs, ok := summarizeColumn(col)
		if !ok {
			logger.Warn("skipping column with no summarizable values",
				slog.String("table", t.Name),
				slog.String("column", col.Name))
			continue
		}
		stats[col.Name] = cs
	}
	return stats
}

// summarizeColumn aggregates the non-missing values of one column.
func summarizeColumn(col *Column) (ColumnStats, bool) {
	values := make([]float64, 0, len(col.Cells))
	for _, cell := range col.Cells {
		if cell.Kind != CellNumber {
			continue
		}
		if math.IsNaN(cell.Number) || math.IsInf(cell.Number, 0) {
			continue
		}
		values = append(values, cell.Number)
	}
	if len(values) == 0 {
		return ColumnStats{}, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	cs := ColumnStats{
		Mean:   Round2(mean),
		Median: Round2(median(sorted)),
		Min:    Round2(sorted[0]),
		Max:    Round2(sorted[len(sorted)-1]),
		Count:  len(values),
	}
	if len(values) > 1 {
		std := Round2(sampleStd(values, mean))
		cs.Std = &std
	}
	return cs, true
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStd computes the sample standard deviation (n-1 denominator).
func sampleStd(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
