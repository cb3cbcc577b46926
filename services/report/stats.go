package report

import (
	"math"
	"sort"
	"strconv"
)

// describeRow is the numeric summary of one column: count of non-missing
// values, mean, sample standard deviation, min, quartiles and max.
type describeRow struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	P50    float64
	P75    float64
	Max    float64
}

func describeColumn(name string, values []float64) describeRow {
	var present []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	row := describeRow{Column: name, Count: len(present)}
	if len(present) == 0 {
		row.Mean = math.NaN()
		row.Std = math.NaN()
		row.Min = math.NaN()
		row.P25 = math.NaN()
		row.P50 = math.NaN()
		row.P75 = math.NaN()
		row.Max = math.NaN()
		return row
	}

	var sum float64
	for _, v := range present {
		sum += v
	}
	row.Mean = sum / float64(len(present))

	if len(present) > 1 {
		var sq float64
		for _, v := range present {
			d := v - row.Mean
			sq += d * d
		}
		row.Std = math.Sqrt(sq / float64(len(present)-1))
	} else {
		row.Std = math.NaN()
	}

	sorted := append([]float64{}, present...)
	sort.Float64s(sorted)
	row.Min = sorted[0]
	row.P25 = quantile(sorted, 0.25)
	row.P50 = quantile(sorted, 0.5)
	row.P75 = quantile(sorted, 0.75)
	row.Max = sorted[len(sorted)-1]
	return row
}

// quantile interpolates linearly between the two nearest order
// statistics. values must be sorted ascending and non-empty.
func quantile(values []float64, q float64) float64 {
	if len(values) == 1 {
		return values[0]
	}
	pos := q * float64(len(values)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return values[lo]
	}
	frac := pos - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}

type valueCount struct {
	Value string
	Count int
}

// countValues tallies a column's cells including the missing marker,
// ordered by count descending with first appearance breaking ties.
func countValues(cells []string, limit int) []valueCount {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	for i, cell := range cells {
		if _, ok := counts[cell]; !ok {
			firstSeen[cell] = i
		}
		counts[cell]++
	}

	result := make([]valueCount, 0, len(counts))
	for value, count := range counts {
		result = append(result, valueCount{Value: value, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return firstSeen[result[i].Value] < firstSeen[result[j].Value]
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// columnCells extracts one column of a frame by name.
func (f frame) columnCells(name string) []string {
	idx := -1
	for i, col := range f.columns {
		if col == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	cells := make([]string, len(f.rows))
	for i, row := range f.rows {
		cells[i] = row[idx]
	}
	return cells
}

// columnFloats parses one column of a frame as floats, NaN for missing.
func (f frame) columnFloats(name string) []float64 {
	cells := f.columnCells(name)
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = v
	}
	return values
}

func (f frame) missingCount(name string) int {
	count := 0
	for _, cell := range f.columnCells(name) {
		if cell == "" {
			count++
		}
	}
	return count
}
