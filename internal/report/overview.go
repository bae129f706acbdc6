package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"marquee/internal/dataset"
)

// Summary describes one numeric column.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Overview is the shape of a table plus per-column missing counts and
// summaries of the numeric columns.
type Overview struct {
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	Missing []Count   `json:"missing"`
	Numeric []Summary `json:"numeric"`
}

var summaryColumns = []string{dataset.ColYear, dataset.ColDuration, dataset.ColRating, dataset.ColVotes}

// NewOverview summarizes t.
func NewOverview(t *dataset.Table) Overview {
	ov := Overview{Rows: t.Len(), Columns: len(t.Columns)}
	for j, n := range t.MissingCounts() {
		ov.Missing = append(ov.Missing, Count{Label: t.Columns[j], Count: n})
	}
	for _, column := range summaryColumns {
		if _, ok := t.Index(column); !ok {
			continue
		}
		var values []float64
		for _, cell := range t.Column(column) {
			if v, ok := cell.Float(); ok {
				values = append(values, v)
			}
		}
		ov.Numeric = append(ov.Numeric, Summarize(column, values))
	}
	return ov
}

// Summarize computes count, mean, sample standard deviation, extremes and
// quartiles of values. Quartiles interpolate linearly between the closest
// ranks. An empty column summarizes to zeros so the result stays JSON
// encodable.
func Summarize(column string, values []float64) Summary {
	s := Summary{Column: column, Count: len(values)}
	if len(values) == 0 {
		return s
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates between closest ranks of sorted, matching the
// describe() convention of common dataframe tools. gonum's stat.Quantile
// offers only the empirical and R type 4 estimators.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
