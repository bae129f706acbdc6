package features

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"marquee/internal/dataset"
)

// OrdinalEncoder maps each column's distinct values to their rank.
type OrdinalEncoder struct {
	Categories [][]string
}

// FitOrdinal learns the sorted distinct present values of each column.
func FitOrdinal(columns [][]dataset.Cell) *OrdinalEncoder {
	enc := &OrdinalEncoder{Categories: make([][]string, len(columns))}
	for j, cells := range columns {
		seen := make(map[string]struct{}, len(cells))
		cats := make([]string, 0, len(cells))
		for _, cell := range cells {
			if cell.IsMissing() {
				continue
			}
			v := cell.String()
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
		slices.SortFunc(cats, compareValues)
		enc.Categories[j] = cats
	}
	return enc
}

// Encode returns the rank of c among column j's categories. Missing and
// values never seen during fitting encode as NaN and are left to the
// imputer, so two distinct values never share a code.
func (e *OrdinalEncoder) Encode(j int, c dataset.Cell) float64 {
	if c.IsMissing() {
		return math.NaN()
	}
	idx, found := slices.BinarySearchFunc(e.Categories[j], c.String(), compareValues)
	if !found {
		return math.NaN()
	}
	return float64(idx)
}

// compareValues orders numerically when both values parse as numbers and
// falls back to byte order otherwise or on numeric ties.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return strings.Compare(a, b)
}
