package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultContentColumns is the span checked for rows that carry no data.
var DefaultContentColumns = []string{
	ColYear, ColDuration, ColGenre, ColRating, ColVotes, ColDirector, ColActor1, ColActor2,
}

// DefaultSentinelYears are release years of an incomplete extract.
var DefaultSentinelYears = []string{"2022"}

// numericColumns are coerced by Clean; a row with none of them is dropped.
var numericColumns = []string{ColYear, ColDuration, ColRating, ColVotes}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// CleanOptions controls which rows Clean drops.
type CleanOptions struct {
	ContentColumns []string
	SentinelYears  []string
}

// CleanStats reports what a cleaning pass removed.
type CleanStats struct {
	RowsIn           int            `json:"rows_in"`
	RowsOut          int            `json:"rows_out"`
	DroppedEmpty     int            `json:"dropped_empty"`
	DroppedDuplicate int            `json:"dropped_duplicate"`
	DroppedNoNumeric int            `json:"dropped_no_numeric"`
	DroppedSentinel  int            `json:"dropped_sentinel"`
	CoercionFailures map[string]int `json:"coercion_failures,omitempty"`
}

// Clean returns a cleaned copy of t. Year, Duration, Votes and Rating are
// stripped of their textual noise and converted to Number cells; values that
// do not convert become Missing. Rows are then dropped when their content
// span is empty, when they repeat an earlier (Name, Year), when no numeric
// column has a value, or when Year is a sentinel. Clean(Clean(t)) equals
// Clean(t).
//
// Duplicates are keyed on the converted Year, so "(2001)" and "2001" for the
// same Name count as one movie and only the first is kept.
func Clean(t *Table, opts CleanOptions) (*Table, CleanStats) {
	stats := CleanStats{RowsIn: t.Len(), CoercionFailures: map[string]int{}}
	content := opts.ContentColumns
	if len(content) == 0 {
		content = DefaultContentColumns
	}
	sentinels := opts.SentinelYears
	if sentinels == nil {
		sentinels = DefaultSentinelYears
	}
	sentinelSet := make(map[string]struct{}, len(sentinels))
	for _, year := range sentinels {
		sentinelSet[strings.TrimSpace(year)] = struct{}{}
	}

	coercers := map[int]coercer{}
	for _, name := range numericColumns {
		if idx, ok := t.Index(name); ok {
			coercers[idx] = coercerFor(name)
		}
	}
	contentIdx := indexes(t, content)
	numericIdx := indexes(t, numericColumns)
	nameIdx, hasName := t.Index(ColName)
	yearIdx, hasYear := t.Index(ColYear)

	seen := make(map[[2]string]struct{}, t.Len())
	kept := make([]Row, 0, t.Len())
	for _, src := range t.Rows {
		row := make(Row, len(src))
		copy(row, src)
		for idx, coerce := range coercers {
			if row[idx].IsMissing() {
				continue
			}
			cell, ok := coerce(row[idx])
			if !ok {
				stats.CoercionFailures[t.Columns[idx]]++
			}
			row[idx] = cell
		}

		if allMissing(row, contentIdx) {
			stats.DroppedEmpty++
			continue
		}

		var key [2]string
		if hasName {
			key[0] = strings.TrimSpace(row[nameIdx].String())
		}
		if hasYear {
			key[1] = row[yearIdx].String()
		}
		if _, dup := seen[key]; dup {
			stats.DroppedDuplicate++
			continue
		}
		seen[key] = struct{}{}

		if allMissing(row, numericIdx) {
			stats.DroppedNoNumeric++
			continue
		}
		if hasYear && !row[yearIdx].IsMissing() {
			if _, bad := sentinelSet[row[yearIdx].String()]; bad {
				stats.DroppedSentinel++
				continue
			}
		}
		kept = append(kept, row)
	}

	if len(stats.CoercionFailures) == 0 {
		stats.CoercionFailures = nil
	}
	out := NewTable(t.Columns, nil)
	out.Rows = kept
	stats.RowsOut = len(kept)
	return out, stats
}

func indexes(t *Table, names []string) []int {
	out := make([]int, 0, len(names))
	for _, name := range names {
		if idx, ok := t.Index(name); ok {
			out = append(out, idx)
		}
	}
	return out
}

func allMissing(row Row, idx []int) bool {
	for _, i := range idx {
		if !row[i].IsMissing() {
			return false
		}
	}
	return true
}

// coercer converts a present cell, reporting false when it had to fall back
// to Missing.
type coercer func(Cell) (Cell, bool)

func coercerFor(column string) coercer {
	switch column {
	case ColYear:
		return coerceYear
	case ColDuration:
		return coerceDuration
	case ColVotes:
		return coerceVotes
	default:
		return coerceRating
	}
}

// StripYear removes parentheses: "(2019)" becomes "2019".
func StripYear(s string) string {
	return strings.TrimSpace(strings.NewReplacer("(", "", ")", "").Replace(s))
}

// StripDuration removes the " min" unit: "120 min" becomes "120".
func StripDuration(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " min", ""))
}

// StripVotes removes thousands separators: "1,234" becomes "1234".
func StripVotes(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}

func coerceYear(c Cell) (Cell, bool) {
	s := StripYear(c.String())
	if !yearPattern.MatchString(s) {
		return MissingCell(), false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return MissingCell(), false
	}
	return NumberCell(float64(v)), true
}

func coerceDuration(c Cell) (Cell, bool) {
	v, err := strconv.ParseUint(StripDuration(c.String()), 10, 32)
	if err != nil {
		return MissingCell(), false
	}
	return NumberCell(float64(v)), true
}

func coerceVotes(c Cell) (Cell, bool) {
	v, err := strconv.ParseFloat(StripVotes(c.String()), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingCell(), false
	}
	return NumberCell(v), true
}

func coerceRating(c Cell) (Cell, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.String()), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingCell(), false
	}
	return NumberCell(v), true
}
