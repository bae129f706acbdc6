package dataset

import (
	"strconv"
	"strings"
)

// Column names of the source extract.
const (
	ColName     = "Name"
	ColYear     = "Year"
	ColDuration = "Duration"
	ColGenre    = "Genre"
	ColRating   = "Rating"
	ColVotes    = "Votes"
	ColDirector = "Director"
	ColActor1   = "Actor 1"
	ColActor2   = "Actor 2"
	ColActor3   = "Actor 3"
)

// RequiredColumns must all be present in the header of a loadable file.
var RequiredColumns = []string{
	ColName, ColYear, ColDuration, ColGenre, ColRating,
	ColVotes, ColDirector, ColActor1, ColActor2, ColActor3,
}

// Kind classifies a cell value.
type Kind uint8

const (
	Missing Kind = iota
	Text
	Number
)

// Cell is a single table value.
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
}

func MissingCell() Cell { return Cell{} }

// TextCell returns a Text cell, or Missing when s is blank.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Str: s}
}

func NumberCell(v float64) Cell { return Cell{Kind: Number, Num: v} }

func (c Cell) IsMissing() bool { return c.Kind == Missing }

// String renders the cell the way it is written back to CSV. Missing is "".
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Str
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float reports the numeric value of a Number cell, or of a Text cell that
// parses as a float.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case Number:
		return c.Num, true
	case Text:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// Row holds one cell per table column, in header order.
type Row []Cell

// Table is an ordered header plus ordered rows.
type Table struct {
	Columns []string
	Rows    []Row
	index   map[string]int
}

// NewTable builds a Table. Rows shorter than the header are padded with
// Missing cells.
func NewTable(columns []string, rows []Row) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.reindex()
	t.Rows = make([]Row, len(rows))
	for i, row := range rows {
		padded := make(Row, len(columns))
		copy(padded, row)
		t.Rows[i] = padded
	}
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell at row i of the named column; unknown columns read
// as Missing.
func (t *Table) Value(i int, column string) Cell {
	idx, ok := t.Index(column)
	if !ok || i < 0 || i >= len(t.Rows) {
		return Cell{}
	}
	return t.Rows[i][idx]
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) []Cell {
	idx, ok := t.Index(name)
	if !ok {
		return nil
	}
	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return NewTable(t.Columns, t.Rows)
}

// Equal reports whether both tables have the same header and cells.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != other.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		for j := range t.Rows[i] {
			if t.Rows[i][j] != other.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// MissingCounts returns the number of Missing cells per column, in header
// order.
func (t *Table) MissingCounts() []int {
	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for j, cell := range row {
			if cell.IsMissing() {
				counts[j]++
			}
		}
	}
	return counts
}
