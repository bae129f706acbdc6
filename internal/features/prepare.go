package features

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"marquee/internal/dataset"
)

// Predictors are the feature columns, in matrix order.
var Predictors = []string{dataset.ColYear, dataset.ColDuration, dataset.ColVotes}

// Target is the column the model learns.
const Target = dataset.ColRating

// ErrEmptyDataset is returned when too few labelled rows remain to split.
var ErrEmptyDataset = errors.New("not enough labelled rows")

// Options controls the split.
type Options struct {
	TestFraction float64
	Seed         uint64
}

// DefaultOptions hold an 80/20 split seeded with 42.
func DefaultOptions() Options {
	return Options{TestFraction: 0.2, Seed: 42}
}

// Prepared is a split, encoded and imputed modelling dataset.
type Prepared struct {
	Columns []string
	TrainX  [][]float64
	TrainY  []float64
	TestX   [][]float64
	TestY   []float64
	// TrainRows and TestRows index the source table rows behind each
	// matrix row.
	TrainRows []int
	TestRows  []int
	// Medians holds the per-column fill values learned from the training
	// partition.
	Medians   []float64
	Encoder   *OrdinalEncoder
	Unlabeled int
	Imputed   []int
}

// Prepare builds the model inputs from a cleaned table.
func Prepare(t *dataset.Table, opts Options) (*Prepared, error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return nil, fmt.Errorf("test fraction %v out of range (0,1)", opts.TestFraction)
	}
	if _, ok := t.Index(Target); !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrMissingColumn, Target)
	}
	for _, name := range Predictors {
		if _, ok := t.Index(name); !ok {
			return nil, fmt.Errorf("%w: %s", dataset.ErrMissingColumn, name)
		}
	}

	labelled := make([]int, 0, t.Len())
	targets := make([]float64, 0, t.Len())
	for i := range t.Rows {
		y, ok := t.Value(i, Target).Float()
		if !ok {
			continue
		}
		labelled = append(labelled, i)
		targets = append(targets, y)
	}

	// Categories come from every labelled row, before the split. Only the
	// medians are restricted to the training partition.
	cols := make([][]dataset.Cell, len(Predictors))
	for j, name := range Predictors {
		cells := make([]dataset.Cell, len(labelled))
		for k, row := range labelled {
			cells[k] = t.Value(row, name)
		}
		cols[j] = cells
	}
	encoder := FitOrdinal(cols)

	trainPos, testPos, err := Split(len(labelled), opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}

	p := &Prepared{
		Columns:   append([]string(nil), Predictors...),
		Encoder:   encoder,
		Unlabeled: t.Len() - len(labelled),
		Imputed:   make([]int, len(Predictors)),
	}
	p.TrainRows = pick(labelled, trainPos)
	p.TestRows = pick(labelled, testPos)
	p.TrainY = pickFloats(targets, trainPos)
	p.TestY = pickFloats(targets, testPos)

	p.TrainX = p.encode(t, p.TrainRows)
	p.TestX = p.encode(t, p.TestRows)
	p.Medians = ColumnMedians(p.TrainX)
	p.impute(p.TrainX)
	p.impute(p.TestX)
	return p, nil
}

func (p *Prepared) encode(t *dataset.Table, rows []int) [][]float64 {
	out := make([][]float64, len(rows))
	for k, row := range rows {
		vec := make([]float64, len(Predictors))
		for j, name := range Predictors {
			vec[j] = p.Encoder.Encode(j, t.Value(row, name))
		}
		out[k] = vec
	}
	return out
}

func (p *Prepared) impute(x [][]float64) {
	for _, vec := range x {
		for j, v := range vec {
			if math.IsNaN(v) {
				vec[j] = p.Medians[j]
				p.Imputed[j]++
			}
		}
	}
}

// Split returns a seeded permutation of 0..n-1 partitioned into train and
// test positions. The test share is rounded up, as the usual 80/20 splitter
// does.
func Split(n int, testFraction float64, seed uint64) (train, test []int, err error) {
	if n == 0 {
		return nil, nil, ErrEmptyDataset
	}
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest < 1 || nTest >= n {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split with test fraction %v", ErrEmptyDataset, n, testFraction)
	}
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// ColumnMedians returns the median of the non-NaN values in each column of x.
// A column with no values has median 0.
func ColumnMedians(x [][]float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	medians := make([]float64, len(x[0]))
	values := make([]float64, 0, len(x))
	for j := range medians {
		values = values[:0]
		for _, vec := range x {
			if !math.IsNaN(vec[j]) {
				values = append(values, vec[j])
			}
		}
		medians[j] = Median(values)
	}
	return medians
}

// Median averages the two middle values for an even count. It sorts values
// in place and returns 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sort.Float64s(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func pick(src []int, pos []int) []int {
	out := make([]int, len(pos))
	for k, p := range pos {
		out[k] = src[p]
	}
	return out
}

func pickFloats(src []float64, pos []int) []float64 {
	out := make([]float64, len(pos))
	for k, p := range pos {
		out[k] = src[p]
	}
	return out
}
