package report

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"marquee/internal/dataset"
	"marquee/internal/model"
)

// Count is a label with its number of occurrences.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Point is an (x, y) observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Average is the mean of N values grouped under Label.
type Average struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	N     int     `json:"n"`
}

// RatedMovie is a row of the top-rated listing.
type RatedMovie struct {
	Name   string  `json:"name"`
	Year   string  `json:"year"`
	Rating float64 `json:"rating"`
	Votes  float64 `json:"votes"`
}

// Collaboration counts movies shared by a director and lead actor.
type Collaboration struct {
	Director string `json:"director"`
	Actor    string `json:"actor"`
	Count    int    `json:"count"`
}

const genreSeparator = ", "

var genreCaser = cases.Title(language.English)

// tally counts labels and remembers first-seen order for stable ties.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally { return &tally{counts: map[string]int{}} }

func (t *tally) add(label string) {
	if _, ok := t.counts[label]; !ok {
		t.order = append(t.order, label)
	}
	t.counts[label]++
}

// top returns labels by descending count, first-seen order breaking ties.
// n <= 0 returns every label.
func (t *tally) top(n int) []Count {
	out := make([]Count, 0, len(t.order))
	for _, label := range t.order {
		out = append(out, Count{Label: label, Count: t.counts[label]})
	}
	slices.SortStableFunc(out, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	return limit(out, n)
}

func limit[T any](values []T, n int) []T {
	if n > 0 && len(values) > n {
		return values[:n]
	}
	return values
}

func textValue(t *dataset.Table, i int, column string) (string, bool) {
	cell := t.Value(i, column)
	if cell.IsMissing() {
		return "", false
	}
	s := strings.TrimSpace(cell.String())
	return s, s != ""
}

func numberValue(t *dataset.Table, i int, column string) (float64, bool) {
	return t.Value(i, column).Float()
}

// ReleasesByYear counts movies per release year, oldest first.
func ReleasesByYear(t *dataset.Table) []Count {
	counts := newTally()
	for i := range t.Rows {
		if year, ok := textValue(t, i, dataset.ColYear); ok {
			counts.add(year)
		}
	}
	out := counts.top(0)
	slices.SortFunc(out, func(a, b Count) int { return strings.Compare(a.Label, b.Label) })
	return out
}

// SplitGenres splits a Genre value into title-cased genre names.
func SplitGenres(value string) []string {
	parts := strings.Split(value, genreSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.Trim(part, ","))
		if part == "" {
			continue
		}
		out = append(out, genreCaser.String(part))
	}
	return out
}

// GenreDistribution counts movies per individual genre; a movie listed under
// several genres counts once for each.
func GenreDistribution(t *dataset.Table, n int) []Count {
	counts := newTally()
	for i := range t.Rows {
		value, ok := textValue(t, i, dataset.ColGenre)
		if !ok {
			continue
		}
		for _, genre := range SplitGenres(value) {
			counts.add(genre)
		}
	}
	return counts.top(n)
}

// TopActors counts lead-actor credits.
func TopActors(t *dataset.Table, n int) []Count {
	return valueCounts(t, dataset.ColActor1, n)
}

// TopDirectors counts directing credits.
func TopDirectors(t *dataset.Table, n int) []Count {
	return valueCounts(t, dataset.ColDirector, n)
}

func valueCounts(t *dataset.Table, column string, n int) []Count {
	counts := newTally()
	for i := range t.Rows {
		if v, ok := textValue(t, i, column); ok {
			counts.add(v)
		}
	}
	return counts.top(n)
}

// DurationVsRating pairs duration (x) with rating (y) where both are known.
func DurationVsRating(t *dataset.Table) []Point {
	var out []Point
	for i := range t.Rows {
		d, okD := numberValue(t, i, dataset.ColDuration)
		r, okR := numberValue(t, i, dataset.ColRating)
		if okD && okR {
			out = append(out, Point{X: d, Y: r})
		}
	}
	return out
}

// GenreRatings averages rating per genre, highest first.
func GenreRatings(t *dataset.Table) []Average {
	sums := map[string]float64{}
	counts := newTally()
	for i := range t.Rows {
		value, okG := textValue(t, i, dataset.ColGenre)
		rating, okR := numberValue(t, i, dataset.ColRating)
		if !okG || !okR {
			continue
		}
		for _, genre := range SplitGenres(value) {
			sums[genre] += rating
			counts.add(genre)
		}
	}
	out := make([]Average, 0, len(counts.order))
	for _, genre := range counts.order {
		n := counts.counts[genre]
		out = append(out, Average{Label: genre, Mean: sums[genre] / float64(n), N: n})
	}
	slices.SortStableFunc(out, func(a, b Average) int { return cmp.Compare(b.Mean, a.Mean) })
	return out
}

// TopRated lists the highest-rated movies; equal ratings keep input order.
func TopRated(t *dataset.Table, n int) []RatedMovie {
	var out []RatedMovie
	for i := range t.Rows {
		rating, ok := numberValue(t, i, dataset.ColRating)
		if !ok {
			continue
		}
		name, _ := textValue(t, i, dataset.ColName)
		year, _ := textValue(t, i, dataset.ColYear)
		votes, _ := numberValue(t, i, dataset.ColVotes)
		out = append(out, RatedMovie{Name: name, Year: year, Rating: rating, Votes: votes})
	}
	slices.SortStableFunc(out, func(a, b RatedMovie) int { return cmp.Compare(b.Rating, a.Rating) })
	return limit(out, n)
}

// Collaborations counts movies per (director, lead actor) pair.
func Collaborations(t *dataset.Table, n int) []Collaboration {
	type pair struct{ director, actor string }
	counts := map[pair]int{}
	var order []pair
	for i := range t.Rows {
		director, okD := textValue(t, i, dataset.ColDirector)
		actor, okA := textValue(t, i, dataset.ColActor1)
		if !okD || !okA {
			continue
		}
		key := pair{director, actor}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	out := make([]Collaboration, 0, len(order))
	for _, key := range order {
		out = append(out, Collaboration{Director: key.director, Actor: key.actor, Count: counts[key]})
	}
	slices.SortStableFunc(out, func(a, b Collaboration) int { return cmp.Compare(b.Count, a.Count) })
	return limit(out, n)
}

// TermFrequencies counts words across "Director Actor 1" for rows with both,
// the statistic a word cloud of collaborations is drawn from.
func TermFrequencies(t *dataset.Table, n int) []Count {
	counts := newTally()
	for i := range t.Rows {
		director, okD := textValue(t, i, dataset.ColDirector)
		actor, okA := textValue(t, i, dataset.ColActor1)
		if !okD || !okA {
			continue
		}
		for _, word := range strings.Fields(director + " " + actor) {
			word = strings.Trim(word, ".,;:'\"()")
			if len([]rune(word)) < 2 {
				continue
			}
			counts.add(word)
		}
	}
	return counts.top(n)
}

// RatingTrend averages rating per release year, oldest first.
func RatingTrend(t *dataset.Table) []Point {
	sums := map[float64]float64{}
	counts := map[float64]int{}
	for i := range t.Rows {
		year, okY := numberValue(t, i, dataset.ColYear)
		rating, okR := numberValue(t, i, dataset.ColRating)
		if !okY || !okR {
			continue
		}
		sums[year] += rating
		counts[year]++
	}
	out := make([]Point, 0, len(counts))
	for year, n := range counts {
		out = append(out, Point{X: year, Y: sums[year] / float64(n)})
	}
	slices.SortFunc(out, func(a, b Point) int { return cmp.Compare(a.X, b.X) })
	return out
}

// ActualVsPredicted pairs each held-out rating (x) with its prediction (y).
func ActualVsPredicted(eval model.Evaluation) []Point {
	n := min(len(eval.Actual), len(eval.Predicted))
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = Point{X: eval.Actual[i], Y: eval.Predicted[i]}
	}
	return out
}
