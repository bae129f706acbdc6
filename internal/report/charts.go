package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
)

var (
	barColor     = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	scatterColor = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	lineColor    = color.RGBA{R: 220, G: 90, B: 60, A: 255}
)

type chartFunc func(r *Report) (*plot.Plot, error)

type chartSpec struct {
	name string
	draw chartFunc
}

var chartSpecs = []chartSpec{
	{"releases_by_year", releasesChart},
	{"genre_distribution", genreShareChart},
	{"top_actors", func(r *Report) (*plot.Plot, error) {
		return horizontalCounts("Top Actors by Number of Movies", "Count", r.Actors)
	}},
	{"top_directors", func(r *Report) (*plot.Plot, error) {
		return horizontalCounts("Top Directors by Number of Movies Directed", "Count", r.Directors)
	}},
	{"duration_vs_rating", func(r *Report) (*plot.Plot, error) {
		return scatterChart("Relationship between Movie Duration and Rating", "Duration (minutes)", "Rating", r.DurationRating)
	}},
	{"genre_ratings", genreRatingChart},
	{"top_rated", topRatedChart},
	{"collaboration_terms", func(r *Report) (*plot.Plot, error) {
		return horizontalCounts("Director-Actor Collaboration Terms", "Occurrences", r.Terms)
	}},
	{"rating_trend", trendChart},
	{"actual_vs_predicted", func(r *Report) (*plot.Plot, error) {
		return scatterChart("Actual vs. Predicted Ratings", "Actual Rating", "Predicted Rating", r.Predictions)
	}},
}

// WriteCharts renders every chart that has data as dir/<prefix><name>.png
// and returns the written paths.
func WriteCharts(dir, prefix string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create charts directory: %w", err)
	}
	var written []string
	for _, spec := range chartSpecs {
		p, err := spec.draw(r)
		if errors.Is(err, plotter.ErrNoData) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("chart %s: %w", spec.name, err)
		}
		path := filepath.Join(dir, prefix+spec.name+".png")
		if err := p.Save(chartWidth, chartHeight, path); err != nil {
			return written, fmt.Errorf("save chart %s: %w", spec.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func releasesChart(r *Report) (*plot.Plot, error) {
	values := make(plotter.Values, len(r.Releases))
	labels := make([]string, len(r.Releases))
	for i, c := range r.Releases {
		values[i] = float64(c.Count)
		labels[i] = c.Label
	}
	return barChart("Movie Releases Over the Years", "Year", "Number of Movies Released", values, labels, false)
}

// genreShareChart draws each genre's share of genre tags as a percentage.
func genreShareChart(r *Report) (*plot.Plot, error) {
	total := 0
	for _, c := range r.Genres {
		total += c.Count
	}
	values := make(plotter.Values, len(r.Genres))
	labels := make([]string, len(r.Genres))
	for i, c := range r.Genres {
		if total > 0 {
			values[i] = float64(c.Count) * 100 / float64(total)
		}
		labels[i] = c.Label
	}
	return barChart("Distribution of Movies Across Genres", "Genre", "Share (%)", values, labels, false)
}

func genreRatingChart(r *Report) (*plot.Plot, error) {
	values := make(plotter.Values, len(r.GenreRatings))
	labels := make([]string, len(r.GenreRatings))
	// Highest mean at the top of a horizontal chart.
	for i, g := range r.GenreRatings {
		j := len(r.GenreRatings) - 1 - i
		values[j] = g.Mean
		labels[j] = g.Label
	}
	return barChart("Average Rating by Genre", "Average Rating", "Genre", values, labels, true)
}

func topRatedChart(r *Report) (*plot.Plot, error) {
	values := make(plotter.Values, len(r.TopRated))
	labels := make([]string, len(r.TopRated))
	for i, m := range r.TopRated {
		values[i] = m.Rating
		labels[i] = m.Name
	}
	p, err := barChart("Top Rated Movies", "Movie Title", "Rating", values, labels, false)
	if err != nil {
		return nil, err
	}
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = -1
	return p, nil
}

func horizontalCounts(title, xLabel string, counts []Count) (*plot.Plot, error) {
	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		j := len(counts) - 1 - i
		values[j] = float64(c.Count)
		labels[j] = c.Label
	}
	return barChart(title, xLabel, "", values, labels, true)
}

func barChart(title, xLabel, yLabel string, values plotter.Values, labels []string, horizontal bool) (*plot.Plot, error) {
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	bars.Horizontal = horizontal

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(bars)
	if horizontal {
		p.NominalY(labels...)
	} else {
		p.NominalX(labels...)
	}
	return p, nil
}

func scatterChart(title, xLabel, yLabel string, points []Point) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, plotter.ErrNoData
	}
	scatter, err := plotter.NewScatter(toXYs(points))
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = scatterColor
	scatter.GlyphStyle.Radius = vg.Points(2)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid(), scatter)
	return p, nil
}

func trendChart(r *Report) (*plot.Plot, error) {
	if len(r.RatingTrend) == 0 {
		return nil, plotter.ErrNoData
	}
	line, points, err := plotter.NewLinePoints(toXYs(r.RatingTrend))
	if err != nil {
		return nil, err
	}
	line.Color = lineColor
	points.GlyphStyle.Color = lineColor
	points.GlyphStyle.Radius = vg.Points(2)

	p := plot.New()
	p.Title.Text = "Temporal Trends of Average Rating Over Years"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Average Rating"
	p.X.Tick.Marker = yearTicks{}
	p.Add(plotter.NewGrid(), line, points)
	return p, nil
}

// yearTicks labels the x axis with whole years.
type yearTicks struct{}

func (yearTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = strconv.Itoa(int(ticks[i].Value))
		}
	}
	return ticks
}

func toXYs(points []Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X, xys[i].Y = p.X, p.Y
	}
	return xys
}
