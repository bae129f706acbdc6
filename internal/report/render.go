package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gonum.org/v1/gonum/stat"

	"marquee/internal/model"
)

const (
	ansiReset = "\x1b[0m"
	ansiBlue  = "\x1b[34m"
	ansiBold  = "\x1b[1m"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// RenderOptions controls console output.
type RenderOptions struct {
	// Colorize enables ANSI section headers; set it only for terminals.
	Colorize bool
}

// Render writes the report tables to w.
func Render(w io.Writer, r *Report, opts RenderOptions) error {
	var b strings.Builder
	writeSection(&b, "Dataset", opts)
	fmt.Fprintf(&b, "%s rows, %d columns\n\n", humanize.Comma(int64(r.Overview.Rows)), r.Overview.Columns)

	missing := make([][]string, 0, len(r.Overview.Missing))
	for _, m := range r.Overview.Missing {
		missing = append(missing, []string{m.Label, humanize.Comma(int64(m.Count))})
	}
	b.WriteString(renderTable([]string{"Column", "Missing"}, missing, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n\n")

	summary := make([][]string, 0, len(r.Overview.Numeric))
	for _, s := range r.Overview.Numeric {
		summary = append(summary, []string{
			s.Column, humanize.Comma(int64(s.Count)), formatFloat(s.Mean), formatFloat(s.Std),
			formatFloat(s.Min), formatFloat(s.Q25), formatFloat(s.Median), formatFloat(s.Q75), formatFloat(s.Max),
		})
	}
	b.WriteString(renderTable(
		[]string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"},
		summary,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	b.WriteString("\n")

	writeCounts(&b, "Movie releases by year", "Year", r.Releases, opts)
	writeShares(&b, "Genre distribution", r.Genres, opts)
	writeCounts(&b, "Top actors", "Actor", r.Actors, opts)
	writeCounts(&b, "Top directors", "Director", r.Directors, opts)

	writeSection(&b, "Duration vs rating", opts)
	fmt.Fprintf(&b, "%s movies with both duration and rating", humanize.Comma(int64(len(r.DurationRating))))
	if len(r.DurationRating) > 1 {
		xs, ys := splitPoints(r.DurationRating)
		fmt.Fprintf(&b, "; correlation %s", formatFloat(stat.Correlation(xs, ys, nil)))
	}
	b.WriteString("\n")

	writeSection(&b, "Average rating by genre", opts)
	genreRows := make([][]string, 0, len(r.GenreRatings))
	for _, g := range r.GenreRatings {
		genreRows = append(genreRows, []string{g.Label, formatFloat(g.Mean), humanize.Comma(int64(g.N))})
	}
	b.WriteString(renderTable([]string{"Genre", "Mean rating", "Movies"}, genreRows, []columnAlignment{alignLeft, alignRight, alignRight}))
	b.WriteString("\n")

	writeSection(&b, "Top rated movies", opts)
	ratedRows := make([][]string, 0, len(r.TopRated))
	for _, m := range r.TopRated {
		ratedRows = append(ratedRows, []string{m.Name, m.Year, formatFloat(m.Rating), humanize.Commaf(m.Votes)})
	}
	b.WriteString(renderTable([]string{"Name", "Year", "Rating", "Votes"}, ratedRows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
	b.WriteString("\n")

	writeSection(&b, "Director-actor collaborations", opts)
	collabRows := make([][]string, 0, len(r.Collaborations))
	for _, c := range r.Collaborations {
		collabRows = append(collabRows, []string{c.Director, c.Actor, strconv.Itoa(c.Count)})
	}
	b.WriteString(renderTable([]string{"Director", "Actor 1", "Movies"}, collabRows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	b.WriteString("\n")

	writeCounts(&b, "Most frequent names in collaborations", "Term", r.Terms, opts)

	writeSection(&b, "Average rating over years", opts)
	trendRows := make([][]string, 0, len(r.RatingTrend))
	for _, p := range r.RatingTrend {
		trendRows = append(trendRows, []string{strconv.Itoa(int(p.X)), formatFloat(p.Y)})
	}
	b.WriteString(renderTable([]string{"Year", "Mean rating"}, trendRows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderEvaluation writes the model score.
func RenderEvaluation(w io.Writer, eval model.Evaluation, opts RenderOptions) error {
	var b strings.Builder
	writeSection(&b, "Gradient boosting regressor", opts)
	rows := [][]string{
		{"Training rows", humanize.Comma(int64(eval.TrainSize))},
		{"Test rows", humanize.Comma(int64(eval.TestSize))},
		{"Baseline MSE (training mean)", formatFloat(eval.BaselineMSE)},
		{"RMSE", formatFloat(eval.RMSE)},
	}
	b.WriteString(renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")
	line := fmt.Sprintf("Mean Squared Error: %.2f", eval.MSE)
	if opts.Colorize {
		line = ansiBold + line + ansiReset
	}
	b.WriteString(line)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, title string, opts RenderOptions) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if opts.Colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	b.WriteString("\n")
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")
}

func writeCounts(b *strings.Builder, title, label string, counts []Count, opts RenderOptions) {
	writeSection(b, title, opts)
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, humanize.Comma(int64(c.Count))})
	}
	b.WriteString(renderTable([]string{label, "Movies"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")
}

func writeShares(b *strings.Builder, title string, counts []Count, opts RenderOptions) {
	writeSection(b, title, opts)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.Count) * 100 / float64(total)
		}
		rows = append(rows, []string{c.Label, humanize.Comma(int64(c.Count)), fmt.Sprintf("%.1f%%", share)})
	}
	b.WriteString(renderTable([]string{"Genre", "Movies", "Share"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
	b.WriteString("\n")
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func splitPoints(points []Point) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}
