package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// Header is the column layout of the movie extract.
const Header = "Name,Year,Duration,Genre,Rating,Votes,Director,Actor 1,Actor 2,Actor 3"

// Movie is one fixture row; fields hold the raw text written to the CSV.
type Movie struct {
	Name, Year, Duration, Genre, Rating, Votes, Director, Actor1, Actor2, Actor3 string
}

func (m Movie) record() []string {
	return []string{m.Name, m.Year, m.Duration, m.Genre, m.Rating, m.Votes, m.Director, m.Actor1, m.Actor2, m.Actor3}
}

// CSV renders movies as CSV text under Header.
func CSV(movies ...Movie) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, m := range movies {
		fields := m.record()
		for i, f := range fields {
			if strings.ContainsAny(f, ",\"\n") {
				fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
			}
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteCSV writes movies as UTF-8 CSV to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name string, movies ...Movie) string {
	t.Helper()
	return WriteBytes(t, filepath.Join(dir, name), []byte(CSV(movies...)))
}

// WriteLatin1CSV writes movies encoded as ISO-8859-1.
func WriteLatin1CSV(t testing.TB, dir, name string, movies ...Movie) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(CSV(movies...))
	if err != nil {
		t.Fatalf("encode latin-1 fixture: %v", err)
	}
	return WriteBytes(t, filepath.Join(dir, name), []byte(encoded))
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// SampleMovies returns n synthetic rows with a rating that depends on year,
// duration and votes so a regressor has signal to fit.
func SampleMovies(n int) []Movie {
	genres := []string{"Drama", "Action, Drama", "Comedy, Romance", "Thriller", "Drama, Musical"}
	directors := []string{"Raj Kapoor", "Mani Ratnam", "Yash Chopra", "Zoya Akhtar"}
	actors := []string{"Shah Rukh Khan", "Aamir Khan", "Kajol", "Madhuri Dixit", "Amitabh Bachchan"}
	movies := make([]Movie, n)
	for i := range movies {
		year := 1960 + (i*7)%60
		duration := 90 + (i*13)%80
		votes := 50 + (i*379)%9000
		rating := 3.0 + float64(year-1960)/30 + float64(duration-90)/80 + float64(votes)/9000
		movies[i] = Movie{
			Name:     fmt.Sprintf("Movie %03d", i),
			Year:     fmt.Sprintf("(%d)", year),
			Duration: fmt.Sprintf("%d min", duration),
			Genre:    genres[i%len(genres)],
			Rating:   fmt.Sprintf("%.1f", rating),
			Votes:    formatThousands(votes),
			Director: directors[i%len(directors)],
			Actor1:   actors[i%len(actors)],
			Actor2:   actors[(i+1)%len(actors)],
			Actor3:   actors[(i+2)%len(actors)],
		}
	}
	return movies
}

func formatThousands(v int) string {
	if v < 1000 {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%d,%03d", v/1000, v%1000)
}
