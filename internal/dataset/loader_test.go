package dataset_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/dataset"
	"marquee/internal/testsupport"
)

func stubDetect(charset string) dataset.DetectFunc {
	return func([]byte) dataset.Detection { return dataset.Detection{Charset: charset, Confidence: 10} }
}

func TestLoadUTF8(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteCSV(t, dir, "movies.csv",
		testsupport.Movie{Name: "Lagaan", Year: "(2001)", Duration: "224 min", Genre: "Drama, Musical", Rating: "8.1", Votes: "1,12,000", Director: "Ashutosh Gowariker", Actor1: "Aamir Khan"},
		testsupport.Movie{Name: "Kaagaz", Year: "(2021)"},
	)

	table, info, err := dataset.Load(path, dataset.LoadOptions{Detect: stubDetect("UTF-8")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if info.Encoding != "UTF-8" || info.Rows != 2 || info.Columns != 10 {
		t.Fatalf("unexpected load info: %+v", info)
	}
	if got := table.Value(0, dataset.ColGenre).String(); got != "Drama, Musical" {
		t.Fatalf("quoted genre not preserved: %q", got)
	}
	if !table.Value(1, dataset.ColRating).IsMissing() {
		t.Fatalf("expected empty rating to load as missing, got %+v", table.Value(1, dataset.ColRating))
	}
}

func TestLoadDigestDescribesDecodedBytes(t *testing.T) {
	path := testsupport.WriteCSV(t, t.TempDir(), "movies.csv", testsupport.Movie{Name: "Sholay", Year: "(1975)"})
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	// Replace the file while the load is in flight; the digest must still
	// match what was decoded.
	detect := func(raw []byte) dataset.Detection {
		testsupport.WriteBytes(t, path, []byte(testsupport.CSV(testsupport.Movie{Name: "Deewaar", Year: "(1975)"})))
		return dataset.Detection{Charset: "UTF-8", Confidence: 10}
	}
	table, info, err := dataset.Load(path, dataset.LoadOptions{Detect: detect})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := sha256.Sum256(original)
	if info.SHA256 != hex.EncodeToString(want[:]) {
		t.Fatalf("digest %s does not describe the decoded bytes", info.SHA256)
	}
	if got := table.Value(0, dataset.ColName).String(); got != "Sholay" {
		t.Fatalf("expected the original contents to be decoded, got %q", got)
	}
	if info.Bytes != int64(len(original)) {
		t.Fatalf("unexpected byte count %d", info.Bytes)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	body := append([]byte{0xEF, 0xBB, 0xBF}, []byte(testsupport.CSV(testsupport.Movie{Name: "Sholay", Year: "(1975)"}))...)
	testsupport.WriteBytes(t, path, body)

	table, _, err := dataset.Load(path, dataset.LoadOptions{Detect: stubDetect("UTF-8")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.Columns[0] != dataset.ColName {
		t.Fatalf("BOM leaked into header: %q", table.Columns[0])
	}
}

func TestLoadFallsBackToLatin1(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteLatin1CSV(t, dir, "latin1.csv",
		testsupport.Movie{Name: "Café Mumbai", Year: "(2010)", Rating: "6.0"},
	)

	table, info, err := dataset.Load(path, dataset.LoadOptions{Detect: stubDetect("UTF-8")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if info.Encoding != "latin1" {
		t.Fatalf("expected latin1 fallback, got %q (tried %v)", info.Encoding, info.Tried)
	}
	if strings.Join(info.Tried, ",") != "UTF-8,latin1" {
		t.Fatalf("unexpected tried list: %v", info.Tried)
	}
	if got := table.Value(0, dataset.ColName).String(); got != "Café Mumbai" {
		t.Fatalf("unexpected decoded name: %q", got)
	}
}

func TestLoadDetectsLatin1WithChardet(t *testing.T) {
	movies := testsupport.SampleMovies(40)
	for i := range movies {
		movies[i].Name = "Première " + movies[i].Name + " à Délhi"
	}
	path := testsupport.WriteLatin1CSV(t, t.TempDir(), "detected.csv", movies...)

	table, info, err := dataset.Load(path, dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if info.Encoding == "UTF-8" || info.Encoding == "utf-8" {
		t.Fatalf("invalid UTF-8 input must not decode as UTF-8: %+v", info)
	}
	if !strings.HasPrefix(table.Value(0, dataset.ColName).String(), "Premi") {
		t.Fatalf("unexpected name: %q", table.Value(0, dataset.ColName).String())
	}
}

func TestLoadDecodeErrorNamesEncodings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	testsupport.WriteBytes(t, path, []byte("Name,Year\n\xff\xfe,1999\n"))

	_, _, err := dataset.Load(path, dataset.LoadOptions{
		FallbackEncodings: []string{"utf-8", "no-such-charset"},
		Detect:            stubDetect(""),
	})
	var decodeErr *dataset.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if strings.Join(decodeErr.Tried, ",") != "utf-8,no-such-charset" {
		t.Fatalf("unexpected tried encodings: %v", decodeErr.Tried)
	}
	if !strings.Contains(err.Error(), "utf-8, no-such-charset") {
		t.Fatalf("error should name attempted encodings: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "header only", content: testsupport.Header + "\n", want: dataset.ErrEmptyDataset},
		{name: "empty file", content: "", want: dataset.ErrEmptyDataset},
		{name: "missing column", content: "Name,Year\nLagaan,(2001)\n", want: dataset.ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testsupport.WriteBytes(t, filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".csv"), []byte(tt.content))
			_, _, err := dataset.Load(path, dataset.LoadOptions{Detect: stubDetect("UTF-8")})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, _, err := dataset.Load(filepath.Join(dir, "absent.csv"), dataset.LoadOptions{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteCSV(t, dir, "movies.csv", testsupport.SampleMovies(5)...)
	raw, _, err := dataset.Load(path, dataset.LoadOptions{Detect: stubDetect("UTF-8")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cleaned, _ := dataset.Clean(raw, dataset.CleanOptions{})
	cleaned.Rows[0][2] = dataset.MissingCell()

	var buf bytes.Buffer
	if err := dataset.Write(&buf, cleaned); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := testsupport.WriteBytes(t, filepath.Join(dir, "cleaned.csv"), buf.Bytes())
	reloaded, _, err := dataset.Load(out, dataset.LoadOptions{Detect: stubDetect("UTF-8")})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	again, _ := dataset.Clean(reloaded, dataset.CleanOptions{})
	if !again.Equal(cleaned) {
		t.Fatalf("written table did not round-trip:\n%v\n%v", again.Rows, cleaned.Rows)
	}
}
