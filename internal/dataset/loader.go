package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"marquee/internal/fileutil"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyDataset is returned when a file has a header but no data rows.
	ErrEmptyDataset = errors.New("dataset has no rows")
)

// DefaultFallbackEncodings are tried after the detected charset.
var DefaultFallbackEncodings = []string{"utf-8", "latin1", "ISO-8859-1"}

// LoadOptions controls how a file is decoded.
type LoadOptions struct {
	FallbackEncodings []string
	// Detect overrides charset detection; nil uses DetectCharset.
	Detect DetectFunc
}

// LoadInfo describes a completed load. SHA256 is the digest of the bytes
// that were decoded.
type LoadInfo struct {
	Path       string   `json:"path"`
	Encoding   string   `json:"encoding"`
	Detected   string   `json:"detected"`
	Confidence int      `json:"confidence"`
	Tried      []string `json:"tried"`
	Rows       int      `json:"rows"`
	Columns    int      `json:"columns"`
	Bytes      int64    `json:"bytes"`
	SHA256     string   `json:"sha256"`
}

// Load reads the CSV at path into a Table. Empty fields become Missing.
func Load(path string, opts LoadOptions) (*Table, LoadInfo, error) {
	info := LoadInfo{Path: path}
	raw, sum, err := fileutil.ReadFileDigest(path)
	if err != nil {
		return nil, info, fmt.Errorf("read dataset %s: %w", path, err)
	}
	info.Bytes = int64(len(raw))
	info.SHA256 = sum

	detect := opts.Detect
	if detect == nil {
		detect = DetectCharset
	}
	detection := detect(raw)
	info.Detected = detection.Charset
	info.Confidence = detection.Confidence

	fallbacks := opts.FallbackEncodings
	if len(fallbacks) == 0 {
		fallbacks = DefaultFallbackEncodings
	}
	text, label, tried, err := decodeText(path, raw, detection.Charset, fallbacks)
	info.Tried = tried
	if err != nil {
		return nil, info, err
	}
	info.Encoding = label

	table, err := parse(bytes.NewReader(text))
	if err != nil {
		return nil, info, fmt.Errorf("parse %s: %w", path, err)
	}
	info.Rows = table.Len()
	info.Columns = len(table.Columns)
	return table, info, nil
}

// parse turns decoded CSV text into a Table through a string-typed gota
// dataframe so no column is guessed into a lossy numeric type.
func parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	if len(records) < 2 {
		return nil, ErrEmptyDataset
	}
	records[0] = header

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	)
	if df.Err != nil {
		return nil, df.Err
	}

	names := df.Names()
	rows := make([]Row, df.Nrow())
	for i := range rows {
		rows[i] = make(Row, len(names))
	}
	for j, name := range names {
		col := df.Col(name)
		if col.Err != nil {
			return nil, col.Err
		}
		for i := range rows {
			elem := col.Elem(i)
			if elem.IsNA() {
				continue
			}
			rows[i][j] = TextCell(elem.String())
		}
	}
	return NewTable(names, rows), nil
}

func missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Write serializes t as UTF-8 CSV with a header row. Missing cells are
// written as NaN, which Load reads back as Missing.
func Write(w io.Writer, t *Table) error {
	if t.Len() == 0 {
		return ErrEmptyDataset
	}
	records := make([][]string, 0, t.Len()+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = cell.String()
		}
		records = append(records, record)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	)
	return df.WriteCSV(w)
}
