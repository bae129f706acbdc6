package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status describes how a recorded run ended.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// timeLayout is fixed width so started_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = "id, started_at, input_path, input_sha256, encoding, rows_loaded, rows_cleaned, rows_modelled, train_size, test_size, mse, duration_ms, status, error_kind, error_message"

// Run is one analysis pass as stored in the history database.
type Run struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	Input        string        `json:"input"`
	InputSHA256  string        `json:"input_sha256,omitempty"`
	Encoding     string        `json:"encoding,omitempty"`
	RowsLoaded   int           `json:"rows_loaded"`
	RowsCleaned  int           `json:"rows_cleaned"`
	RowsModelled int           `json:"rows_modelled"`
	TrainSize    int           `json:"train_size"`
	TestSize     int           `json:"test_size"`
	MSE          *float64      `json:"mse,omitempty"`
	Duration     time.Duration `json:"duration"`
	Status       Status        `json:"status"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Record inserts a run. A missing ID is generated and a zero StartedAt is set
// to the current time; the stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.Input) == "" {
		return Run{}, errors.New("record run: input path is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	if run.Status == "" {
		run.Status = StatusSucceeded
		if run.Error != "" {
			run.Status = StatusFailed
		}
	}

	var mse any
	if run.MSE != nil {
		mse = *run.MSE
	}
	err := s.withWriteLock(ctx, func() error {
		_, err := s.execWithRetry(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.StartedAt.Format(timeLayout),
			run.Input,
			nullableString(run.InputSHA256),
			nullableString(run.Encoding),
			run.RowsLoaded,
			run.RowsCleaned,
			run.RowsModelled,
			run.TrainSize,
			run.TestSize,
			mse,
			run.Duration.Milliseconds(),
			string(run.Status),
			nullableString(run.ErrorKind),
			nullableString(run.Error),
		)
		return err
	})
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// Get fetches a run by id, returning nil when it does not exist. A unique
// id prefix of at least eight characters is accepted.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("get run: id is required")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR (length(?) >= 8 AND id LIKE ? || '%') ORDER BY seq LIMIT 2`,
		id, id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("get run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("get run: id prefix %q is ambiguous", id)
	}
}

// List returns recorded runs newest first. A limit of zero or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Clear removes every recorded run and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := s.withWriteLock(ctx, func() error {
		res, err := s.execWithRetry(ctx, `DELETE FROM runs`)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return removed, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id         string
		startedRaw string
		input      string
		inputSHA   sql.NullString
		encoding   sql.NullString
		loaded     int64
		cleaned    int64
		modelled   int64
		trainSize  int64
		testSize   int64
		mse        sql.NullFloat64
		durationMS int64
		status     string
		errorKind  sql.NullString
		errorMsg   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&startedRaw,
		&input,
		&inputSHA,
		&encoding,
		&loaded,
		&cleaned,
		&modelled,
		&trainSize,
		&testSize,
		&mse,
		&durationMS,
		&status,
		&errorKind,
		&errorMsg,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Input:        input,
		InputSHA256:  inputSHA.String,
		Encoding:     encoding.String,
		RowsLoaded:   int(loaded),
		RowsCleaned:  int(cleaned),
		RowsModelled: int(modelled),
		TrainSize:    int(trainSize),
		TestSize:     int(testSize),
		Duration:     time.Duration(durationMS) * time.Millisecond,
		Status:       Status(status),
		ErrorKind:    errorKind.String,
		Error:        errorMsg.String,
	}
	if mse.Valid {
		value := mse.Float64
		run.MSE = &value
	}
	if started, err := time.Parse(timeLayout, startedRaw); err == nil {
		run.StartedAt = started
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
