package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"marquee/internal/dataset"
	"marquee/internal/features"
	"marquee/internal/history"
	"marquee/internal/logging"
	"marquee/internal/model"
	"marquee/internal/report"
	"marquee/internal/stage"
)

type stageFunc func(ctx context.Context, logger *slog.Logger) ([]logging.Attr, error)

type runner struct {
	opts   Options
	logger *slog.Logger
	result *Result
}

// Run executes the full pipeline: load, clean, report, features, model,
// charts (when enabled) and history (when enabled).
func Run(ctx context.Context, opts Options) (*Result, error) {
	return execute(ctx, opts, true)
}

// Describe loads, cleans and aggregates the dataset without modelling or
// recording history.
func Describe(ctx context.Context, opts Options) (*Result, error) {
	return execute(ctx, opts, false)
}

// Clean loads and cleans the dataset only.
func Clean(ctx context.Context, opts Options) (*Result, error) {
	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}
	ctx = stage.WithRunID(ctx, r.result.RunID)
	err = r.runStages(ctx, []string{stage.Load, stage.Clean})
	r.result.Duration = time.Since(r.result.StartedAt)
	if err != nil {
		return r.result, err
	}
	return r.result, nil
}

func newRunner(opts Options) (*runner, error) {
	if opts.Config == nil {
		return nil, stage.Wrap(stage.ErrConfiguration, "", "start run", "configuration is required", nil)
	}
	input := opts.input()
	if input == "" {
		return nil, stage.Wrap(stage.ErrConfiguration, stage.Load, "resolve input",
			"no input CSV configured; pass a path or set paths.input", nil)
	}
	return &runner{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "analysis"),
		result: &Result{
			RunID:     uuid.NewString(),
			StartedAt: time.Now(),
			Input:     input,
		},
	}, nil
}

func execute(ctx context.Context, opts Options, full bool) (*Result, error) {
	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}
	ctx = stage.WithRunID(ctx, r.result.RunID)
	logger := logging.WithContext(ctx, r.logger)
	cfg := opts.Config

	names := []string{stage.Load, stage.Clean, stage.Report}
	if full {
		names = append(names, stage.Features, stage.Model)
		if cfg.Report.Charts {
			names = append(names, stage.Charts)
		}
		pruned := prune(cfg, logger)
		if pruned > 0 {
			logger.Debug("retention cleanup complete", logging.Int("removed", pruned))
		}
	}

	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", r.result.Input),
	)
	runErr := r.runStages(ctx, names)
	r.result.Duration = time.Since(r.result.StartedAt)

	if full && cfg.History.Enabled && !opts.NoHistory {
		r.record(ctx, runErr)
	}

	if runErr != nil {
		logging.ErrorWithContext(logger, "analysis failed", "run_failure",
			logging.String("error_kind", stage.Kind(runErr)),
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, hintFor(runErr)),
		)
		return r.result, runErr
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("duration", r.result.Duration),
		logging.Int("rows", r.result.Clean.RowsOut),
	}
	if r.result.Evaluation != nil {
		attrs = append(attrs, logging.Float64("mse", r.result.Evaluation.MSE))
	}
	logger.Info("analysis completed", logging.Args(attrs...)...)
	return r.result, nil
}

func (r *runner) runStages(ctx context.Context, names []string) error {
	for _, name := range names {
		fn := r.stageFunc(name)
		if fn == nil {
			return stage.Wrap(stage.ErrConfiguration, name, "dispatch", "unknown stage", nil)
		}
		if err := r.runStage(ctx, name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) stageFunc(name string) stageFunc {
	switch name {
	case stage.Load:
		return r.load
	case stage.Clean:
		return r.clean
	case stage.Report:
		return r.buildReport
	case stage.Features:
		return r.prepare
	case stage.Model:
		return r.fit
	case stage.Charts:
		return r.charts
	default:
		return nil
	}
}

func (r *runner) runStage(ctx context.Context, name string, fn stageFunc) error {
	if err := ctx.Err(); err != nil {
		return stage.Wrap(stage.ErrTransient, name, "start", "run canceled", err)
	}
	stageCtx := stage.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, r.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	start := time.Now()
	attrs, err := fn(stageCtx, logger)
	elapsed := time.Since(start)
	r.result.Stages = append(r.result.Stages, StageTiming{Name: name, Duration: elapsed})
	if err != nil {
		wrapped := classify(name, err)
		logger.Debug("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("duration", elapsed),
			logging.Error(err),
		)
		return wrapped
	}

	attrs = append([]logging.Attr{
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", elapsed),
	}, attrs...)
	logger.Info("stage completed", logging.Args(attrs...)...)
	return nil
}

func (r *runner) load(_ context.Context, logger *slog.Logger) ([]logging.Attr, error) {
	table, info, err := dataset.Load(r.result.Input, dataset.LoadOptions{
		FallbackEncodings: r.opts.Config.Load.FallbackEncodings,
		Detect:            r.opts.Detect,
	})
	r.result.Load = info
	if err != nil {
		return nil, err
	}
	r.result.Table = table
	r.result.InputHash = info.SHA256
	if info.Detected != "" && !strings.EqualFold(info.Detected, info.Encoding) {
		logger.Debug("detected charset not used",
			logging.String("detected", info.Detected),
			logging.Int("confidence", info.Confidence),
			logging.String("encoding", info.Encoding),
		)
	}
	return []logging.Attr{
		logging.String("encoding", info.Encoding),
		logging.Int("rows", info.Rows),
		logging.Int("columns", info.Columns),
	}, nil
}

func (r *runner) clean(_ context.Context, logger *slog.Logger) ([]logging.Attr, error) {
	cfg := r.opts.Config.Clean
	cleaned, stats := dataset.Clean(r.result.Table, dataset.CleanOptions{
		ContentColumns: cfg.ContentColumns,
		// Non-nil so an empty list disables the sentinel filter.
		SentinelYears: append([]string{}, cfg.SentinelYears...),
	})
	r.result.Clean = stats
	r.result.Table = cleaned
	for column, failures := range stats.CoercionFailures {
		if failures == 0 {
			continue
		}
		logging.WarnWithContext(logger, "values could not be converted; treated as missing", "coercion_failed",
			logging.String("column", column),
			logging.Int("values", failures),
			logging.String(logging.FieldErrorHint, "inspect the source column for unexpected formats"),
		)
	}
	if stats.RowsOut == 0 {
		return nil, fmt.Errorf("%w: every row was removed by cleaning", dataset.ErrEmptyDataset)
	}
	return []logging.Attr{
		logging.Int("rows_in", stats.RowsIn),
		logging.Int("rows_out", stats.RowsOut),
		logging.Int("dropped_empty", stats.DroppedEmpty),
		logging.Int("dropped_duplicate", stats.DroppedDuplicate),
		logging.Int("dropped_no_numeric", stats.DroppedNoNumeric),
		logging.Int("dropped_sentinel", stats.DroppedSentinel),
	}, nil
}

func (r *runner) buildReport(_ context.Context, _ *slog.Logger) ([]logging.Attr, error) {
	r.result.Report = report.Build(r.result.Table, r.opts.Config.Report.TopN)
	return []logging.Attr{
		logging.Int("years", len(r.result.Report.Releases)),
		logging.Int("genres", len(r.result.Report.GenreRatings)),
	}, nil
}

func (r *runner) prepare(_ context.Context, logger *slog.Logger) ([]logging.Attr, error) {
	cfg := r.opts.Config.Model
	prepared, err := features.Prepare(r.result.Table, features.Options{
		TestFraction: cfg.TestFraction,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	r.result.Prepared = prepared
	if prepared.Unlabeled > 0 {
		logging.WarnWithContext(logger, "rows without a rating excluded from modelling", "unlabelled_rows",
			logging.Int("rows", prepared.Unlabeled),
			logging.String(logging.FieldErrorHint, "rows without a rating cannot be scored"),
			logging.String(logging.FieldImpact, "model trained on fewer rows"),
		)
	}
	attrs := []logging.Attr{
		logging.Int("train_rows", len(prepared.TrainY)),
		logging.Int("test_rows", len(prepared.TestY)),
	}
	for j, column := range prepared.Columns {
		attrs = append(attrs, logging.Float64(strings.ToLower(column)+"_median", prepared.Medians[j]))
		if prepared.Imputed[j] > 0 {
			attrs = append(attrs, logging.Int(strings.ToLower(column)+"_imputed", prepared.Imputed[j]))
		}
	}
	return attrs, nil
}

func (r *runner) fit(ctx context.Context, _ *slog.Logger) ([]logging.Attr, error) {
	reg, err := r.opts.regressor()
	if err != nil {
		return nil, stage.Wrap(stage.ErrConfiguration, stage.Model, "configure", "invalid model parameters", err)
	}
	eval, err := model.Evaluate(ctx, reg, r.result.Prepared)
	if err != nil {
		return nil, err
	}
	r.result.Evaluation = &eval
	r.result.Report.AddEvaluation(eval)
	return []logging.Attr{
		logging.String("engine", r.opts.Config.Model.Engine),
		logging.Float64("mse", eval.MSE),
		logging.Float64("baseline_mse", eval.BaselineMSE),
		logging.Duration("fit_duration", eval.FitDuration),
	}, nil
}

func (r *runner) charts(_ context.Context, _ *slog.Logger) ([]logging.Attr, error) {
	dir := r.opts.Config.Paths.ChartsDir
	paths, err := report.WriteCharts(dir, chartPrefix(r.result), r.result.Report)
	r.result.Charts = paths
	if err != nil {
		return nil, err
	}
	return []logging.Attr{
		logging.String("dir", dir),
		logging.Int("charts", len(paths)),
	}, nil
}

// record stores the run outcome. History failures are logged and never
// change the run result.
func (r *runner) record(ctx context.Context, runErr error) {
	ctx = stage.WithStage(context.WithoutCancel(ctx), stage.History)
	logger := logging.WithContext(ctx, r.logger)

	store, err := history.Open(r.opts.Config)
	if err != nil {
		logging.WarnWithContext(logger, "history store unavailable; run not recorded", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the data directory or delete history.db"),
			logging.String(logging.FieldImpact, "run missing from marquee history"),
		)
		return
	}
	defer store.Close()

	run := history.Run{
		ID:          r.result.RunID,
		StartedAt:   r.result.StartedAt,
		Input:       r.result.Input,
		InputSHA256: r.result.InputHash,
		Encoding:    r.result.Load.Encoding,
		RowsLoaded:  r.result.Load.Rows,
		RowsCleaned: r.result.Clean.RowsOut,
		Duration:    r.result.Duration,
		Status:      history.StatusSucceeded,
	}
	if p := r.result.Prepared; p != nil {
		run.RowsModelled = len(p.TrainY) + len(p.TestY)
		run.TrainSize = len(p.TrainY)
		run.TestSize = len(p.TestY)
	}
	if eval := r.result.Evaluation; eval != nil {
		mse := eval.MSE
		run.MSE = &mse
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorKind = stage.Kind(runErr)
		run.Error = runErr.Error()
	}
	if _, err := store.Record(ctx, run); err != nil {
		logging.WarnWithContext(logger, "failed to record run", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from marquee history"),
		)
		return
	}
	r.result.Recorded = true
	logger.Debug("run recorded", logging.String("path", store.Path()))
}

func chartPrefix(result *Result) string {
	id := result.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return result.StartedAt.Format("20060102-150405") + "-" + id + "-"
}

// classify tags err with the stage marker callers match on.
func classify(name string, err error) error {
	var decodeErr *dataset.DecodeError
	switch {
	case errors.Is(err, stage.ErrLoad), errors.Is(err, stage.ErrValidation),
		errors.Is(err, stage.ErrConfiguration), errors.Is(err, stage.ErrEmptyDataset):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return stage.Wrap(stage.ErrTransient, name, "run", "run canceled", err)
	case errors.Is(err, dataset.ErrEmptyDataset), errors.Is(err, features.ErrEmptyDataset), errors.Is(err, model.ErrEmptyInput):
		return stage.Wrap(stage.ErrEmptyDataset, name, "", "not enough rows to continue", err)
	case errors.As(err, &decodeErr):
		return stage.Wrap(stage.ErrLoad, name, "decode", "file is not valid in any candidate encoding", err)
	case errors.Is(err, dataset.ErrMissingColumn):
		return stage.Wrap(stage.ErrValidation, name, "", "dataset is missing a required column", err)
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return stage.Wrap(stage.ErrLoad, name, "open", "input file is not readable", err)
	case name == stage.Load:
		return stage.Wrap(stage.ErrLoad, name, "", "", err)
	case name == stage.Features, name == stage.Model:
		return stage.Wrap(stage.ErrValidation, name, "", "", err)
	default:
		return stage.Wrap(stage.ErrTransient, name, "", "", err)
	}
}

func hintFor(err error) string {
	switch stage.Kind(err) {
	case "load":
		return "check the input path and file encoding"
	case "empty_dataset":
		return "the dataset has too few usable rows; inspect the source CSV"
	case "validation":
		return "the CSV must carry the Name, Year, Duration, Genre, Rating, Votes, Director and Actor columns"
	case "configuration":
		return "run marquee config validate"
	case "canceled":
		return "run was interrupted"
	default:
		return "rerun with --log-level debug for details"
	}
}
