package analysis

import (
	"log/slog"
	"strings"
	"time"

	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/features"
	"marquee/internal/model"
	"marquee/internal/report"
)

// Options configures a run.
type Options struct {
	Config *config.Config
	// Input overrides the configured CSV path.
	Input  string
	Logger *slog.Logger
	// Regressor replaces the model selected by model.engine.
	Regressor model.Regressor
	// Progress receives boosting stage completions for the configured model.
	Progress model.ProgressFunc
	// Detect overrides charset detection in the loader.
	Detect dataset.DetectFunc
	// NoHistory skips the history stage even when it is enabled.
	NoHistory bool
}

// Result collects the artifacts of a run.
type Result struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	Input      string             `json:"input"`
	InputHash  string             `json:"input_sha256,omitempty"`
	Load       dataset.LoadInfo   `json:"load"`
	Clean      dataset.CleanStats `json:"clean"`
	Table      *dataset.Table     `json:"-"`
	Report     *report.Report     `json:"report,omitempty"`
	Prepared   *features.Prepared `json:"-"`
	Evaluation *model.Evaluation  `json:"evaluation,omitempty"`
	Charts     []string           `json:"charts,omitempty"`
	Stages     []StageTiming      `json:"stages"`
	Duration   time.Duration      `json:"duration"`
	Recorded   bool               `json:"recorded"`
}

// StageTiming records how long one stage ran.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

func (o Options) input() string {
	if in := strings.TrimSpace(o.Input); in != "" {
		if expanded, err := config.ExpandPath(in); err == nil {
			return expanded
		}
		return in
	}
	if o.Config == nil {
		return ""
	}
	return o.Config.Paths.Input
}

func (o Options) modelParams() model.Params {
	cfg := o.Config.Model
	return model.Params{
		NEstimators:     cfg.NEstimators,
		LearningRate:    cfg.LearningRate,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		MinSamplesLeaf:  cfg.MinSamplesLeaf,
	}
}

func (o Options) regressor() (model.Regressor, error) {
	if o.Regressor != nil {
		return o.Regressor, nil
	}
	params := o.modelParams()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if o.Config.Model.Engine == config.EngineBuiltin {
		gb := model.NewGradientBoosting(params)
		gb.Progress = o.Progress
		return gb, nil
	}
	lgb := model.NewLightGBM(params, o.Config.Model.Seed)
	lgb.Progress = o.Progress
	return lgb, nil
}
