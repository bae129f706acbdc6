package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.InputEnv, "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "marquee")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Model.Engine != config.EngineLightGBM {
		t.Fatalf("unexpected default engine: %q", cfg.Model.Engine)
	}
	if cfg.Model.TestFraction != 0.2 || cfg.Model.Seed != 42 {
		t.Fatalf("unexpected split defaults: %+v", cfg.Model)
	}
	if cfg.Model.NEstimators != 100 || cfg.Model.LearningRate != 0.1 || cfg.Model.MaxDepth != 3 {
		t.Fatalf("unexpected boosting defaults: %+v", cfg.Model)
	}
	if got := strings.Join(cfg.Load.FallbackEncodings, ","); got != "utf-8,latin1,iso-8859-1" {
		t.Fatalf("unexpected fallback encodings: %q", got)
	}
	if len(cfg.Clean.SentinelYears) != 1 || cfg.Clean.SentinelYears[0] != "2022" {
		t.Fatalf("unexpected sentinel years: %v", cfg.Clean.SentinelYears)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Report.Charts {
		t.Fatal("expected charts disabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.ChartsDir); !os.IsNotExist(err) {
		t.Fatalf("expected charts dir to be absent while charts are disabled, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "marquee.toml")

	type payload struct {
		Paths struct {
			Input   string `toml:"input"`
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Model struct {
			TestFraction float64 `toml:"test_fraction"`
			NEstimators  int     `toml:"n_estimators"`
		} `toml:"model"`
		Clean struct {
			SentinelYears []string `toml:"sentinel_years"`
		} `toml:"clean"`
	}
	custom := payload{}
	custom.Paths.Input = filepath.Join(tempDir, "movies.csv")
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Model.TestFraction = 0.25
	custom.Model.NEstimators = 10
	custom.Clean.SentinelYears = []string{" 2023 ", "2023", "2024"}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(config.InputEnv, "")
	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.Input != custom.Paths.Input {
		t.Fatalf("unexpected input: %q", cfg.Paths.Input)
	}
	if cfg.Model.TestFraction != 0.25 || cfg.Model.NEstimators != 10 {
		t.Fatalf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Model.LearningRate != 0.1 {
		t.Fatalf("expected unset learning rate to keep default, got %v", cfg.Model.LearningRate)
	}
	if got := strings.Join(cfg.Clean.SentinelYears, ","); got != "2023,2024" {
		t.Fatalf("unexpected sentinel years: %q", got)
	}
}

func TestInputEnvOverridesConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	override := filepath.Join(tempHome, "override.csv")
	t.Setenv(config.InputEnv, override)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Input != override {
		t.Fatalf("expected env override %q, got %q", override, cfg.Paths.Input)
	}
}

func TestLoadSectionNormalizesEncodings(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "marquee.toml")
	body := "[load]\nfallback_encodings = [\" CP1252 \", \"cp1252\", \"\", \"UTF-8\"]\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.InputEnv, "")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := config.LoadSettings{FallbackEncodings: []string{"cp1252", "utf-8"}}
	if !slices.Equal(cfg.Load.FallbackEncodings, want.FallbackEncodings) {
		t.Fatalf("unexpected load settings: got %+v want %+v", cfg.Load, want)
	}

	if got := config.Default().Load; !slices.Equal(got.FallbackEncodings, config.DefaultFallbackEncodings) {
		t.Fatalf("unexpected default load settings: %+v", got)
	}
}

func TestModelEngineIsNormalized(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "marquee.toml")
	if err := os.WriteFile(configPath, []byte("[model]\nengine = \" BuiltIn \"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.InputEnv, "")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Model.Engine != config.EngineBuiltin {
		t.Fatalf("expected builtin engine, got %q", cfg.Model.Engine)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "marquee.toml")
	if err := os.WriteFile(configPath, []byte("[model]\nnot_a_knob = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "test fraction zero", mutate: func(c *config.Config) { c.Model.TestFraction = 0 }, wantErr: "model.test_fraction"},
		{name: "test fraction one", mutate: func(c *config.Config) { c.Model.TestFraction = 1 }, wantErr: "model.test_fraction"},
		{name: "no estimators", mutate: func(c *config.Config) { c.Model.NEstimators = 0 }, wantErr: "model.n_estimators"},
		{name: "unknown engine", mutate: func(c *config.Config) { c.Model.Engine = "xgboost" }, wantErr: "model.engine"},
		{name: "split too small", mutate: func(c *config.Config) { c.Model.MinSamplesSplit = 1 }, wantErr: "model.min_samples_split"},
		{name: "bad sentinel", mutate: func(c *config.Config) { c.Clean.SentinelYears = []string{"22"} }, wantErr: "clean.sentinel_years"},
		{name: "bad format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "bad top n", mutate: func(c *config.Config) { c.Report.TopN = 0 }, wantErr: "report.top_n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			cfg.Paths.LogDir = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.InputEnv, "")
	path := filepath.Join(tempHome, "cfg", "marquee.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Paths.Input != filepath.Join(tempHome, "datasets", "IMDb Movies India.csv") {
		t.Fatalf("unexpected sample input path: %q", cfg.Paths.Input)
	}
}
