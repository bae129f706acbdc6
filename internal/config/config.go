package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	Input     string `toml:"input"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ChartsDir string `toml:"charts_dir"`
}

// LoadSettings contains settings for reading the source CSV.
type LoadSettings struct {
	FallbackEncodings []string `toml:"fallback_encodings"`
}

// Clean contains settings for the cleaning pass.
type Clean struct {
	// ContentColumns lists the columns that must not all be empty for a row
	// to be kept.
	ContentColumns []string `toml:"content_columns"`
	// SentinelYears lists release years treated as incomplete extracts and
	// dropped after cleaning.
	SentinelYears []string `toml:"sentinel_years"`
}

// Model contains settings for the train/test split and the boosted regressor.
// Engine selects the regressor: "lightgbm" or "builtin".
type Model struct {
	Engine          string  `toml:"engine"`
	TestFraction    float64 `toml:"test_fraction"`
	Seed            uint64  `toml:"seed"`
	NEstimators     int     `toml:"n_estimators"`
	LearningRate    float64 `toml:"learning_rate"`
	MaxDepth        int     `toml:"max_depth"`
	MinSamplesSplit int     `toml:"min_samples_split"`
	MinSamplesLeaf  int     `toml:"min_samples_leaf"`
}

// Report contains settings for console tables and chart output.
type Report struct {
	TopN   int  `toml:"top_n"`
	Charts bool `toml:"charts"`
}

// History contains settings for the run history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections:
//   - Paths: input CSV, data/log/chart directories
//   - Load: encoding fallbacks for the CSV loader
//   - Clean: content span and sentinel years for the cleaner
//   - Model: split and gradient boosting parameters
//   - Report: table sizes and chart rendering
//   - History: SQLite run history
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths        `toml:"paths"`
	Load    LoadSettings `toml:"load"`
	Clean   Clean        `toml:"clean"`
	Model   Model        `toml:"model"`
	Report  Report       `toml:"report"`
	History History      `toml:"history"`
	Logging Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The charts
// directory is only created when chart output is enabled.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Report.Charts && strings.TrimSpace(c.Paths.ChartsDir) != "" {
		if err := os.MkdirAll(c.Paths.ChartsDir, 0o755); err != nil {
			return fmt.Errorf("create charts directory %q: %w", c.Paths.ChartsDir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LogPath returns the location of the persistent log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "marquee.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, sampleConfig)
		return err
	})
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
