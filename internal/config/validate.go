package config

import (
	"errors"
	"fmt"
	"regexp"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateClean(); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateClean() error {
	for _, year := range c.Clean.SentinelYears {
		if !yearPattern.MatchString(year) {
			return fmt.Errorf("clean.sentinel_years: %q is not a 4-digit year", year)
		}
	}
	return nil
}

func (c *Config) validateModel() error {
	m := c.Model
	switch m.Engine {
	case EngineLightGBM, EngineBuiltin:
	default:
		return fmt.Errorf("model.engine must be %q or %q, got %q", EngineLightGBM, EngineBuiltin, m.Engine)
	}
	if m.TestFraction <= 0 || m.TestFraction >= 1 {
		return errors.New("model.test_fraction must be between 0 and 1 (exclusive)")
	}
	if m.NEstimators <= 0 {
		return errors.New("model.n_estimators must be positive")
	}
	if m.LearningRate <= 0 {
		return errors.New("model.learning_rate must be positive")
	}
	if m.MaxDepth <= 0 {
		return errors.New("model.max_depth must be positive")
	}
	if m.MinSamplesSplit < 2 {
		return errors.New("model.min_samples_split must be at least 2")
	}
	if m.MinSamplesLeaf < 1 {
		return errors.New("model.min_samples_leaf must be at least 1")
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.TopN <= 0 {
		return errors.New("report.top_n must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
