package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLoad()
	c.normalizeClean()
	c.normalizeModel()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(InputEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.Input = value
	}
	var err error
	if c.Paths.Input, err = expandPath(strings.TrimSpace(c.Paths.Input)); err != nil {
		return fmt.Errorf("paths.input: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ChartsDir) == "" {
		c.Paths.ChartsDir = defaultChartsDir
	}
	if c.Paths.ChartsDir, err = expandPath(c.Paths.ChartsDir); err != nil {
		return fmt.Errorf("paths.charts_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLoad() {
	c.Load.FallbackEncodings = dedupeTrimmed(c.Load.FallbackEncodings, strings.ToLower)
	if len(c.Load.FallbackEncodings) == 0 {
		c.Load.FallbackEncodings = append([]string(nil), DefaultFallbackEncodings...)
	}
}

func (c *Config) normalizeClean() {
	c.Clean.ContentColumns = dedupeTrimmed(c.Clean.ContentColumns, nil)
	if len(c.Clean.ContentColumns) == 0 {
		c.Clean.ContentColumns = append([]string(nil), DefaultContentColumns...)
	}
	c.Clean.SentinelYears = dedupeTrimmed(c.Clean.SentinelYears, nil)
}

func (c *Config) normalizeModel() {
	c.Model.Engine = strings.ToLower(strings.TrimSpace(c.Model.Engine))
	if c.Model.Engine == "" {
		c.Model.Engine = defaultEngine
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// dedupeTrimmed trims values, drops empties and duplicates, and keeps the
// first occurrence order. fold, when set, is applied before comparison.
func dedupeTrimmed(values []string, fold func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if fold != nil {
			normalized = fold(normalized)
		}
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
