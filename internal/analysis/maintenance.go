package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"marquee/internal/config"
	"marquee/internal/history"
	"marquee/internal/logging"
	"marquee/internal/stage"
)

// prune removes log files and charts older than the retention window. The
// active log file is never removed.
func prune(cfg *config.Config, logger *slog.Logger) int {
	targets := []logging.RetentionTarget{{
		Dir:     cfg.Paths.LogDir,
		Pattern: "marquee*.log",
		Exclude: []string{cfg.LogPath()},
	}}
	if cfg.Report.Charts {
		targets = append(targets, logging.RetentionTarget{Dir: cfg.Paths.ChartsDir, Pattern: "*.png"})
	}
	return logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, targets...)
}

// Check reports whether the input, data directory, history store and chart
// directory are usable for a run.
func Check(ctx context.Context, cfg *config.Config) []stage.Health {
	if cfg == nil {
		return []stage.Health{stage.Unhealthy("config", "configuration is required")}
	}
	checks := []stage.Health{
		checkInput(cfg.Paths.Input),
		checkWritableDir("data_dir", cfg.Paths.DataDir),
		checkWritableDir("log_dir", cfg.Paths.LogDir),
	}
	if cfg.History.Enabled {
		checks = append(checks, checkHistory(ctx, cfg))
	}
	if cfg.Report.Charts {
		checks = append(checks, checkWritableDir("charts_dir", cfg.Paths.ChartsDir))
	}
	return checks
}

func checkInput(path string) stage.Health {
	const name = "input"
	if strings.TrimSpace(path) == "" {
		return stage.Unhealthy(name, "no input CSV configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stage.Unhealthy(name, fmt.Sprintf("%s does not exist", path))
		}
		return stage.Unhealthy(name, err.Error())
	}
	if info.IsDir() {
		return stage.Unhealthy(name, fmt.Sprintf("%s is a directory", path))
	}
	file, err := os.Open(path)
	if err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	_ = file.Close()
	return stage.Healthy(name)
}

func checkWritableDir(name, dir string) stage.Health {
	if strings.TrimSpace(dir) == "" {
		return stage.Unhealthy(name, "directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	scratch, err := os.CreateTemp(dir, ".marquee-write-*")
	if err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s is not writable: %v", dir, err))
	}
	scratchPath := scratch.Name()
	_ = scratch.Close()
	_ = os.Remove(scratchPath)
	return stage.Healthy(name)
}

func checkHistory(ctx context.Context, cfg *config.Config) stage.Health {
	const name = "history"
	store, err := history.Open(cfg)
	if err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	defer store.Close()
	if _, err := store.List(ctx, 1); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

