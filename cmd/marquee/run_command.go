package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marquee/internal/analysis"
	"marquee/internal/config"
	"marquee/internal/report"
)

type reportFlags struct {
	top       int
	charts    bool
	chartsDir string
	jsonOut   bool
}

func (f *reportFlags) apply(cfg *config.Config) error {
	if f.top < 0 {
		return fmt.Errorf("--top must be positive, got %d", f.top)
	}
	if f.top > 0 {
		cfg.Report.TopN = f.top
	}
	if dir := strings.TrimSpace(f.chartsDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve charts dir: %w", err)
		}
		cfg.Paths.ChartsDir = expanded
		cfg.Report.Charts = true
	}
	if f.charts {
		cfg.Report.Charts = true
	}
	return nil
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		flags     reportFlags
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "run [csv]",
		Short: "Clean the dataset, print the report, and score the rating model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			progress, finish := newProgress(cmd.ErrOrStderr(), !flags.jsonOut)
			result, err := analysis.Run(cmd.Context(), analysis.Options{
				Config:    cfg,
				Input:     inputArg(args),
				Logger:    logger,
				Progress:  progress,
				NoHistory: noHistory,
			})
			finish()
			if err != nil {
				return err
			}

			if flags.jsonOut {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			opts := report.RenderOptions{Colorize: shouldColorize(out)}
			if err := report.Render(out, result.Report, opts); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if err := report.RenderEvaluation(out, *result.Evaluation, opts); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if len(result.Charts) > 0 {
				fmt.Fprintf(out, "Charts: %d written to %s\n", len(result.Charts), cfg.Paths.ChartsDir)
			}
			recorded := "not recorded"
			if result.Recorded {
				recorded = "recorded in history"
			}
			fmt.Fprintf(out, "Run %s (%s, %s in %s)\n",
				result.RunID, recorded, humanize.Bytes(uint64(result.Load.Bytes)), result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&flags.top, "top", 0, "Entries shown in ranked tables (default from config)")
	cmd.Flags().BoolVar(&flags.charts, "charts", false, "Write PNG charts to the configured charts directory")
	cmd.Flags().StringVar(&flags.chartsDir, "charts-dir", "", "Write PNG charts to this directory")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Emit the run result as JSON")
	return cmd
}

func newDescribeCommand(ctx *commandContext) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "describe [csv]",
		Short: "Print dataset overview and aggregate tables without modelling",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result, err := analysis.Describe(cmd.Context(), analysis.Options{
				Config: cfg,
				Input:  inputArg(args),
				Logger: logger,
			})
			if err != nil {
				return err
			}
			if flags.jsonOut {
				return writeJSON(cmd, result.Report)
			}
			out := cmd.OutOrStdout()
			return report.Render(out, result.Report, report.RenderOptions{Colorize: shouldColorize(out)})
		},
	}

	cmd.Flags().IntVar(&flags.top, "top", 0, "Entries shown in ranked tables (default from config)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Emit the aggregates as JSON")
	return cmd
}
