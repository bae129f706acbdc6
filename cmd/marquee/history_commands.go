package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marquee/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Rows", "Train/Test", "MSE", "Duration", "Input"},
					historyRows(runs, time.Now()),
					3, 4, 5, 6,
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run (a unique id prefix is accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				if jsonOut {
					return writeJSON(cmd, run)
				}
				rows := [][]string{
					{"Run", run.ID},
					{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
					{"Status", string(run.Status)},
					{"Input", run.Input},
					{"Input SHA-256", dash(run.InputSHA256)},
					{"Encoding", dash(run.Encoding)},
					{"Rows loaded", humanize.Comma(int64(run.RowsLoaded))},
					{"Rows cleaned", humanize.Comma(int64(run.RowsCleaned))},
					{"Rows modelled", humanize.Comma(int64(run.RowsModelled))},
					{"Train/Test", fmt.Sprintf("%d/%d", run.TrainSize, run.TestSize)},
					{"MSE", formatMSE(run.MSE)},
					{"Duration", run.Duration.String()},
				}
				if run.Error != "" {
					rows = append(rows, []string{"Error kind", run.ErrorKind}, []string{"Error", run.Error})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) from %s\n", removed, store.Path())
				return nil
			})
		},
	}
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func historyRows(runs []history.Run, now time.Time) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		status := string(run.Status)
		if run.ErrorKind != "" {
			status += " (" + run.ErrorKind + ")"
		}
		rows = append(rows, []string{
			id,
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			status,
			humanize.Comma(int64(run.RowsCleaned)),
			strconv.Itoa(run.TrainSize) + "/" + strconv.Itoa(run.TestSize),
			formatMSE(run.MSE),
			run.Duration.Round(time.Millisecond).String(),
			run.Input,
		})
	}
	return rows
}

func formatMSE(mse *float64) string {
	if mse == nil {
		return "-"
	}
	return strconv.FormatFloat(*mse, 'f', 4, 64)
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
