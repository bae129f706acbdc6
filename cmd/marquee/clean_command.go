package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marquee/internal/analysis"
	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/fileutil"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "clean [csv]",
		Short: "Write the cleaned dataset as UTF-8 CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result, err := analysis.Clean(cmd.Context(), analysis.Options{
				Config: cfg,
				Input:  inputArg(args),
				Logger: logger,
			})
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" || target == "-" {
				return dataset.Write(cmd.OutOrStdout(), result.Table)
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
				return dataset.Write(w, result.Table)
			}); err != nil {
				return fmt.Errorf("write cleaned csv: %w", err)
			}

			stats := result.Clean
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s cleaned rows to %s\n", humanize.Comma(int64(stats.RowsOut)), target)
			rows := [][]string{
				{"Rows read", humanize.Comma(int64(stats.RowsIn))},
				{"Empty content", humanize.Comma(int64(stats.DroppedEmpty))},
				{"Duplicate name and year", humanize.Comma(int64(stats.DroppedDuplicate))},
				{"No numeric values", humanize.Comma(int64(stats.DroppedNoNumeric))},
				{"Sentinel year", humanize.Comma(int64(stats.DroppedSentinel))},
				{"Rows kept", humanize.Comma(int64(stats.RowsOut))},
			}
			fmt.Fprintln(out, renderTable([]string{"Step", "Rows"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination CSV (stdout when empty or -)")
	return cmd
}
