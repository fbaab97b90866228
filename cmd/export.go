package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/plant-dashboard/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every date of both feeds to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cache, err := initCache(cfg)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		res := cache.Refresh(ctx)
		if err := res.Err(); err != nil {
			zap.L().Warn("export: refresh incomplete", zap.Error(err))
		}

		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", out)
		}
		defer f.Close() //nolint:errcheck

		if err := export.WriteWorkbook(f, cache); err != nil {
			_ = os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "export: close %s", out)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d feeds)\n", out, len(res.Committed))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "dashboard.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
