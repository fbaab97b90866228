package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/plant-dashboard/internal/render"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the dates available in a feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cache, err := initCache(cfg)
		if err != nil {
			return err
		}

		feedFlag, _ := cmd.Flags().GetString("feed")
		asJSON, _ := cmd.Flags().GetBool("json")

		names, err := feedNames(cache, feedFlag)
		if err != nil {
			return err
		}
		if len(names) != 1 {
			return eris.New("dates: --feed must name a single feed")
		}
		name := names[0]

		if _, err := cache.RefreshFeed(ctx, name); err != nil {
			return eris.Wrapf(err, "dates %s", name)
		}

		opts, err := cache.DateOptions(name)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(opts)
		}
		fmt.Fprintln(out, render.Dates(render.DefaultStyles(), name, opts))
		return nil
	},
}

func init() {
	datesCmd.Flags().String("feed", "main", "feed to list: main or metrics")
	datesCmd.Flags().Bool("json", false, "print dates as JSON")
	rootCmd.AddCommand(datesCmd)
}
