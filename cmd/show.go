package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/plant-dashboard/internal/dashboard"
	"github.com/sells-group/plant-dashboard/internal/feed"
	"github.com/sells-group/plant-dashboard/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the dashboard for a date",
	Long:  "Fetches the selected feeds and prints the formatted view for --date (default: the last row of each sheet).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cache, err := initCache(cfg)
		if err != nil {
			return err
		}

		feedFlag, _ := cmd.Flags().GetString("feed")
		date, _ := cmd.Flags().GetString("date")
		asJSON, _ := cmd.Flags().GetBool("json")

		names, err := feedNames(cache, feedFlag)
		if err != nil {
			return err
		}

		refresh(ctx, cache, names)
		return showViews(cmd.OutOrStdout(), cmd.ErrOrStderr(), cache, names, feed.ParseSelector(date), asJSON)
	},
}

// refresh loads the named feeds. Failures are logged here and surface again
// when the feed is read from the cache.
func refresh(ctx context.Context, cache *dashboard.Cache, names []string) {
	if len(names) == len(cache.Feeds()) {
		if err := cache.Refresh(ctx).Err(); err != nil {
			zap.L().Warn("refresh incomplete", zap.Error(err))
		}
		return
	}
	for _, name := range names {
		if _, err := cache.RefreshFeed(ctx, name); err != nil {
			zap.L().Warn("refresh failed", zap.String("feed", name), zap.Error(err))
		}
	}
}

// showViews writes one view per feed. Feeds that fail are reported on errW
// without hiding the others; the first failure is returned.
func showViews(w, errW io.Writer, cache *dashboard.Cache, names []string, sel feed.Selector, asJSON bool) error {
	styles := render.DefaultStyles()

	var views []dashboard.View
	var firstErr error
	for _, name := range names {
		v, err := cache.View(name, sel)
		if err != nil {
			fmt.Fprintf(errW, "%s: %s\n", name, render.ErrorMessage(err))
			if firstErr == nil {
				firstErr = eris.Wrapf(err, "show %s", name)
			}
			continue
		}
		views = append(views, v)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			return eris.Wrap(err, "encode views")
		}
		return firstErr
	}

	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, render.View(styles, v))
	}
	return firstErr
}

func init() {
	showCmd.Flags().String("feed", "all", "feed to show: main, metrics or all")
	showCmd.Flags().String("date", "latest", "date to show, as written in the sheet")
	showCmd.Flags().Bool("json", false, "print views as JSON")
	rootCmd.AddCommand(showCmd)
}
