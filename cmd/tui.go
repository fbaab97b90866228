package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/plant-dashboard/internal/config"
	"github.com/sells-group/plant-dashboard/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		// Logs on stderr would corrupt the screen.
		logFile, _ := cmd.Flags().GetString("log-file")
		if isTerminalOutput(cfg.Log.OutputPath) {
			logCfg := cfg.Log
			logCfg.OutputPath = logFile
			if err := config.InitLogger(logCfg); err != nil {
				return eris.Wrap(err, "tui: redirect logs")
			}
		}

		cache, err := initCache(cfg)
		if err != nil {
			return err
		}

		p := tea.NewProgram(tui.New(ctx, cache), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return eris.Wrap(err, "tui")
		}
		return nil
	},
}

func isTerminalOutput(path string) bool {
	return path == "" || path == "stderr" || path == "stdout"
}

func init() {
	tuiCmd.Flags().String("log-file", "plant-dashboard.log", "log file used while the dashboard is open")
	rootCmd.AddCommand(tuiCmd)
}
