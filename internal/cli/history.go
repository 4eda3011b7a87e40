package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/store"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history [project]",
	Short: "Show past analysis runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		_, historyPath, err := cfg.DataPaths()
		if err != nil {
			return err
		}
		h := store.NewHistoryStore(historyPath, cfg.HistoryLimit)

		if len(args) == 0 {
			projects, err := h.Projects()
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			if len(projects) == 0 {
				fmt.Fprintln(os.Stdout, "No analysis history.")
				return nil
			}
			fmt.Fprintln(os.Stdout, "Projects with history:")
			for _, p := range projects {
				fmt.Fprintf(os.Stdout, "  %s\n", p)
			}
			return nil
		}

		runs, err := h.List(args[0])
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintf(os.Stdout, "No runs recorded for %s.\n", args[0])
			return nil
		}
		if flagHistoryLimit > 0 && len(runs) > flagHistoryLimit {
			runs = runs[:flagHistoryLimit]
		}

		for _, run := range runs {
			fmt.Fprintf(os.Stdout, "%s  %s  %d file(s), %d issue(s)\n",
				run.Timestamp.Format("2006-01-02 15:04:05"), run.ID, run.FilesAnalyzed, run.IssueCount)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 0, "Show at most this many runs")
}
