package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats [project]",
	Short: "Show usage statistics from recorded analysis runs",
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

		projects, err := h.Projects()
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(args) == 1 {
			projects = []string{args[0]}
		}
		if len(projects) == 0 {
			fmt.Fprintln(os.Stdout, "No recorded runs.")
			return nil
		}

		for _, project := range projects {
			runs, err := h.List(project)
			if err != nil {
				return fmt.Errorf("reading history for %s: %w", project, err)
			}
			if len(runs) == 0 {
				fmt.Fprintf(os.Stdout, "%s: no recorded runs\n", project)
				continue
			}

			totalIssues, totalFiles := 0, 0
			for _, run := range runs {
				totalIssues += run.IssueCount
				totalFiles += run.FilesAnalyzed
			}
			fmt.Fprintf(os.Stdout, "%s:\n", project)
			fmt.Fprintf(os.Stdout, "  runs retained:   %d\n", len(runs))
			fmt.Fprintf(os.Stdout, "  files analyzed:  %d\n", totalFiles)
			fmt.Fprintf(os.Stdout, "  issues found:    %d\n", totalIssues)
			fmt.Fprintf(os.Stdout, "  last run:        %s\n", runs[0].Timestamp.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
