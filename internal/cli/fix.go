package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/fileset"
	"github.com/mgrantham/verdict/internal/fixer"
	"github.com/mgrantham/verdict/internal/issue"
	"github.com/mgrantham/verdict/internal/logging"
	"github.com/mgrantham/verdict/internal/store"
)

var (
	flagFixDryRun bool
	flagFixFile   string
)

var fixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Generate and apply fixes for issues found by a previous analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		project := filepath.Base(abs)

		log := logging.New(cfg.Logging)
		defer log.Sync()

		client, err := newClient(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		contextPath, _, err := cfg.DataPaths()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		pctx, err := store.LoadContext(contextPath, project)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading analysis context: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		paths := fixablePaths(pctx)
		if flagFixFile != "" {
			paths = []string{filepath.ToSlash(flagFixFile)}
		}
		if len(paths) == 0 {
			fmt.Fprintln(os.Stdout, "Nothing to fix. Run analyze first.")
			return nil
		}

		f := fixer.New(cfg, client, log)
		ctx := context.Background()
		for _, rel := range paths {
			fa, ok := pctx.Get(rel)
			if !ok || !hasUnfixed(fa.Issues) {
				continue
			}

			file, err := fileset.Load(root, rel, 0)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", rel, err)
				continue
			}

			fixed, ok := f.FixFile(ctx, rel, file.Language, file.Content, fa.Issues)
			if !ok {
				fmt.Fprintf(os.Stderr, "No fix produced for %s\n", rel)
				continue
			}

			if flagFixDryRun {
				fmt.Fprintf(os.Stdout, "--- %s (dry run) ---\n%s\n", rel, fixed)
				continue
			}

			if err := os.WriteFile(filepath.Join(root, rel), []byte(fixed), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", rel, err)
				exitCode = ExitRuntimeError
				continue
			}
			fixer.MarkFixed(pctx, rel)
			fmt.Fprintf(os.Stdout, "Fixed %s\n", rel)
		}

		if !flagFixDryRun {
			if err := pctx.Save(contextPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save analysis context: %v\n", err)
			}
		}

		applied, files := f.Stats()
		fmt.Fprintf(os.Stdout, "Applied %d fix(es) across %d file(s).\n", applied, files)
		return nil
	},
}

// fixablePaths returns cached file paths that still have unfixed issues,
// in lexical order.
func fixablePaths(pctx *store.ProjectContext) []string {
	var paths []string
	for path, fa := range pctx.FileAnalyses {
		if hasUnfixed(fa.Issues) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func hasUnfixed(issues []issue.Issue) bool {
	for _, is := range issues {
		if !is.Fixed {
			return true
		}
	}
	return false
}

func init() {
	fixCmd.Flags().StringVar(&flagBackend, "backend", "", "LLM backend (ollama, openai, lmstudio, vllm)")
	fixCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Backend base URL")
	fixCmd.Flags().StringVar(&flagModel, "model", "", "Model used for fix generation")
	fixCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	fixCmd.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "Retry attempts after a failed request")
	fixCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fixCmd.Flags().BoolVar(&flagFixDryRun, "dry-run", false, "Print fixes without writing files")
	fixCmd.Flags().StringVar(&flagFixFile, "file", "", "Fix a single file (path relative to the project root)")
}
