package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mgrantham/verdict/internal/analyzer"
	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/llm"
	"github.com/mgrantham/verdict/internal/logging"
	"github.com/mgrantham/verdict/internal/report"
	"github.com/mgrantham/verdict/internal/store"
)

// Shared analyze flags
var (
	flagBackend    string
	flagBaseURL    string
	flagModel      string
	flagChatModel  string
	flagMinIssues  int
	flagMaxLines   int
	flagTimeout    int
	flagMaxRetries int
	flagExclude    string
	flagFormat     string
	flagOut        string
	flagLogLevel   string
	flagNoRedact   bool
	flagFailIssues bool
	flagFresh      bool
	flagMaxBytes   int
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagBackend, "backend", "", "LLM backend (ollama, openai, lmstudio, vllm)")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Backend base URL")
	cmd.Flags().StringVar(&flagModel, "model", "", "Analysis model name")
	cmd.Flags().StringVar(&flagChatModel, "chat-model", "", "Chat/summary model name")
	cmd.Flags().IntVar(&flagMinIssues, "min-issues", 0, "Minimum issues to extract per file")
	cmd.Flags().IntVar(&flagMaxLines, "max-lines", 0, "Maximum lines per file before truncation")
	cmd.Flags().IntVar(&flagMaxBytes, "max-file-bytes", 0, "Maximum file size in bytes")
	cmd.Flags().BoolVar(&flagFresh, "fresh", false, "Re-analyze all files, ignoring cached results")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	cmd.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "Retry attempts after a failed request")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagFailIssues, "fail-on-issues", false, "Exit nonzero when any issue is found")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagBackend != "" {
		m["backend"] = flagBackend
	}
	if flagBaseURL != "" {
		m["baseUrl"] = flagBaseURL
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagChatModel != "" {
		m["chatModel"] = flagChatModel
	}
	if flagMinIssues > 0 {
		m["minIssues"] = fmt.Sprintf("%d", flagMinIssues)
	}
	if flagMaxLines > 0 {
		m["maxLines"] = fmt.Sprintf("%d", flagMaxLines)
	}
	if flagMaxBytes > 0 {
		m["maxFileBytes"] = fmt.Sprintf("%d", flagMaxBytes)
	}
	if flagTimeout > 0 {
		m["timeoutSeconds"] = fmt.Sprintf("%d", flagTimeout)
	}
	if flagMaxRetries > 0 {
		m["maxRetries"] = fmt.Sprintf("%d", flagMaxRetries)
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// newClient builds the transport client from the effective config.
func newClient(cfg config.Config, log *zap.Logger) (llm.Client, error) {
	return llm.New(cfg.Backend, llm.Options{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  time.Duration(cfg.InitialDelayMS) * time.Millisecond,
		BackoffFactor: cfg.BackoffFactor,
		Logger:        log,
	})
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze all source files under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagExclude != "" {
			cfg.Exclude = append(cfg.Exclude, splitComma(flagExclude)...)
		}
		if flagNoRedact {
			cfg.Privacy.RedactSecrets = false
			fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		log := logging.New(cfg.Logging)
		defer log.Sync()

		client, err := newClient(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		contextPath, historyPath, err := cfg.DataPaths()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		history := store.NewHistoryStore(historyPath, cfg.HistoryLimit)

		a := analyzer.New(cfg, client, history, log)
		a.Fresh = flagFresh
		result, err := a.Run(context.Background(), root, contextPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		stats := client.Stats()
		log.Info("backend usage",
			zap.Int("requests", stats.TotalRequests),
			zap.Int("tokens", stats.TotalTokens),
			zap.Int("errors", stats.Errors),
			zap.Duration("avgRequest", stats.AverageRequest))

		if err := report.WriteResult(result, flagFormat, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if flagFailIssues && result.TotalIssues > 0 {
			exitCode = ExitIssues
		}
		return nil
	},
}

func init() {
	addAnalyzeFlags(analyzeCmd)
}
