package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/llm"
	"github.com/mgrantham/verdict/internal/logging"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Backend and model management",
}

type modelInfo struct {
	Backend string
	Models  []string
}

var knownModels = []modelInfo{
	{
		Backend: "ollama",
		Models: []string{
			"codellama:34b",
			"codellama:13b",
			"deepseek-coder:33b",
			"deepseek-coder-v2",
			"qwen2.5-coder",
			"llama3.3",
		},
	},
	{
		Backend: "openai",
		Models: []string{
			"gpt-4.1",
			"gpt-4.1-mini",
			"o3-mini",
		},
	},
	{
		Backend: "lmstudio",
		Models: []string{
			"deepseek-coder-v2-lite-instruct",
			"qwen2.5-coder-32b-instruct",
		},
	},
	{
		Backend: "vllm",
		Models: []string{
			"deepseek-ai/deepseek-coder-33b-instruct",
			"Qwen/Qwen2.5-Coder-32B-Instruct",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known backends and models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range knownModels {
			fmt.Fprintf(os.Stdout, "%s:\n", info.Backend)
			for _, m := range info.Models {
				fmt.Fprintf(os.Stdout, "  - %s\n", m)
			}
			fmt.Fprintln(os.Stdout)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Checking %s at %s...\n", cfg.Backend, cfg.BaseURL)

		log := logging.New(cfg.Logging)
		defer log.Sync()

		client, err := newClient(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res := client.Generate(ctx, llm.GenerateRequest{
			Model:     cfg.AnalysisModel,
			System:    "Respond with exactly: ok",
			Prompt:    "ping",
			MaxTokens: 10,
		})
		if res.Failed {
			fmt.Fprintf(os.Stderr, "FAIL: %s\n", res.Text)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", cfg.Backend)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagBackend, "backend", "", "Backend to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to probe with")
}
