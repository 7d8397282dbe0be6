// Command providers exercises model backends from the terminal: checking
// that they are configured and reachable, running one-off completions, and
// producing embeddings.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	providers "github.com/JohnPlummer/jp-go-providers"
)

var (
	providerName string
	modelName    string
	maxTokens    int
	temperature  float64
	debug        bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect and invoke remote model backends",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.RFC3339,
			})))
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(testCmd(), generateCmd(), embedCmd())
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test [provider...]",
		Short: "Run a setup and live-call check against providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := providers.ProviderIDs()
			if len(args) > 0 {
				ids = ids[:0]
				for _, arg := range args {
					id, err := providers.ParseProviderID(arg)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
			}

			failed := 0
			for _, status := range providers.CheckAll(cmd.Context(), ids) {
				if status.Healthy {
					slog.Info("provider ok",
						"provider", status.Provider,
						"latency", status.Latency)
					continue
				}
				failed++
				slog.Error("provider check failed",
					"provider", status.Provider,
					"error", status.Error,
					"latency", status.Latency)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d providers failed", failed, len(ids))
			}
			return nil
		},
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Run a completion through the retry driver",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provider()
			if err != nil {
				return err
			}
			if err := p.Setup(); err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			llm := p.LLM(modelName)

			opts := []providers.GenerateOption{}
			if maxTokens > 0 {
				opts = append(opts, providers.WithMaxTokens(maxTokens))
			}
			if temperature >= 0 {
				opts = append(opts, providers.WithTemperature(temperature))
			}

			gen, err := providers.Retry(cmd.Context(),
				func(ctx context.Context) (*providers.Generation, error) {
					return llm.Generate(ctx, prompt, opts...)
				}, logRetry)
			if err != nil {
				return err
			}

			fmt.Println(gen.Text)
			slog.Debug("completion finished",
				"request_id", gen.RequestID,
				"prompt_tokens", gen.Usage.PromptTokens,
				"completion_tokens", gen.Usage.CompletionTokens)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider identifier (required)")
	cmd.Flags().StringVar(&modelName, "model", "", "model name (required)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "cap on generated tokens")
	cmd.Flags().Float64Var(&temperature, "temperature", -1, "sampling temperature")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func embedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <text>...",
		Short: "Embed texts through the retry driver",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provider()
			if err != nil {
				return err
			}
			if err := p.Setup(); err != nil {
				return err
			}

			embedder := p.Embedder(modelName)
			vectors, err := providers.Retry(cmd.Context(),
				func(ctx context.Context) ([][]float32, error) {
					return embedder.Embed(ctx, args)
				}, logRetry)
			if err != nil {
				return err
			}

			for i, vector := range vectors {
				fmt.Printf("%d\t%d dimensions\n", i, len(vector))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider identifier (required)")
	cmd.Flags().StringVar(&modelName, "model", "", "model name (required)")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func provider() (providers.Provider, error) {
	id, err := providers.ParseProviderID(providerName)
	if err != nil {
		return nil, err
	}
	return providers.New(id)
}

func logRetry(message string, delay time.Duration, attempt int) {
	slog.Warn("retrying model call",
		"attempt", attempt,
		"delay", delay,
		"error", message)
}
