// Package main provides the manual QA CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wladywlady/t3-render/internal/config"
	"github.com/wladywlady/t3-render/internal/llm"
	"github.com/wladywlady/t3-render/internal/observability"
	"github.com/wladywlady/t3-render/internal/qa"
	"github.com/wladywlady/t3-render/internal/retrieval"
	"github.com/wladywlady/t3-render/internal/vehicle"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "manual-qa-cli",
	Short: "CLI for asking questions against Tesla owner manuals",
	Long: `manual-qa-cli runs the manual question-answering pipeline from the
terminal, without the HTTP server.

Use this tool to:
- Ask a question against a vehicle manual and print the cited answer
- Inspect the retrieved context passages behind an answer
- List the supported vehicle models

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logLevel := cfg.Observability.LogLevel
		if !outputJSON {
			// Interactive runs keep the terminal for answers, not logs.
			logLevel = "error"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       logLevel,
			Format:      logFormat,
			ServiceName: "manual-qa-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var (
		model       string
		question    string
		showContext bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a question against a vehicle manual",
		Long: `Ask retrieves manual passages for the given vehicle model, filters them
for relevance and generates a cited answer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
			defer cancel()

			ui := NewUI(outputJSON, noColor)

			searchClient, err := retrieval.NewClient(retrieval.Config{
				BaseURL:      cfg.Search.BaseURL,
				APIKey:       cfg.Search.APIKey,
				ProjectionID: cfg.Search.ProjectionID,
				K:            cfg.Search.K,
				Timeout:      cfg.Search.Timeout,
			}, logger)
			if err != nil {
				return fmt.Errorf("create search client: %w", err)
			}

			llmClient := llm.NewClient(llm.Config{
				BaseURL: cfg.LLM.BaseURL,
				Model:   cfg.LLM.Model,
				APIKey:  cfg.LLM.APIKey,
				Timeout: cfg.LLM.Timeout,
			})

			pipeline := qa.NewPipeline(searchClient, llmClient, logger)

			spin := ui.NewSpinner("Consultando el manual...")
			spin.Start()

			resp, err := pipeline.Answer(ctx, qa.Request{
				Model:    model,
				Question: question,
			})

			spin.Stop()

			if err != nil {
				var qaErr *qa.Error
				if errors.As(err, &qaErr) {
					ui.Error("%s", qaErr.Message)
					for field, msgs := range qaErr.Fields {
						for _, msg := range msgs {
							ui.Error("  %s: %s", field, msg)
						}
					}
					if outputJSON {
						enc := json.NewEncoder(os.Stdout)
						enc.SetIndent("", "  ")
						_ = enc.Encode(map[string]interface{}{
							"error":  qaErr.Message,
							"fields": qaErr.Fields,
						})
					}
					os.Exit(1)
				}
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			ui.Heading("Respuesta")
			fmt.Println(resp.Answer)

			if len(resp.References) > 0 {
				ui.Heading("Referencias")
				for _, ref := range resp.References {
					line := fmt.Sprintf("(%s) %s", ref.Label, ref.Document)
					if ref.Pages != "" {
						line += " (" + ref.Pages + ")"
					}
					fmt.Println("  " + line)
				}
			}

			if showContext {
				ui.Heading("Contexto")
				for _, passage := range resp.Context {
					fmt.Printf("  (%s) %s\n", passage.Label, passage.Text)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "vehicle model (required)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to answer (required)")
	cmd.Flags().BoolVar(&showContext, "context", false, "print the retrieved context passages")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

// newModelsCmd creates the models subcommand.
func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported vehicle models",
		RunE: func(cmd *cobra.Command, args []string) error {
			slugs := vehicle.Supported()

			if outputJSON {
				names := make([]string, len(slugs))
				for i, slug := range slugs {
					names[i] = slug.String()
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"models": names})
			}

			for _, slug := range slugs {
				fmt.Println(slug)
			}
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				_ = enc.Encode(map[string]string{"version": "0.1.0"})
				return
			}
			fmt.Println("manual-qa-cli v0.1.0")
		},
	}
}
