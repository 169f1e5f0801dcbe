// Package commands implements the farmctl subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agrisense/internal/config"
	"agrisense/internal/infra/analyzer"
	"agrisense/internal/observability/logging"
	analysisUC "agrisense/internal/usecase/analysis"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type options struct {
	provider string
	output   string
}

// serviceFactory builds the analysis service for a provider override.
// Tests replace it with a stub-backed factory.
type serviceFactory func(ctx context.Context, provider string) (*analysisUC.Service, error)

func Execute() error {
	return NewRootCmd(newService).Execute()
}

// NewRootCmd assembles the command tree around factory.
func NewRootCmd(factory serviceFactory) *cobra.Command {
	opts := &options{}
	var svc *analysisUC.Service

	root := &cobra.Command{
		Use:          "farmctl",
		Short:        "Run AgriSense AI analyses from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputText && opts.output != outputJSON {
				return fmt.Errorf("--output must be %q or %q", outputText, outputJSON)
			}
			s, err := factory(cmd.Context(), opts.provider)
			if err != nil {
				return err
			}
			svc = s
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.provider, "provider", "", "analyzer provider: gemini|claude|openai (default from ANALYZER_PROVIDER)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "output format: text|json")

	get := func() *analysisUC.Service { return svc }
	root.AddCommand(
		soilCmd(opts, get),
		diseaseCmd(opts, get),
		cropsCmd(opts, get),
		yieldCmd(opts, get),
	)
	return root
}

// newService loads the analyzer configuration from the environment, with
// --provider taking precedence over ANALYZER_PROVIDER.
func newService(ctx context.Context, provider string) (*analysisUC.Service, error) {
	slog.SetDefault(logging.NewTextLogger(os.Stderr))
	if provider != "" {
		if err := os.Setenv("ANALYZER_PROVIDER", provider); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadAnalyzerConfig()
	if err != nil {
		return nil, err
	}
	p, err := analyzer.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	prompts, err := config.LoadPromptCatalog(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}
	// 1回きりの実行なのでキャッシュは不要
	return analysisUC.NewService(p, prompts, 0, cfg.MaxImageBytes), nil
}
