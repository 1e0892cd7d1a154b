package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brand-audit-cli/internal/pipeline"
	"github.com/sells-group/brand-audit-cli/internal/report"
	anthropicpkg "github.com/sells-group/brand-audit-cli/pkg/anthropic"
)

var (
	runDir    string
	runVisual string
	runSocial string
	runXLSX   string
	runOut    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full audit over a source CSV directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		// Narrative prose is optional; without an API key the reports carry
		// structured data only.
		var narrator report.Narrator
		if cfg.Anthropic.Key != "" {
			client := anthropicpkg.NewClient(cfg.Anthropic.Key)
			narrator = anthropicpkg.NewNarrator(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Anthropic.RPS)
		}

		p := pipeline.New(cfg, st, narrator)
		outcome, err := p.Run(ctx, pipeline.Options{
			SourceDir:       runDir,
			VisualAuditPath: runVisual,
			SocialAuditPath: runSocial,
			XLSXPath:        runXLSX,
		})
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("audit complete",
			zap.String("run_id", outcome.RunID),
			zap.Int("records", len(outcome.Records.Records)),
			zap.Float64("brand_health", outcome.Analytics.BrandHealth.Score),
			zap.String("status", outcome.Analytics.BrandHealth.Status),
		)

		out := os.Stdout
		if runOut != "" {
			f, err := os.Create(runOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func init() {
	runCmd.Flags().StringVar(&runDir, "dir", "", "source directory containing the audit CSVs (required)")
	runCmd.Flags().StringVar(&runVisual, "visual", "", "path to the visual audit markdown report")
	runCmd.Flags().StringVar(&runSocial, "social", "", "path to the social media audit markdown report")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "write the scorecard workbook to this path")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the outcome JSON here instead of stdout")
	_ = runCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(runCmd)
}
