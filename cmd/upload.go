package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/birthday-leads/internal/model"
	"github.com/sells-group/birthday-leads/internal/progress"
	"github.com/sells-group/birthday-leads/internal/upload"
	"github.com/sells-group/birthday-leads/pkg/erpnext"
)

var uploadDryRun bool

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Process an export file and sync leads into ERPNext",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.ERPNext.BaseURL == "" {
			return eris.New("erpnext base URL is required (BIRTHDAY_ERPNEXT_BASE_URL)")
		}
		if cfg.ERPNext.APIKey == "" || cfg.ERPNext.APISecret == "" {
			return eris.New("erpnext API key and secret are required")
		}

		candidates, opts, err := runCorrelation(ctx)
		if err != nil {
			return err
		}
		if err := writeExports(candidates, opts.WindowStart, opts.WindowEnd); err != nil {
			return err
		}

		leads := make([]model.Lead, len(candidates))
		for i, c := range candidates {
			leads[i] = model.LeadFromCandidate(c)
		}

		client := erpnext.NewClient(
			cfg.ERPNext.BaseURL,
			cfg.ERPNext.APIKey,
			cfg.ERPNext.APISecret,
			erpnext.WithRateLimit(cfg.ERPNext.RateLimit),
		)
		coord := upload.NewCoordinator(upload.NewERPNextStore(client), progress.Logger(zap.L()))
		coord.DryRun = uploadDryRun

		summary, err := coord.Upload(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "upload")
		}

		zap.L().Info("upload summary",
			zap.Int("total", summary.Total),
			zap.Int("missing_key", summary.MissingKey),
			zap.Int("missing_fields", summary.MissingFields),
			zap.Int("candidates", summary.Candidates),
			zap.Int("duplicates", summary.Duplicates),
			zap.Int("created", summary.Created),
			zap.Int("failed", summary.Failed),
			zap.Bool("dry_run", uploadDryRun),
		)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&processInput, "input", "", "path to the customer export file (required)")
	uploadCmd.Flags().StringVar(&processFrom, "from", "", "window start, YYYY-MM-DD (overrides config)")
	uploadCmd.Flags().StringVar(&processTo, "to", "", "window end, YYYY-MM-DD (overrides config)")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "reconcile against the remote store without creating leads")
	_ = uploadCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(uploadCmd)
}
