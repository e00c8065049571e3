package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/birthday-leads/internal/config"
	"github.com/sells-group/birthday-leads/internal/correlate"
	"github.com/sells-group/birthday-leads/internal/export"
	"github.com/sells-group/birthday-leads/internal/ingest"
	"github.com/sells-group/birthday-leads/internal/model"
	"github.com/sells-group/birthday-leads/internal/progress"
)

var (
	processInput string
	processFrom  string
	processTo    string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract birthday candidates from an export file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		candidates, opts, err := runCorrelation(cmd.Context())
		if err != nil {
			return err
		}
		return writeExports(candidates, opts.WindowStart, opts.WindowEnd)
	},
}

func init() {
	processCmd.Flags().StringVar(&processInput, "input", "", "path to the customer export file (required)")
	processCmd.Flags().StringVar(&processFrom, "from", "", "window start, YYYY-MM-DD (overrides config)")
	processCmd.Flags().StringVar(&processTo, "to", "", "window end, YYYY-MM-DD (overrides config)")
	_ = processCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(processCmd)
}

// correlationOptions merges flags over config into engine options.
func correlationOptions(cfg *config.Config) (correlate.Options, error) {
	win := cfg.Window
	if processFrom != "" {
		win.Start = processFrom
	}
	if processTo != "" {
		win.End = processTo
	}
	start, end, err := win.Parse()
	if err != nil {
		return correlate.Options{}, eris.Wrap(err, "window bounds (set window.start/window.end or --from/--to)")
	}

	return correlate.Options{
		WindowStart:    start,
		WindowEnd:      end,
		MinAge:         cfg.Ages.Min,
		MaxAge:         cfg.Ages.Max,
		ValidatePhones: cfg.Phone.Validate,
		Region:         cfg.Phone.Region,
	}, nil
}

// runCorrelation ingests the input file and runs the correlation engine.
func runCorrelation(ctx context.Context) ([]model.Candidate, correlate.Options, error) {
	opts, err := correlationOptions(cfg)
	if err != nil {
		return nil, opts, err
	}

	rows, err := ingest.ReadFile(processInput)
	if err != nil {
		return nil, opts, err
	}

	engine := correlate.New(opts, progress.Logger(zap.L()))
	candidates, err := engine.Run(ctx, rows)
	if err != nil {
		return nil, opts, err
	}

	zap.L().Info("process complete",
		zap.String("input", processInput),
		zap.Int("rows", len(rows)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, opts, nil
}

// writeExports writes the enabled export artifacts with conflict-safe names.
func writeExports(candidates []model.Candidate, start, end time.Time) error {
	if cfg.Output.WriteCSV {
		path := export.ResolvePath(cfg.Output.Dir, export.FileName(start, end, "csv"))
		if err := export.WriteCSV(candidates, path); err != nil {
			return err
		}
		zap.L().Info("export written", zap.String("path", path))
	}
	if cfg.Output.WriteXLSX {
		path := export.ResolvePath(cfg.Output.Dir, export.FileName(start, end, "xlsx"))
		if err := export.WriteXLSX(candidates, path); err != nil {
			return err
		}
		zap.L().Info("export written", zap.String("path", path))
	}
	return nil
}
