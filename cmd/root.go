package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/birthday-leads/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "birthday-leads",
	Short: "Birthday lead extraction and CRM sync",
	Long:  "Extracts children with upcoming birthdays from a customer export, links each to a guardian, writes export files, and synchronizes leads into ERPNext without creating duplicates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
