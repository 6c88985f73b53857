package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecko-analytics/market-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "market-cli",
	Short: "ZIP-level market opportunity scoring",
	Long:  "Ranks ZIP-code market areas by business-siting opportunity: demographic, housing, and competitive-density signals combined into a weighted 0-100 composite score with batch-relative rank, z-score, and percentile.",
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
