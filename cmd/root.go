package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "skiplogic",
	Short: "Survey skip-logic extraction and data validation",
	Long:  "Finds skip-logic candidates in questionnaire documents, extracts structured skip rules via an LLM, derives codebook rules and validates survey datasets against them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
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
