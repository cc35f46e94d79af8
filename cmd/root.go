package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/config"
	"github.com/sells-group/discovery-cli/internal/docs"
	"github.com/sells-group/discovery-cli/internal/errs"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "discovery-cli",
	Short: "Business discovery assistant",
	Long:  "Extracts a business profile from your documents, searches the web for potential customers or partners, and ranks the results with scored match rationales.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		docs.SetPdfToTextPath(cfg.Docs.PdfToTextPath)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errs.Guidance(errs.CategoryOf(err)))
		os.Exit(1)
	}
}
