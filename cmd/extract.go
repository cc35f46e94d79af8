package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract [documents...]",
	Short: "Extract a business profile from documents",
	Long:  "Parses the given documents (txt, md, csv, pdf) and extracts a structured business profile. Save the profile with --output and pass it to 'discover' via --profile.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(false)
		if err != nil {
			return err
		}

		profile, err := e.extractor.ExtractFromFiles(ctx, args)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encoding profile")
		}

		if extractOutput != "" {
			if err := os.WriteFile(extractOutput, append(out, '\n'), 0644); err != nil {
				return eris.Wrapf(err, "writing profile to %s", extractOutput)
			}
			zap.L().Info("profile saved", zap.String("path", extractOutput))
			return nil
		}

		cmd.Println(string(out))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write the profile JSON to a file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}
