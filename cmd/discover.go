package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/export"
	"github.com/sells-group/discovery-cli/internal/model"
	"github.com/sells-group/discovery-cli/internal/query"
)

var (
	discoverEntity          string
	discoverProfile         string
	discoverDocs            []string
	discoverGeography       []string
	discoverIndustry        []string
	discoverSize            string
	discoverPartnershipType string
	discoverNoScore         bool
	discoverOutput          string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover potential customers or partners",
	Long:  "Builds search queries from a business profile, searches the web, filters candidates by relevance, enriches them, and (unless --no-score) attaches match scores and rationales.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var entity model.EntityType
		switch discoverEntity {
		case "customer":
			entity = model.EntityCustomer
		case "partner":
			entity = model.EntityPartner
		default:
			return eris.Errorf("invalid --entity %q (use customer or partner)", discoverEntity)
		}

		e, err := initEnv(!discoverNoScore)
		if err != nil {
			return err
		}

		var bctx model.BusinessContext
		switch {
		case discoverProfile != "":
			bctx, err = loadProfile(discoverProfile)
		case len(discoverDocs) > 0:
			bctx, err = e.extractor.ExtractFromFiles(ctx, discoverDocs)
		default:
			zap.L().Warn("no profile or documents given, running generic discovery")
		}
		if err != nil {
			return err
		}

		filters := query.Filters{
			Geography:       discoverGeography,
			Industry:        discoverIndustry,
			Size:            discoverSize,
			PartnershipType: discoverPartnershipType,
		}

		result, err := e.discovery.Run(ctx, bctx, entity, filters)
		if err != nil {
			return err
		}

		printSummary(cmd, result)

		if discoverOutput != "" {
			if err := export.Save(discoverOutput, result); err != nil {
				return err
			}
			cmd.Printf("Results written to %s\n", discoverOutput)
		}
		return nil
	},
}

func printSummary(cmd *cobra.Command, result model.DiscoveryResult) {
	cmd.Printf("Run %s: %d %ss found\n", result.RunID, len(result.Companies), result.EntityType)
	if result.Scored {
		cmd.Printf("Average match score: %.1f\n", result.AvgScore)
	}
	for i, c := range result.Companies {
		line := fmt.Sprintf("%2d. %s", i+1, c.Name)
		if c.MatchScore != nil {
			line += fmt.Sprintf(" - %.1f", c.MatchScore.OverallScore)
			if c.Rationale != nil {
				line += fmt.Sprintf(" (%s)", c.Rationale.Recommendation)
			}
		}
		cmd.Println(line)
	}
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverEntity, "entity", "e", "customer", "entity type to discover: customer or partner")
	discoverCmd.Flags().StringVarP(&discoverProfile, "profile", "p", "", "path to a saved business profile JSON (from 'extract')")
	discoverCmd.Flags().StringSliceVarP(&discoverDocs, "docs", "d", nil, "business documents to extract the profile from")
	discoverCmd.Flags().StringSliceVar(&discoverGeography, "geography", nil, "restrict search to these regions")
	discoverCmd.Flags().StringSliceVar(&discoverIndustry, "industry", nil, "restrict search to these industries")
	discoverCmd.Flags().StringVar(&discoverSize, "size", "", "company size filter (e.g. '50-200 employees')")
	discoverCmd.Flags().StringVar(&discoverPartnershipType, "partnership-type", "", "partnership type filter for partner runs")
	discoverCmd.Flags().BoolVar(&discoverNoScore, "no-score", false, "skip the match-scoring and rationale stage")
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "", "export results to a .csv, .json, or .xlsx file")
	rootCmd.AddCommand(discoverCmd)
}
