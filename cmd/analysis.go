package cmd

import (
	"github.com/spf13/cobra"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/services"
	"github.com/uzzysan/Klauzule-zakazane/internal/ui"
)

// analysisCmd represents the analysis command group
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Show finished analyses",
	Long: `Show finished analyses stored on the service.

Available subcommands:
  show     - Show an analysis and its flagged clauses
  document - Show the latest analysis of a document`,
}

var analysisShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show an analysis and its flagged clauses",
	Long: `Show an analysis and its flagged clauses.

With --risk-level or --min-confidence only the matching flagged clauses are
listed.

Examples:
  klauzula analysis show 5b1c7a52-8d4e-4f4b-a7a1-2f6f8f0e9c11
  klauzula analysis show 5b1c7a52-8d4e-4f4b-a7a1-2f6f8f0e9c11 --risk-level high
  klauzula analysis show 5b1c7a52-8d4e-4f4b-a7a1-2f6f8f0e9c11 --min-confidence 0.8 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalysisShow,
}

var analysisDocumentCmd = &cobra.Command{
	Use:   "document <document-id>",
	Short: "Show the latest analysis of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalysisDocument,
}

func init() {
	rootCmd.AddCommand(analysisCmd)
	analysisCmd.AddCommand(analysisShowCmd)
	analysisCmd.AddCommand(analysisDocumentCmd)

	analysisShowCmd.Flags().StringP("output", "o", "table", "output format: table, json or yaml")
	analysisShowCmd.Flags().String("risk-level", "", "only clauses with this risk level: high, medium or low")
	analysisShowCmd.Flags().Float64("min-confidence", 0, "only clauses with at least this confidence (0-1)")

	analysisDocumentCmd.Flags().StringP("output", "o", "table", "output format: table, json or yaml")
}

func runAnalysisShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, nil)
	if err != nil {
		return err
	}

	format, err := outputFlag(cmd)
	if err != nil {
		return err
	}
	report := ui.NewReport(cmd.OutOrStdout(), format)
	client := services.NewAnalysisClient(rt.http, rt.logger)

	if cmd.Flags().Changed("risk-level") || cmd.Flags().Changed("min-confidence") {
		riskLevel, _ := cmd.Flags().GetString("risk-level")
		minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")

		clauses, err := client.ListClauses(cmd.Context(), args[0], models.ClauseFilter{
			RiskLevel:     models.RiskLevel(riskLevel),
			MinConfidence: minConfidence,
		})
		if err != nil {
			return err
		}
		return report.WriteClauses(clauses)
	}

	result, err := client.GetAnalysis(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return report.WriteAnalysis(result)
}

func runAnalysisDocument(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, nil)
	if err != nil {
		return err
	}

	format, err := outputFlag(cmd)
	if err != nil {
		return err
	}

	doc, err := services.NewAnalysisClient(rt.http, rt.logger).GetDocumentAnalysis(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return ui.NewReport(cmd.OutOrStdout(), format).WriteDocumentAnalysis(doc)
}
