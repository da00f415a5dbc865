package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fipulse/internal/exporter"
	"fipulse/internal/infrastructure"
	"fipulse/internal/report"
)

var (
	flagReportTitle      string
	flagReportIndicators []string
	flagReportYears      []int
	flagReportOut        string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the policy report",
	Long: "Assemble the Markdown policy report: executive summary, data overview, " +
		"event analysis, correlations, forecasts and recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		generator := report.NewGenerator(store, infrastructure.GetLogger())
		md, err := generator.Generate(report.Options{
			Title:              flagReportTitle,
			ForecastIndicators: flagReportIndicators,
			ForecastYears:      flagReportYears,
		})
		if err != nil {
			return err
		}

		w := exporter.NewMarkdownWriter(cfg.Paths.ArtifactsDir, infrastructure.GetLogger())
		if err := w.WriteDocument(flagReportOut, md); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", flagReportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&flagReportTitle, "title", "", "report title")
	reportCmd.Flags().StringSliceVar(&flagReportIndicators, "indicators", nil, "indicator codes to forecast in the report")
	reportCmd.Flags().IntSliceVar(&flagReportYears, "years", nil, "forecast years (default: next three)")
	reportCmd.Flags().StringVar(&flagReportOut, "out", "policy_report.md", "artifact file for the report")
}
