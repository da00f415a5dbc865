package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fipulse/internal/analysis"
	"fipulse/internal/exporter"
	"fipulse/internal/infrastructure"
)

var flagCorrelationsOut string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run exploratory analysis",
	Long: "Compute pillar trajectories, gender gaps, cross-indicator correlations " +
		"and data gaps, and print the insights summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		analyzer := analysis.New(store, infrastructure.GetLogger())
		fmt.Fprint(cmd.OutOrStdout(), analyzer.Insights())

		if flagCorrelationsOut != "" {
			correlations := analyzer.Correlations()
			rows := make([][]string, 0, len(correlations))
			for _, c := range correlations {
				rows = append(rows, []string{
					c.IndicatorA, c.IndicatorB,
					fmt.Sprintf("%.4f", c.Coefficient),
					fmt.Sprintf("%d", c.SharedYears),
				})
			}
			w := exporter.NewCSVWriter(cfg.Paths.ArtifactsDir, infrastructure.GetLogger())
			return w.WriteSimpleCSV(flagCorrelationsOut,
				[]string{"indicator_a", "indicator_b", "pearson_r", "shared_years"}, rows)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&flagCorrelationsOut, "correlations-out", "", "write the correlation table to this CSV artifact")
}
