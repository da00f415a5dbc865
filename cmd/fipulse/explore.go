package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fipulse/internal/explorer"
	"fipulse/internal/exporter"
	"fipulse/internal/infrastructure"
)

var flagExploreOut string

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Summarize the dataset structure",
	Long: "Print record counts, cross-tabulations, temporal coverage and the " +
		"events catalog; optionally write the exploration report artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		report := explorer.New(store, infrastructure.GetLogger()).RenderReport()
		fmt.Fprint(cmd.OutOrStdout(), report)

		if flagExploreOut != "" {
			w := exporter.NewMarkdownWriter(cfg.Paths.ArtifactsDir, infrastructure.GetLogger())
			if err := w.WriteDocument(flagExploreOut, report); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	exploreCmd.Flags().StringVar(&flagExploreOut, "out", "", "write the report to this artifact file")
}
