package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fipulse/internal/app"
	"fipulse/internal/config"
	"fipulse/internal/dataset"
	"fipulse/internal/infrastructure"
)

var (
	flagConfig    string
	flagUnified   string
	flagRefCodes  string
	flagArtifacts string
)

var rootCmd = &cobra.Command{
	Use:   "fipulse",
	Short: "Ethiopia financial inclusion analytics",
	Long: "fipulse explores the unified financial inclusion dataset, models event " +
		"impacts on indicators, produces forecasts and policy reports, and serves " +
		"the dashboard API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagUnified, "data", "", "path to the unified data workbook or CSV")
	rootCmd.PersistentFlags().StringVar(&flagRefCodes, "codes", "", "path to the reference codes table")
	rootCmd.PersistentFlags().StringVar(&flagArtifacts, "artifacts", "", "directory for generated artifacts")

	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fipulse %s\n", app.Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagUnified != "" {
		cfg.Paths.UnifiedFile = flagUnified
	}
	if flagRefCodes != "" {
		cfg.Paths.RefCodesFile = flagRefCodes
	}
	if flagArtifacts != "" {
		cfg.Paths.ArtifactsDir = flagArtifacts
	}
	return cfg, nil
}

// loadStore initializes logging and loads the dataset for analysis commands.
func loadStore(ctx context.Context) (*config.Config, *dataset.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	store, err := dataset.NewLoader(logger).Load(ctx, cfg.Paths.UnifiedFile, cfg.Paths.RefCodesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return cfg, store, nil
}
