package main

import (
	"github.com/spf13/cobra"

	"fipulse/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long: "Load the dataset and serve the analytics API with health and metrics " +
		"endpoints until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		application, err := app.NewApplication(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return application.Run()
	},
}
