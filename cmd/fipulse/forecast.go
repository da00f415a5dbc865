package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fipulse/internal/exporter"
	"fipulse/internal/forecast"
	"fipulse/internal/infrastructure"
	"fipulse/pkg/contracts/domain"
)

var (
	flagForecastIndicator  string
	flagForecastYears      []int
	flagForecastScenario   string
	flagForecastNoEvents   bool
	flagForecastModel      string
	flagForecastConfidence float64
	flagForecastOut        string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast an indicator",
	Long: "Fit a trend on the indicator's annual series, add modeled event " +
		"effects and print the projected values with confidence bands and scenarios.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		scenario, err := forecast.ParseScenario(flagForecastScenario)
		if err != nil {
			return err
		}

		years := flagForecastYears
		if len(years) == 0 {
			base := time.Now().Year()
			years = []int{base + 1, base + 2, base + 3}
		}

		var pillar domain.Pillar
		if rc, ok := store.ReferenceCodes()[flagForecastIndicator]; ok {
			pillar = rc.Pillar
		}

		forecaster := forecast.NewForecaster(store, infrastructure.GetLogger())
		result, err := forecaster.ForecastIndicator(flagForecastIndicator, pillar, forecast.Options{
			Years:         years,
			IncludeEvents: !flagForecastNoEvents,
			ModelType:     forecast.ModelType(flagForecastModel),
			Confidence:    flagForecastConfidence,
		})
		if err != nil {
			return err
		}

		rows, err := result.ScenarioRows(scenario)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s model, %d observations, R² %.2f), scenario %s\n",
			result.Indicator, result.Model.Type, result.Model.ObservationCount(), result.Model.R2, scenario)
		fmt.Fprintf(out, "%-6s %10s %10s %10s %22s\n", "year", "trend", "events", "forecast", "interval")
		for _, row := range rows {
			fmt.Fprintf(out, "%-6d %10.2f %+10.2f %10.2f %10.2f - %9.2f\n",
				row.Year, row.Trend, row.EventEffect, row.Forecast, row.Lower, row.Upper)
		}

		if flagForecastOut != "" {
			w := exporter.NewCSVWriter(cfg.Paths.ArtifactsDir, infrastructure.GetLogger())
			return w.ExportForecast(flagForecastOut, result)
		}
		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVar(&flagForecastIndicator, "indicator", "", "indicator code to forecast")
	forecastCmd.Flags().IntSliceVar(&flagForecastYears, "years", nil, "years to project (default: next three)")
	forecastCmd.Flags().StringVar(&flagForecastScenario, "scenario", "base", "scenario: optimistic, base or pessimistic")
	forecastCmd.Flags().BoolVar(&flagForecastNoEvents, "no-events", false, "exclude modeled event effects")
	forecastCmd.Flags().StringVar(&flagForecastModel, "model", "linear", "trend model: linear or log")
	forecastCmd.Flags().Float64Var(&flagForecastConfidence, "confidence", 0.95, "confidence level for the interval")
	forecastCmd.Flags().StringVar(&flagForecastOut, "out", "", "write the forecast to this CSV artifact")
	forecastCmd.MarkFlagRequired("indicator")
}
