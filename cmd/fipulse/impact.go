package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fipulse/internal/exporter"
	"fipulse/internal/impact"
	"fipulse/internal/infrastructure"
)

var (
	flagMatrixOut      string
	flagKeepStrongest  bool
	flagValidEvent     string
	flagValidIndicator string
	flagValidObserved  float64
	flagValidStart     string
	flagValidEnd       string
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Build the event-indicator association matrix",
	Long: "Group impact links into the dense event-by-indicator matrix of signed " +
		"magnitudes, print its summary and optionally export the heatmap CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		policy := impact.DuplicateError
		if flagKeepStrongest {
			policy = impact.DuplicateKeepStrongest
		}
		matrix, err := impact.BuildMatrix(store.Events(), store.ImpactLinks(), impact.BuildOptions{
			OnDuplicate: policy,
		})
		if err != nil {
			return err
		}

		s := matrix.Summarize()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Association matrix: %d events x %d indicators\n", s.TotalEvents, s.TotalIndicators)
		fmt.Fprintf(out, "  impacts: %d (%d positive, %d negative)\n", s.TotalImpacts, s.PositiveImpacts, s.NegativeImpacts)
		fmt.Fprintf(out, "  strongest: %+.2fpp / %+.2fpp\n", s.MaxPositiveImpact, s.MaxNegativeImpact)
		fmt.Fprintf(out, "  mean |magnitude|: %.2fpp\n", s.MeanAbsMagnitude)

		if flagMatrixOut != "" {
			w := exporter.NewCSVWriter(cfg.Paths.ArtifactsDir, infrastructure.GetLogger())
			return w.ExportMatrix(flagMatrixOut, matrix)
		}
		return nil
	},
}

var impactValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a modeled impact against an observed change",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		start, err := time.Parse("2006-01-02", flagValidStart)
		if err != nil {
			return fmt.Errorf("invalid window start: %w", err)
		}
		end, err := time.Parse("2006-01-02", flagValidEnd)
		if err != nil {
			return fmt.Errorf("invalid window end: %w", err)
		}

		validator := impact.NewValidator(infrastructure.GetLogger())
		result, err := validator.Validate(store.Events(), store.ImpactLinks(),
			flagValidEvent, flagValidIndicator, flagValidObserved, start, end)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Event %s on %s (%s form, lag %d months)\n",
			result.EventID, result.Indicator, result.Form, result.LagMonths)
		fmt.Fprintf(out, "  predicted effect: %+.2fpp\n", result.PredictedEffect)
		fmt.Fprintf(out, "  observed change:  %+.2fpp\n", result.ObservedChange)
		fmt.Fprintf(out, "  absolute error:   %.2fpp\n", result.AbsoluteError)
		if result.RelativeErrorPct != nil {
			fmt.Fprintf(out, "  relative error:   %.1f%%\n", *result.RelativeErrorPct)
		}
		return nil
	},
}

func init() {
	impactCmd.Flags().StringVar(&flagMatrixOut, "out", "", "write the matrix to this CSV artifact")
	impactCmd.Flags().BoolVar(&flagKeepStrongest, "keep-strongest", false,
		"keep the strongest link when duplicates target the same cell instead of failing")

	impactValidateCmd.Flags().StringVar(&flagValidEvent, "event", "", "event record id")
	impactValidateCmd.Flags().StringVar(&flagValidIndicator, "indicator", "", "indicator code")
	impactValidateCmd.Flags().Float64Var(&flagValidObserved, "observed", 0, "observed change over the window (pp)")
	impactValidateCmd.Flags().StringVar(&flagValidStart, "start", "", "window start (YYYY-MM-DD)")
	impactValidateCmd.Flags().StringVar(&flagValidEnd, "end", "", "window end (YYYY-MM-DD)")
	for _, name := range []string{"event", "indicator", "start", "end"} {
		impactValidateCmd.MarkFlagRequired(name)
	}

	impactCmd.AddCommand(impactValidateCmd)
}
