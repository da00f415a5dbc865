package forecast

import (
	"fmt"
	"log/slog"
	"time"

	"fipulse/internal/dataset"
	apperrors "fipulse/internal/errors"
	"fipulse/internal/impact"
	"fipulse/pkg/contracts/domain"
)

// Scenario is a fixed multiplicative adjustment applied to a point forecast.
// The multipliers are a documented simplification, not statistically derived
// intervals; the confidence band is carried separately and the two are never
// reconciled into a single interval.
type Scenario string

const (
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioBase        Scenario = "base"
	ScenarioPessimistic Scenario = "pessimistic"
)

// Multiplier returns the fixed scenario multiplier.
func (s Scenario) Multiplier() float64 {
	switch s {
	case ScenarioOptimistic:
		return 1.2
	case ScenarioPessimistic:
		return 0.8
	default:
		return 1.0
	}
}

// ParseScenario validates a scenario name. An empty name defaults to base.
func ParseScenario(name string) (Scenario, error) {
	switch Scenario(name) {
	case ScenarioOptimistic, ScenarioBase, ScenarioPessimistic:
		return Scenario(name), nil
	case "":
		return ScenarioBase, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownScenario, name)
	}
}

// Scenarios lists the scenarios in optimistic-to-pessimistic order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioOptimistic, ScenarioBase, ScenarioPessimistic}
}

// Row is one forecast year. Trend is the regression value, EventEffect the
// combined event contribution, Forecast their sum, Lower/Upper the confidence
// band and ScenarioValues the fixed-multiplier variants of Forecast.
type Row struct {
	Year           int                  `json:"year"`
	Trend          float64              `json:"trend"`
	EventEffect    float64              `json:"event_effect"`
	Forecast       float64              `json:"forecast"`
	Lower          float64              `json:"lower_bound"`
	Upper          float64              `json:"upper_bound"`
	ScenarioValues map[Scenario]float64 `json:"scenarios"`
}

// Result is the full output of a forecasting run for one indicator.
type Result struct {
	Indicator  string               `json:"indicator_code"`
	Pillar     domain.Pillar        `json:"pillar"`
	Historical []dataset.YearValue  `json:"historical"`
	Model      *TrendModel          `json:"model"`
	Confidence float64              `json:"confidence_level"`
	Rows       []Row                `json:"rows"`
}

// Options configures a forecasting run.
type Options struct {
	Years         []int
	IncludeEvents bool
	ModelType     ModelType
	Confidence    float64
	Combination   impact.CombinationRule
}

// Forecaster produces trend plus event-augmented forecasts from a store.
type Forecaster struct {
	store  *dataset.Store
	logger *slog.Logger
}

// NewForecaster creates a forecaster. A nil logger falls back to slog.Default.
func NewForecaster(store *dataset.Store, logger *slog.Logger) *Forecaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forecaster{store: store, logger: logger}
}

// ForecastIndicator runs the complete pipeline for one indicator: annual
// series extraction, trend fit, confidence band, optional event augmentation
// and scenario generation. This function is the boundary contract of the
// whole model.
func (f *Forecaster) ForecastIndicator(indicator string, pillar domain.Pillar, opts Options) (*Result, error) {
	if len(opts.Years) == 0 {
		return nil, fmt.Errorf("no forecast years requested")
	}
	if opts.ModelType == "" {
		opts.ModelType = ModelLinear
	}
	if opts.Confidence == 0 {
		opts.Confidence = 0.95
	}
	if opts.Combination == "" {
		opts.Combination = impact.CombineAdditive
	}

	series, err := f.store.AnnualSeries(indicator)
	if err != nil {
		return nil, err
	}

	model, err := FitTrend(indicator, series, opts.ModelType)
	if err != nil {
		return nil, err
	}

	f.logger.Info("fitted trend model",
		slog.String("indicator", indicator),
		slog.String("model_type", string(opts.ModelType)),
		slog.Int("observations", model.ObservationCount()),
		slog.Float64("slope", model.Slope),
		slog.Float64("r2", model.R2))

	rows := make([]Row, 0, len(opts.Years))
	for _, year := range opts.Years {
		trend := model.Predict(year)
		margin := model.PredictionInterval(year, opts.Confidence)

		var eventEffect float64
		if opts.IncludeEvents {
			eventEffect, err = f.eventEffectAt(indicator, year, opts.Combination)
			if err != nil {
				return nil, err
			}
		}

		forecast := clipPercent(trend + eventEffect)
		row := Row{
			Year:        year,
			Trend:       trend,
			EventEffect: eventEffect,
			Forecast:    forecast,
			Lower:       clipPercent(forecast - margin),
			Upper:       clipPercent(forecast + margin),
			ScenarioValues: map[Scenario]float64{
				ScenarioOptimistic:  clipPercent(forecast * ScenarioOptimistic.Multiplier()),
				ScenarioBase:        forecast,
				ScenarioPessimistic: clipPercent(forecast * ScenarioPessimistic.Multiplier()),
			},
		}
		rows = append(rows, row)
	}

	return &Result{
		Indicator:  indicator,
		Pillar:     pillar,
		Historical: series,
		Model:      model,
		Confidence: opts.Confidence,
		Rows:       rows,
	}, nil
}

// eventEffectAt combines every linked event's modeled effect on the indicator
// at the end of the given year. Forecasts are year-end values, so effects are
// evaluated at December 31.
func (f *Forecaster) eventEffectAt(indicator string, year int, rule impact.CombinationRule) (float64, error) {
	links := f.store.LinksByIndicator(indicator)
	if len(links) == 0 {
		return 0, nil
	}

	yearEnd := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	var effects []float64
	for _, link := range links {
		event, ok := f.store.EventByID(link.ParentID)
		if !ok {
			return 0, fmt.Errorf("link %s: %w: %s", link.RecordID, apperrors.ErrEventNotFound, link.ParentID)
		}

		form, err := impact.ParseEffectForm(link.EffectForm)
		if err != nil {
			return 0, fmt.Errorf("link %s: %w", link.RecordID, err)
		}

		elapsed := impact.MonthsBetween(event.Date, yearEnd)
		effect, err := impact.Effect(elapsed, link.LagMonths, link.SignedMagnitude(), form)
		if err != nil {
			return 0, err
		}
		effects = append(effects, effect)
	}

	return impact.Combine(effects, rule)
}

// ScenarioRows projects the result onto one scenario: the forecast and band
// are scaled by the fixed multiplier.
func (r *Result) ScenarioRows(scenario Scenario) ([]Row, error) {
	scenario, err := ParseScenario(string(scenario))
	if err != nil {
		return nil, err
	}
	mult := scenario.Multiplier()

	rows := make([]Row, len(r.Rows))
	for i, row := range r.Rows {
		scaled := row
		scaled.Forecast = clipPercent(row.Forecast * mult)
		scaled.Lower = clipPercent(row.Lower * mult)
		scaled.Upper = clipPercent(row.Upper * mult)
		rows[i] = scaled
	}
	return rows, nil
}

// clipPercent keeps values inside the [0, 100] range of percentage indicators.
func clipPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
