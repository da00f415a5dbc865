package impact

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	apperrors "fipulse/internal/errors"
	"fipulse/pkg/contracts/domain"
)

// ValidationResult compares the modeled effect of one event on one indicator
// against an observed change over a historical window.
type ValidationResult struct {
	EventID         string     `json:"event_id"`
	Indicator       string     `json:"indicator_code"`
	EventDate       time.Time  `json:"event_date"`
	Form            EffectForm `json:"effect_form"`
	LagMonths       int        `json:"lag_months"`
	Magnitude       float64    `json:"impact_magnitude"`
	PredictedEffect float64    `json:"predicted_effect"`
	ObservedChange  float64    `json:"observed_change"`
	AbsoluteError   float64    `json:"absolute_error"`
	// RelativeErrorPct is NaN-free: it is only set when the observed change
	// is non-zero.
	RelativeErrorPct *float64 `json:"relative_error_pct,omitempty"`
}

// Validator checks hand-specified impact links against historical movements.
// Refinement of magnitudes stays a manual step; nothing here re-fits parameters.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator. A nil logger falls back to slog.Default.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate computes the model-predicted effect of the given event on the given
// indicator at the end of the observed window and reports the error against
// the observed change.
func (v *Validator) Validate(
	events []domain.Event,
	links []domain.ImpactLink,
	eventID, indicator string,
	observedChange float64,
	windowStart, windowEnd time.Time,
) (*ValidationResult, error) {
	var link *domain.ImpactLink
	for i := range links {
		if links[i].ParentID == eventID && links[i].Indicator == indicator {
			if link != nil {
				return nil, apperrors.DuplicateLink(eventID, indicator)
			}
			link = &links[i]
		}
	}
	if link == nil {
		return nil, &apperrors.LinkError{EventID: eventID, Indicator: indicator, Err: apperrors.ErrNoImpactLink}
	}

	var event *domain.Event
	for i := range events {
		if events[i].RecordID == eventID {
			event = &events[i]
			break
		}
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEventNotFound, eventID)
	}

	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("window end %s precedes start %s",
			windowEnd.Format("2006-01-02"), windowStart.Format("2006-01-02"))
	}

	form, err := ParseEffectForm(link.EffectForm)
	if err != nil {
		return nil, err
	}

	elapsed := MonthsBetween(event.Date, windowEnd)
	predicted, err := Effect(elapsed, link.LagMonths, link.SignedMagnitude(), form)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		EventID:         eventID,
		Indicator:       indicator,
		EventDate:       event.Date,
		Form:            form,
		LagMonths:       link.LagMonths,
		Magnitude:       link.SignedMagnitude(),
		PredictedEffect: predicted,
		ObservedChange:  observedChange,
		AbsoluteError:   math.Abs(observedChange - predicted),
	}
	if observedChange != 0 {
		rel := result.AbsoluteError / math.Abs(observedChange) * 100
		result.RelativeErrorPct = &rel
	}

	v.logger.Info("validated event impact",
		slog.String("event_id", eventID),
		slog.String("indicator", indicator),
		slog.Float64("predicted", predicted),
		slog.Float64("observed", observedChange),
		slog.Float64("absolute_error", result.AbsoluteError))

	return result, nil
}

// MonthsBetween returns the (possibly fractional) number of months from a to b,
// negative when b precedes a. A month is 30 days, matching the collection
// convention for lags.
func MonthsBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24 / 30
}
