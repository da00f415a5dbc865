package impact

import (
	"fmt"
	"math"

	apperrors "fipulse/internal/errors"
)

// EffectForm selects the closed-form shape used to spread an event's magnitude
// over time.
type EffectForm string

const (
	// FormImmediate jumps to the full magnitude once the lag has elapsed.
	FormImmediate EffectForm = "immediate"
	// FormGradual ramps linearly to the full magnitude over 12 months.
	FormGradual EffectForm = "gradual"
	// FormDistributed decays geometrically at 5% per month after the lag.
	FormDistributed EffectForm = "distributed"
)

const (
	// rampMonths is the ramp-up horizon for the gradual form.
	rampMonths = 12.0
	// decayRate is the monthly retention factor for the distributed form.
	decayRate = 0.95
)

// ParseEffectForm validates an effect form tag. An empty tag defaults to
// immediate, matching how sparse impact-link rows are collected.
func ParseEffectForm(tag string) (EffectForm, error) {
	switch EffectForm(tag) {
	case FormImmediate, FormGradual, FormDistributed:
		return EffectForm(tag), nil
	case "":
		return FormImmediate, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownEffectForm, tag)
	}
}

// Effect returns the modeled contribution of a single event at elapsedMonths
// after the event date. It is a pure function of its inputs and is defined for
// all real elapsedMonths; every form contributes exactly zero before the lag.
func Effect(elapsedMonths float64, lagMonths int, magnitude float64, form EffectForm) (float64, error) {
	lag := float64(lagMonths)
	if elapsedMonths < lag {
		return 0, nil
	}
	active := elapsedMonths - lag

	switch form {
	case FormImmediate:
		return magnitude, nil
	case FormGradual:
		return magnitude * math.Min(active/rampMonths, 1.0), nil
	case FormDistributed:
		return magnitude * math.Pow(decayRate, active), nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownEffectForm, string(form))
	}
}

// EffectSeries evaluates Effect at each whole month in [0, horizonMonths].
// The series is computed on demand, never stored with the link.
func EffectSeries(horizonMonths, lagMonths int, magnitude float64, form EffectForm) ([]float64, error) {
	if horizonMonths < 0 {
		return nil, fmt.Errorf("negative horizon: %d", horizonMonths)
	}
	series := make([]float64, horizonMonths+1)
	for t := 0; t <= horizonMonths; t++ {
		v, err := Effect(float64(t), lagMonths, magnitude, form)
		if err != nil {
			return nil, err
		}
		series[t] = v
	}
	return series, nil
}
