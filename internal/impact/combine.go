package impact

import (
	"fmt"
	"math"

	apperrors "fipulse/internal/errors"
)

// CombinationRule chooses how simultaneous per-event effects are merged.
type CombinationRule string

const (
	// CombineAdditive sums the effects, assuming independent events.
	CombineAdditive CombinationRule = "additive"
	// CombineMultiplicative compounds the effects. Effects are percentage
	// points, so the rule is 100 * (prod(1 + e_i/100) - 1).
	CombineMultiplicative CombinationRule = "multiplicative"
	// CombineMax keeps the single effect with the largest absolute magnitude,
	// sign preserved. Used for mutually exclusive events.
	CombineMax CombinationRule = "max"
)

// ParseCombinationRule validates a combination rule tag. An empty tag defaults
// to additive.
func ParseCombinationRule(tag string) (CombinationRule, error) {
	switch CombinationRule(tag) {
	case CombineAdditive, CombineMultiplicative, CombineMax:
		return CombinationRule(tag), nil
	case "":
		return CombineAdditive, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownCombination, tag)
	}
}

// Combine merges the per-event effect values at a single point in time.
// An empty effect set yields zero under every rule.
func Combine(effects []float64, rule CombinationRule) (float64, error) {
	if len(effects) == 0 {
		return 0, nil
	}

	switch rule {
	case CombineAdditive:
		var sum float64
		for _, e := range effects {
			sum += e
		}
		return sum, nil

	case CombineMultiplicative:
		prod := 1.0
		for _, e := range effects {
			prod *= 1 + e/100
		}
		return 100 * (prod - 1), nil

	case CombineMax:
		best := effects[0]
		for _, e := range effects[1:] {
			if math.Abs(e) > math.Abs(best) {
				best = e
			}
		}
		return best, nil

	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownCombination, string(rule))
	}
}

// CombineSeries merges aligned effect series element-wise. All series must
// share the same length; an empty set yields a nil series.
func CombineSeries(series [][]float64, rule CombinationRule) ([]float64, error) {
	if len(series) == 0 {
		return nil, nil
	}
	n := len(series[0])
	for i, s := range series {
		if len(s) != n {
			return nil, fmt.Errorf("series %d has length %d, want %d", i, len(s), n)
		}
	}

	combined := make([]float64, n)
	point := make([]float64, len(series))
	for t := 0; t < n; t++ {
		for i, s := range series {
			point[i] = s[t]
		}
		v, err := Combine(point, rule)
		if err != nil {
			return nil, err
		}
		combined[t] = v
	}
	return combined, nil
}
