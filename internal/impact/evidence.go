package impact

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"fipulse/pkg/contracts/domain"
)

// Evidence is one documented impact from a comparable country, used to estimate
// magnitudes when local data is insufficient.
type Evidence struct {
	Country   string  `json:"country"`
	Indicator string  `json:"indicator"`
	Magnitude float64 `json:"impact_magnitude"`
	LagMonths int     `json:"lag_months"`
	Source    string  `json:"source"`
	Notes     string  `json:"notes,omitempty"`
}

// EvidenceRegistry keeps comparable-country evidence keyed by event category
// and indicator code.
type EvidenceRegistry struct {
	entries map[string][]Evidence
}

// NewEvidenceRegistry creates an empty registry.
func NewEvidenceRegistry() *EvidenceRegistry {
	return &EvidenceRegistry{entries: make(map[string][]Evidence)}
}

func evidenceKey(category domain.EventCategory, indicator string) string {
	return string(category) + "_" + indicator
}

// Add records a piece of comparable evidence.
func (r *EvidenceRegistry) Add(category domain.EventCategory, e Evidence) {
	key := evidenceKey(category, e.Indicator)
	r.entries[key] = append(r.entries[key], e)
}

// Get returns all evidence for an event category and indicator.
func (r *EvidenceRegistry) Get(category domain.EventCategory, indicator string) []Evidence {
	return r.entries[evidenceKey(category, indicator)]
}

// Estimate aggregates the recorded evidence into a single magnitude and lag.
// Supported methods: median, mean, min, max.
type Estimate struct {
	Magnitude     float64  `json:"impact_magnitude"`
	LagMonths     int      `json:"lag_months"`
	EvidenceCount int      `json:"evidence_count"`
	Countries     []string `json:"countries"`
	Method        string   `json:"method"`
}

// EstimateImpact derives an impact estimate from comparable evidence. It fails
// when no evidence exists for the pair rather than inventing a magnitude.
func (r *EvidenceRegistry) EstimateImpact(category domain.EventCategory, indicator, method string) (*Estimate, error) {
	evidence := r.Get(category, indicator)
	if len(evidence) == 0 {
		return nil, fmt.Errorf("no comparable evidence for %s on %s", category, indicator)
	}

	magnitudes := make([]float64, len(evidence))
	lags := make([]float64, len(evidence))
	countries := make([]string, len(evidence))
	for i, e := range evidence {
		magnitudes[i] = e.Magnitude
		lags[i] = float64(e.LagMonths)
		countries[i] = e.Country
	}

	aggregate := func(values []float64) (float64, error) {
		switch method {
		case "median", "":
			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			return stat.Quantile(0.5, stat.Empirical, sorted, nil), nil
		case "mean":
			return stat.Mean(values, nil), nil
		case "min":
			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			return sorted[0], nil
		case "max":
			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			return sorted[len(sorted)-1], nil
		default:
			return 0, fmt.Errorf("unknown aggregation method: %q", method)
		}
	}

	magnitude, err := aggregate(magnitudes)
	if err != nil {
		return nil, err
	}
	lag, err := aggregate(lags)
	if err != nil {
		return nil, err
	}

	name := method
	if name == "" {
		name = "median"
	}
	return &Estimate{
		Magnitude:     magnitude,
		LagMonths:     int(lag),
		EvidenceCount: len(evidence),
		Countries:     countries,
		Method:        name,
	}, nil
}
