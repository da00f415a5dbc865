package impact

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	apperrors "fipulse/internal/errors"
	"fipulse/pkg/contracts/domain"
)

// defaultMagnitude is the documented fallback for links collected without an
// explicit magnitude. The direction still decides the sign.
const defaultMagnitude = 0.1

// DuplicatePolicy decides what happens when two impact links target the same
// (event, indicator) cell.
type DuplicatePolicy int

const (
	// DuplicateError rejects the build with a typed error. This is the
	// default: conflicting hand-collected links are a data defect.
	DuplicateError DuplicatePolicy = iota
	// DuplicateKeepStrongest keeps the value with the larger absolute
	// magnitude, reproducing the legacy spreadsheet behavior.
	DuplicateKeepStrongest
)

// Matrix is the dense (event x indicator) table of signed impact magnitudes.
// Cells with no impact link hold an explicit zero.
type Matrix struct {
	EventIDs   []string    `json:"event_ids"`
	Indicators []string    `json:"indicators"`
	Values     [][]float64 `json:"values"`

	eventIndex     map[string]int
	indicatorIndex map[string]int
}

// BuildOptions configures matrix construction.
type BuildOptions struct {
	// Events restricts the rows; nil means every event referenced by a link.
	Events []string
	// Indicators restricts the columns; nil means every linked indicator.
	Indicators []string
	// OnDuplicate selects the duplicate-cell policy.
	OnDuplicate DuplicatePolicy
}

// BuildMatrix groups impact links into a dense association matrix. Every link
// must reference an existing event; the referential check runs first so a
// dangling parent id fails the whole build.
func BuildMatrix(events []domain.Event, links []domain.ImpactLink, opts BuildOptions) (*Matrix, error) {
	known := make(map[string]struct{}, len(events))
	for _, ev := range events {
		known[ev.RecordID] = struct{}{}
	}
	for _, link := range links {
		if _, ok := known[link.ParentID]; !ok {
			return nil, fmt.Errorf("link %s: %w: %s", link.RecordID, apperrors.ErrEventNotFound, link.ParentID)
		}
		if !link.SignConsistent() {
			return nil, fmt.Errorf("link %s: %w", link.RecordID, apperrors.ErrSignMismatch)
		}
	}

	eventIDs := opts.Events
	if eventIDs == nil {
		seen := make(map[string]struct{})
		for _, link := range links {
			if _, ok := seen[link.ParentID]; !ok {
				seen[link.ParentID] = struct{}{}
				eventIDs = append(eventIDs, link.ParentID)
			}
		}
		sort.Strings(eventIDs)
	}
	indicators := opts.Indicators
	if indicators == nil {
		seen := make(map[string]struct{})
		for _, link := range links {
			if link.Indicator == "" {
				continue
			}
			if _, ok := seen[link.Indicator]; !ok {
				seen[link.Indicator] = struct{}{}
				indicators = append(indicators, link.Indicator)
			}
		}
		sort.Strings(indicators)
	}

	m := &Matrix{
		EventIDs:       eventIDs,
		Indicators:     indicators,
		Values:         make([][]float64, len(eventIDs)),
		eventIndex:     make(map[string]int, len(eventIDs)),
		indicatorIndex: make(map[string]int, len(indicators)),
	}
	for i, id := range eventIDs {
		m.Values[i] = make([]float64, len(indicators))
		m.eventIndex[id] = i
	}
	for j, code := range indicators {
		m.indicatorIndex[code] = j
	}

	filled := make(map[[2]int]bool)
	for _, link := range links {
		i, okRow := m.eventIndex[link.ParentID]
		j, okCol := m.indicatorIndex[link.Indicator]
		if !okRow || !okCol {
			continue
		}

		value := link.SignedMagnitude()
		if link.Magnitude == 0 {
			value = defaultMagnitude
			if link.Direction == domain.DirectionNegative {
				value = -defaultMagnitude
			}
		}

		cell := [2]int{i, j}
		if filled[cell] {
			switch opts.OnDuplicate {
			case DuplicateKeepStrongest:
				if math.Abs(value) > math.Abs(m.Values[i][j]) {
					m.Values[i][j] = value
				}
				continue
			default:
				return nil, apperrors.DuplicateLink(link.ParentID, link.Indicator)
			}
		}
		filled[cell] = true
		m.Values[i][j] = value
	}

	return m, nil
}

// At returns the signed magnitude for an (event, indicator) pair. Unknown pairs
// are zero, consistent with the dense representation.
func (m *Matrix) At(eventID, indicator string) float64 {
	i, okRow := m.eventIndex[eventID]
	j, okCol := m.indicatorIndex[indicator]
	if !okRow || !okCol {
		return 0
	}
	return m.Values[i][j]
}

// Summary holds descriptive statistics over a built matrix.
type Summary struct {
	TotalEvents          int     `json:"total_events"`
	TotalIndicators      int     `json:"total_indicators"`
	TotalImpacts         int     `json:"total_impacts"`
	PositiveImpacts      int     `json:"positive_impacts"`
	NegativeImpacts      int     `json:"negative_impacts"`
	EventsWithImpact     int     `json:"events_with_impact"`
	IndicatorsWithImpact int     `json:"indicators_with_impact"`
	MaxPositiveImpact    float64 `json:"max_positive_impact"`
	MaxNegativeImpact    float64 `json:"max_negative_impact"`
	MeanAbsMagnitude     float64 `json:"mean_abs_magnitude"`
}

// Summarize computes summary statistics for reporting.
func (m *Matrix) Summarize() Summary {
	s := Summary{
		TotalEvents:     len(m.EventIDs),
		TotalIndicators: len(m.Indicators),
	}

	rowHasImpact := make([]bool, len(m.EventIDs))
	colHasImpact := make([]bool, len(m.Indicators))
	var absSum float64

	for i, row := range m.Values {
		for j, v := range row {
			if v == 0 {
				continue
			}
			s.TotalImpacts++
			absSum += math.Abs(v)
			rowHasImpact[i] = true
			colHasImpact[j] = true
			if v > 0 {
				s.PositiveImpacts++
				if v > s.MaxPositiveImpact {
					s.MaxPositiveImpact = v
				}
			} else {
				s.NegativeImpacts++
				if v < s.MaxNegativeImpact {
					s.MaxNegativeImpact = v
				}
			}
		}
	}
	for _, has := range rowHasImpact {
		if has {
			s.EventsWithImpact++
		}
	}
	for _, has := range colHasImpact {
		if has {
			s.IndicatorsWithImpact++
		}
	}
	if s.TotalImpacts > 0 {
		s.MeanAbsMagnitude = absSum / float64(s.TotalImpacts)
	}
	return s
}

// CSVRows renders the matrix as rows for the CSV exporter: a header of
// indicator codes and one row per event.
func (m *Matrix) CSVRows() (headers []string, rows [][]string) {
	headers = append([]string{"event_id"}, m.Indicators...)
	rows = make([][]string, 0, len(m.EventIDs))
	for i, id := range m.EventIDs {
		row := make([]string, 0, len(m.Indicators)+1)
		row = append(row, id)
		for _, v := range m.Values[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		rows = append(rows, row)
	}
	return headers, rows
}
