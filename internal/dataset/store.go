package dataset

import (
	"fmt"
	"sort"
	"time"

	apperrors "fipulse/internal/errors"
	"fipulse/pkg/contracts/domain"
)

// Store holds the unified dataset in memory. Tables are append-only: records
// never mutate once collected, corrections arrive as new rows referencing the
// original record id.
type Store struct {
	observations []domain.Observation
	events       []domain.Event
	links        []domain.ImpactLink
	corrections  []domain.Correction
	refCodes     map[string]domain.ReferenceCode
}

// NewStore assembles a store from loaded tables.
func NewStore(
	observations []domain.Observation,
	events []domain.Event,
	links []domain.ImpactLink,
	refCodes []domain.ReferenceCode,
) *Store {
	codes := make(map[string]domain.ReferenceCode, len(refCodes))
	for _, rc := range refCodes {
		codes[rc.Code] = rc
	}
	return &Store{
		observations: observations,
		events:       events,
		links:        links,
		refCodes:     codes,
	}
}

// CheckIntegrity verifies the referential invariants: every impact link points
// at an existing event and carries a magnitude sign consistent with its
// direction. The first violation is returned.
func (s *Store) CheckIntegrity() error {
	known := make(map[string]struct{}, len(s.events))
	for _, ev := range s.events {
		known[ev.RecordID] = struct{}{}
	}
	for _, link := range s.links {
		if _, ok := known[link.ParentID]; !ok {
			return fmt.Errorf("link %s: %w: %s", link.RecordID, apperrors.ErrEventNotFound, link.ParentID)
		}
		if !link.SignConsistent() {
			return fmt.Errorf("link %s: %w", link.RecordID, apperrors.ErrSignMismatch)
		}
	}
	return nil
}

// Observations returns all observation rows.
func (s *Store) Observations() []domain.Observation {
	return s.observations
}

// Events returns all event rows.
func (s *Store) Events() []domain.Event {
	return s.events
}

// ImpactLinks returns all impact link rows.
func (s *Store) ImpactLinks() []domain.ImpactLink {
	return s.links
}

// Corrections returns all correction rows.
func (s *Store) Corrections() []domain.Correction {
	return s.corrections
}

// ReferenceCodes returns the indicator code lookup table.
func (s *Store) ReferenceCodes() map[string]domain.ReferenceCode {
	return s.refCodes
}

// IndicatorLabel resolves a code to its human label, falling back to the code.
func (s *Store) IndicatorLabel(code string) string {
	if rc, ok := s.refCodes[code]; ok && rc.Label != "" {
		return rc.Label
	}
	return code
}

// ObservationsByIndicator filters observations for one indicator code, sorted
// by observation date.
func (s *Store) ObservationsByIndicator(code string) []domain.Observation {
	var out []domain.Observation
	for _, o := range s.observations {
		if o.IndicatorCode == code {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ObservationsByPillar filters observations for one pillar.
func (s *Store) ObservationsByPillar(pillar domain.Pillar) []domain.Observation {
	var out []domain.Observation
	for _, o := range s.observations {
		if o.Pillar == pillar {
			out = append(out, o)
		}
	}
	return out
}

// EventByID looks up a single event.
func (s *Store) EventByID(id string) (domain.Event, bool) {
	for _, ev := range s.events {
		if ev.RecordID == id {
			return ev, true
		}
	}
	return domain.Event{}, false
}

// EventsByCategory filters events for one category, sorted by date.
func (s *Store) EventsByCategory(category domain.EventCategory) []domain.Event {
	var out []domain.Event
	for _, ev := range s.events {
		if ev.Category == category {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// LinksByIndicator filters impact links targeting one indicator code.
func (s *Store) LinksByIndicator(code string) []domain.ImpactLink {
	var out []domain.ImpactLink
	for _, l := range s.links {
		if l.Indicator == code {
			out = append(out, l)
		}
	}
	return out
}

// LinksByEvent filters impact links belonging to one parent event.
func (s *Store) LinksByEvent(eventID string) []domain.ImpactLink {
	var out []domain.ImpactLink
	for _, l := range s.links {
		if l.ParentID == eventID {
			out = append(out, l)
		}
	}
	return out
}

// YearValue is one point of an annual indicator series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// AnnualSeries collapses an indicator's observations to one value per year
// (the latest observation wins within a year), sorted ascending. An unknown
// indicator code yields a typed error rather than an empty series.
func (s *Store) AnnualSeries(code string) ([]YearValue, error) {
	obs := s.ObservationsByIndicator(code)
	if len(obs) == 0 {
		return nil, apperrors.UnknownIndicator(code)
	}

	byYear := make(map[int]domain.Observation)
	for _, o := range obs {
		if prev, ok := byYear[o.Year()]; !ok || o.Date.After(prev.Date) {
			byYear[o.Year()] = o
		}
	}

	series := make([]YearValue, 0, len(byYear))
	for year, o := range byYear {
		series = append(series, YearValue{Year: year, Value: o.Value})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series, nil
}

// IndicatorCoverage summarizes how well one indicator is observed.
type IndicatorCoverage struct {
	Code        string        `json:"indicator_code"`
	Label       string        `json:"indicator"`
	Pillar      domain.Pillar `json:"pillar"`
	RecordCount int           `json:"record_count"`
	FirstDate   time.Time     `json:"first_date"`
	LastDate    time.Time     `json:"last_date"`
}

// Indicators lists the unique indicators with their observation coverage,
// sorted by code.
func (s *Store) Indicators() []IndicatorCoverage {
	byCode := make(map[string]*IndicatorCoverage)
	for _, o := range s.observations {
		c, ok := byCode[o.IndicatorCode]
		if !ok {
			c = &IndicatorCoverage{
				Code:      o.IndicatorCode,
				Label:     o.Indicator,
				Pillar:    o.Pillar,
				FirstDate: o.Date,
				LastDate:  o.Date,
			}
			byCode[o.IndicatorCode] = c
		}
		c.RecordCount++
		if o.Date.Before(c.FirstDate) {
			c.FirstDate = o.Date
		}
		if o.Date.After(c.LastDate) {
			c.LastDate = o.Date
		}
	}

	out := make([]IndicatorCoverage, 0, len(byCode))
	for _, c := range byCode {
		if c.Label == "" {
			c.Label = s.IndicatorLabel(c.Code)
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// appendObservation, appendEvent, appendImpactLink and appendCorrection are
// used by the Enricher. They keep the append-only contract private to the
// package.
func (s *Store) appendObservation(o domain.Observation) { s.observations = append(s.observations, o) }
func (s *Store) appendEvent(ev domain.Event)            { s.events = append(s.events, ev) }
func (s *Store) appendImpactLink(l domain.ImpactLink)   { s.links = append(s.links, l) }
func (s *Store) appendCorrection(c domain.Correction)   { s.corrections = append(s.corrections, c) }
