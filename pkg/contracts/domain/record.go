package domain

import (
	"time"
)

// RecordType identifies the kind of row in the unified dataset.
type RecordType string

const (
	RecordTypeObservation RecordType = "observation"
	RecordTypeEvent       RecordType = "event"
	RecordTypeImpactLink  RecordType = "impact_link"
	RecordTypeCorrection  RecordType = "correction"
)

// Pillar is the top-level category of a financial-inclusion indicator.
type Pillar string

const (
	PillarAccess        Pillar = "Access"
	PillarUsage         Pillar = "Usage"
	PillarGender        Pillar = "Gender"
	PillarAffordability Pillar = "Affordability"
)

// Pillars lists all known pillars in reporting order.
func Pillars() []Pillar {
	return []Pillar{PillarAccess, PillarUsage, PillarGender, PillarAffordability}
}

// Confidence is the evidence tier attached to a collected record.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// EventCategory classifies a cataloged event.
type EventCategory string

const (
	CategoryPolicy         EventCategory = "policy"
	CategoryProductLaunch  EventCategory = "product_launch"
	CategoryInfrastructure EventCategory = "infrastructure"
	CategoryMarketEntry    EventCategory = "market_entry"
	CategoryMilestone      EventCategory = "milestone"
	CategoryPartnership    EventCategory = "partnership"
	CategoryPricing        EventCategory = "pricing"
)

// ImpactDirection states whether an event pushes an indicator up or down.
type ImpactDirection string

const (
	DirectionPositive ImpactDirection = "positive"
	DirectionNegative ImpactDirection = "negative"
)

// Observation is a single measured value of an indicator at a point in time.
// Observations are immutable once collected; corrections are separate records.
type Observation struct {
	RecordID       string     `json:"record_id" csv:"record_id" validate:"required"`
	Pillar         Pillar     `json:"pillar" csv:"pillar" validate:"required,oneof=Access Usage Gender Affordability"`
	Indicator      string     `json:"indicator" csv:"indicator"`
	IndicatorCode  string     `json:"indicator_code" csv:"indicator_code" validate:"required"`
	Value          float64    `json:"value_numeric" csv:"value_numeric"`
	Date           time.Time  `json:"observation_date" csv:"observation_date" validate:"required"`
	SourceName     string     `json:"source_name" csv:"source_name" validate:"required"`
	SourceURL      string     `json:"source_url" csv:"source_url"`
	Confidence     Confidence `json:"confidence" csv:"confidence" validate:"required,oneof=high medium low"`
	CollectedBy    string     `json:"collected_by" csv:"collected_by"`
	CollectionDate time.Time  `json:"collection_date" csv:"collection_date"`
	OriginalText   string     `json:"original_text,omitempty" csv:"original_text"`
	Notes          string     `json:"notes,omitempty" csv:"notes"`
}

// Year returns the calendar year of the observation, the unit used for trend fitting.
func (o Observation) Year() int {
	return o.Date.Year()
}

// Event is a discrete dated occurrence (policy change, product launch, ...) that
// may influence one or more indicators through impact links.
type Event struct {
	RecordID       string        `json:"record_id" csv:"record_id" validate:"required"`
	Category       EventCategory `json:"category" csv:"category" validate:"required,oneof=policy product_launch infrastructure market_entry milestone partnership pricing"`
	Date           time.Time     `json:"event_date" csv:"event_date" validate:"required"`
	Description    string        `json:"description" csv:"description" validate:"required"`
	SourceName     string        `json:"source_name" csv:"source_name" validate:"required"`
	SourceURL      string        `json:"source_url" csv:"source_url"`
	Confidence     Confidence    `json:"confidence" csv:"confidence" validate:"required,oneof=high medium low"`
	CollectedBy    string        `json:"collected_by" csv:"collected_by"`
	CollectionDate time.Time     `json:"collection_date" csv:"collection_date"`
	Notes          string        `json:"notes,omitempty" csv:"notes"`
}

// ImpactLink connects a parent event to a target indicator with a hand-specified
// magnitude (percentage points), lag and functional form.
type ImpactLink struct {
	RecordID   string          `json:"record_id" csv:"record_id" validate:"required"`
	ParentID   string          `json:"parent_id" csv:"parent_id" validate:"required"`
	Pillar     Pillar          `json:"pillar" csv:"pillar" validate:"required,oneof=Access Usage Gender Affordability"`
	Indicator  string          `json:"related_indicator" csv:"related_indicator" validate:"required"`
	Direction  ImpactDirection `json:"impact_direction" csv:"impact_direction" validate:"required,oneof=positive negative"`
	Magnitude  float64         `json:"impact_magnitude" csv:"impact_magnitude"`
	LagMonths  int             `json:"lag_months" csv:"lag_months" validate:"min=0"`
	EffectForm string          `json:"effect_form" csv:"effect_form"`
	Evidence   Confidence      `json:"evidence" csv:"evidence" validate:"omitempty,oneof=high medium low"`
	SourceName string          `json:"source_name" csv:"source_name"`
	Notes      string          `json:"notes,omitempty" csv:"notes"`
}

// SignedMagnitude returns the magnitude with the sign implied by the direction.
// Magnitudes are stored as non-negative percentage points; the direction carries
// the sign.
func (l ImpactLink) SignedMagnitude() float64 {
	m := l.Magnitude
	if m < 0 {
		m = -m
	}
	if l.Direction == DirectionNegative {
		return -m
	}
	return m
}

// SignConsistent reports whether the stated direction agrees with the magnitude
// sign. A negative stored magnitude is only consistent with a negative direction.
func (l ImpactLink) SignConsistent() bool {
	if l.Magnitude < 0 {
		return l.Direction == DirectionNegative
	}
	return true
}

// Correction is an append-only amendment referencing an original record.
// The original row is never edited in place.
type Correction struct {
	RecordID       string    `json:"record_id" csv:"record_id" validate:"required"`
	OriginalID     string    `json:"original_id" csv:"original_id" validate:"required"`
	Field          string    `json:"field" csv:"field" validate:"required"`
	OldValue       string    `json:"old_value" csv:"old_value"`
	NewValue       string    `json:"new_value" csv:"new_value" validate:"required"`
	Reason         string    `json:"reason" csv:"reason"`
	CollectedBy    string    `json:"collected_by" csv:"collected_by"`
	CollectionDate time.Time `json:"collection_date" csv:"collection_date"`
}

// ReferenceCode maps an indicator code to its human-readable label.
type ReferenceCode struct {
	Code   string `json:"code" csv:"code" validate:"required"`
	Label  string `json:"label" csv:"label" validate:"required"`
	Pillar Pillar `json:"pillar" csv:"pillar"`
	Unit   string `json:"unit" csv:"unit"`
}
