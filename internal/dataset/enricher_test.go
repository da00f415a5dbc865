package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fipulse/pkg/contracts/domain"
)

func TestEnricherAddObservation(t *testing.T) {
	s := testStore(t)
	e := NewEnricher(s, nil)
	before := len(s.Observations())

	added, err := e.AddObservation(domain.Observation{
		Pillar:        domain.PillarAccess,
		IndicatorCode: "ACC_OWNERSHIP",
		Value:         49.0,
		Date:          time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		SourceName:    "Findex 2024",
		Confidence:    domain.ConfidenceHigh,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(added.RecordID, "OBS-"))
	assert.Equal(t, "system", added.CollectedBy)
	assert.False(t, added.CollectionDate.IsZero())
	assert.Len(t, s.Observations(), before+1)
	require.Len(t, e.Log(), 1)
	assert.Equal(t, "observation", e.Log()[0].Type)
}

func TestEnricherRejectsInvalidObservation(t *testing.T) {
	s := testStore(t)
	e := NewEnricher(s, nil)
	before := len(s.Observations())

	_, err := e.AddObservation(domain.Observation{
		Pillar:        "Magic", // not a pillar
		IndicatorCode: "ACC_OWNERSHIP",
		Date:          time.Now(),
		SourceName:    "Findex",
		Confidence:    domain.ConfidenceHigh,
	})
	assert.Error(t, err)
	assert.Len(t, s.Observations(), before, "failed additions must not mutate the store")
	assert.Empty(t, e.Log())
}

func TestEnricherAddImpactLink(t *testing.T) {
	s := testStore(t)
	e := NewEnricher(s, nil)

	added, err := e.AddImpactLink(domain.ImpactLink{
		ParentID:   "EVT-1",
		Pillar:     domain.PillarAccess,
		Indicator:  "ACC_OWNERSHIP",
		Direction:  domain.DirectionPositive,
		Magnitude:  3.0,
		LagMonths:  6,
		EffectForm: "gradual",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(added.RecordID, "LNK-"))
	assert.Len(t, s.LinksByIndicator("ACC_OWNERSHIP"), 1)
}

func TestEnricherRejectsDanglingLink(t *testing.T) {
	s := testStore(t)
	e := NewEnricher(s, nil)

	_, err := e.AddImpactLink(domain.ImpactLink{
		ParentID:  "EVT-404",
		Pillar:    domain.PillarAccess,
		Indicator: "ACC_OWNERSHIP",
		Direction: domain.DirectionPositive,
		Magnitude: 3.0,
	})
	assert.Error(t, err)
	assert.Empty(t, s.LinksByIndicator("ACC_OWNERSHIP"))
}

func TestEnricherCorrectionsAreAppendOnly(t *testing.T) {
	s := testStore(t)
	e := NewEnricher(s, nil)
	original := s.ObservationsByIndicator("ACC_OWNERSHIP")[0]

	added, err := e.AddCorrection(domain.Correction{
		OriginalID: original.RecordID,
		Field:      "value_numeric",
		OldValue:   "22.0",
		NewValue:   "21.8",
		Reason:     "source revision",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(added.RecordID, "COR-"))

	// The original observation is untouched.
	after := s.ObservationsByIndicator("ACC_OWNERSHIP")[0]
	assert.Equal(t, original.Value, after.Value)
	assert.Len(t, s.Corrections(), 1)
}

func TestEnricherLogMarkdown(t *testing.T) {
	s := testStore(t)
	e := NewEnricher(s, nil)

	md := e.RenderLogMarkdown()
	assert.Contains(t, md, "No enrichments recorded")

	_, err := e.AddEvent(domain.Event{
		Category:    domain.CategoryPolicy,
		Date:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "directive on mobile money interoperability",
		SourceName:  "NBE",
		Confidence:  domain.ConfidenceMedium,
	})
	require.NoError(t, err)

	md = e.RenderLogMarkdown()
	assert.Contains(t, md, "| event |")
	assert.Contains(t, md, "policy")
}
