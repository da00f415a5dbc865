package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fipulse/internal/dataset"
	apperrors "fipulse/internal/errors"
	"fipulse/pkg/contracts/domain"
)

func analysisStore(t *testing.T) *dataset.Store {
	t.Helper()

	obs := func(id string, pillar domain.Pillar, code string, year int, value float64) domain.Observation {
		return domain.Observation{
			RecordID: id, Pillar: pillar, IndicatorCode: code, Value: value,
			Date:       time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
			SourceName: "Findex", Confidence: domain.ConfidenceHigh,
		}
	}

	observations := []domain.Observation{
		obs("OBS-1", domain.PillarAccess, "ACC_OWNERSHIP", 2014, 22),
		obs("OBS-2", domain.PillarAccess, "ACC_OWNERSHIP", 2017, 35),
		obs("OBS-3", domain.PillarAccess, "ACC_OWNERSHIP", 2021, 46),
		obs("OBS-4", domain.PillarUsage, "USG_DIGITAL_PAY", 2014, 5),
		obs("OBS-5", domain.PillarUsage, "USG_DIGITAL_PAY", 2017, 12),
		obs("OBS-6", domain.PillarUsage, "USG_DIGITAL_PAY", 2021, 20),
		obs("OBS-7", domain.PillarGender, "ACC_OWNERSHIP_MALE", 2017, 41),
		obs("OBS-8", domain.PillarGender, "ACC_OWNERSHIP_FEMALE", 2017, 29),
		obs("OBS-9", domain.PillarGender, "ACC_OWNERSHIP_MALE", 2021, 51),
		obs("OBS-10", domain.PillarGender, "ACC_OWNERSHIP_FEMALE", 2021, 42),
		// A lone point: sparse indicator.
		obs("OBS-11", domain.PillarAffordability, "AFF_ACCOUNT_COST", 2019, 3.2),
	}
	events := []domain.Event{
		{RecordID: "EVT-1", Category: domain.CategoryProductLaunch,
			Date: time.Date(2021, 5, 11, 0, 0, 0, 0, time.UTC), Description: "telebirr launch"},
		{RecordID: "EVT-2", Category: domain.CategoryPolicy,
			Date: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), Description: "licensing directive"},
	}
	links := []domain.ImpactLink{
		{RecordID: "LNK-1", ParentID: "EVT-1", Pillar: domain.PillarUsage,
			Indicator: "USG_DIGITAL_PAY", Direction: domain.DirectionPositive, Magnitude: 5},
	}

	s := dataset.NewStore(observations, events, links, nil)
	require.NoError(t, s.CheckIntegrity())
	return s
}

func TestOverview(t *testing.T) {
	a := New(analysisStore(t), nil)
	ov := a.Overview()

	assert.Equal(t, 11, ov.Observations)
	assert.Equal(t, 2, ov.Events)
	assert.Equal(t, 1, ov.ImpactLinks)
	assert.Equal(t, 5, ov.Indicators)

	access := ov.Pillars[domain.PillarAccess]
	assert.Equal(t, 3, access.Observations)
	assert.Equal(t, 1, access.Indicators)
	assert.Equal(t, 2014, access.FirstDate.Year())
	assert.Equal(t, 2021, access.LastDate.Year())
}

func TestTrajectory(t *testing.T) {
	a := New(analysisStore(t), nil)

	tr, err := a.Trajectory("ACC_OWNERSHIP")
	require.NoError(t, err)
	assert.InDelta(t, 24.0, tr.TotalChange, 1e-9)
	assert.InDelta(t, 24.0/7.0, tr.AnnualRate, 1e-9)
	assert.Len(t, tr.Series, 3)

	_, err = a.Trajectory("NOPE")
	assert.ErrorIs(t, err, apperrors.ErrUnknownIndicator)
}

func TestGenderGaps(t *testing.T) {
	a := New(analysisStore(t), nil)
	gaps := a.GenderGaps()

	require.Len(t, gaps, 1)
	gap := gaps[0]
	assert.Equal(t, "ACC_OWNERSHIP", gap.Indicator)
	require.Len(t, gap.Points, 2)
	assert.InDelta(t, 12.0, gap.Points[0].Gap, 1e-9)
	assert.InDelta(t, 9.0, gap.LatestGap, 1e-9)
	assert.True(t, gap.Narrowing)
}

func TestCorrelations(t *testing.T) {
	a := New(analysisStore(t), nil)
	correlations := a.Correlations()

	var found bool
	for _, c := range correlations {
		if c.IndicatorA == "ACC_OWNERSHIP" && c.IndicatorB == "USG_DIGITAL_PAY" {
			found = true
			assert.Equal(t, 3, c.SharedYears)
			// Both series rise monotonically, so the correlation is strongly positive.
			assert.Greater(t, c.Coefficient, 0.9)
		}
		assert.NotEqual(t, "AFF_ACCOUNT_COST", c.IndicatorA,
			"single-point indicators never enter a correlation")
		assert.NotEqual(t, "AFF_ACCOUNT_COST", c.IndicatorB)
	}
	assert.True(t, found)
}

func TestDataGaps(t *testing.T) {
	a := New(analysisStore(t), nil)
	gaps := a.DataGaps()

	assert.Contains(t, gaps.SparseIndicators, "AFF_ACCOUNT_COST")
	assert.NotContains(t, gaps.SparseIndicators, "ACC_OWNERSHIP")
	// Latest observation is 2021, AFF_ACCOUNT_COST stops in 2019: not yet stale
	// at the 3-year threshold; nothing else is either.
	assert.NotContains(t, gaps.StaleIndicators, "ACC_OWNERSHIP")
	assert.Equal(t, []string{"EVT-2"}, gaps.UnlinkedEvents)
}

func TestInsights(t *testing.T) {
	a := New(analysisStore(t), nil)
	text := a.Insights()

	assert.Contains(t, text, "KEY INSIGHTS")
	assert.Contains(t, text, "rose from 22.0 to 46.0")
	assert.Contains(t, text, "Gender gap on ACC_OWNERSHIP is 9.0pp and has narrowed")
	assert.Contains(t, text, "AFF_ACCOUNT_COST")
	assert.Contains(t, text, "1 events have no modeled impact links")
}
