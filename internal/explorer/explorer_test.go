package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fipulse/internal/dataset"
	"fipulse/pkg/contracts/domain"
)

func explorerStore(t *testing.T) *dataset.Store {
	t.Helper()

	date := func(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

	observations := []domain.Observation{
		{RecordID: "OBS-1", Pillar: domain.PillarAccess, IndicatorCode: "ACC_OWNERSHIP",
			Indicator: "Account ownership", Value: 22, Date: date(2014, 12, 31),
			SourceName: "Findex", Confidence: domain.ConfidenceHigh},
		{RecordID: "OBS-2", Pillar: domain.PillarAccess, IndicatorCode: "ACC_OWNERSHIP",
			Indicator: "Account ownership", Value: 46, Date: date(2021, 12, 31),
			SourceName: "Findex", Confidence: domain.ConfidenceHigh},
		{RecordID: "OBS-3", Pillar: domain.PillarUsage, IndicatorCode: "USG_DIGITAL_PAY",
			Indicator: "Digital payments", Value: 20, Date: date(2021, 12, 31),
			SourceName: "NBE", Confidence: domain.ConfidenceMedium},
	}
	events := []domain.Event{
		{RecordID: "EVT-1", Category: domain.CategoryProductLaunch, Date: date(2021, 5, 11),
			Description: "telebirr launch", SourceName: "Ethio Telecom", Confidence: domain.ConfidenceHigh},
		{RecordID: "EVT-2", Category: domain.CategoryMarketEntry, Date: date(2022, 8, 1),
			Description: "Safaricom M-PESA entry", SourceName: "NBE", Confidence: domain.ConfidenceHigh},
	}
	links := []domain.ImpactLink{
		{RecordID: "LNK-1", ParentID: "EVT-1", Pillar: domain.PillarUsage,
			Indicator: "USG_DIGITAL_PAY", Direction: domain.DirectionPositive,
			Magnitude: 5, EffectForm: "gradual", Evidence: domain.ConfidenceMedium},
	}

	s := dataset.NewStore(observations, events, links, nil)
	require.NoError(t, s.CheckIntegrity())
	return s
}

func TestSummarize(t *testing.T) {
	e := New(explorerStore(t), nil)
	s := e.Summarize()

	assert.Equal(t, 6, s.TotalRecords)
	assert.Equal(t, 3, s.ByType["observation"])
	assert.Equal(t, 2, s.ByType["event"])
	assert.Equal(t, 1, s.ByType["impact_link"])
	assert.Equal(t, 2, s.ByPillar["Access"])
	assert.Equal(t, 2, s.ByPillar["Usage"], "observation plus link pillar")
	assert.Equal(t, 2, s.BySource["Findex"])
}

func TestCrossTabs(t *testing.T) {
	e := New(explorerStore(t), nil)
	tabs := e.CrossTabs()
	require.Len(t, tabs, 3)

	typeByPillar := tabs[0]
	assert.Equal(t, "record_type", typeByPillar.RowDim)
	assert.Equal(t, 2, typeByPillar.Counts["observation"]["Access"])
	assert.Equal(t, 1, typeByPillar.Counts["impact_link"]["Usage"])
	assert.Contains(t, typeByPillar.Rows, "observation")
	assert.Contains(t, typeByPillar.Cols, "Usage")

	pillarByConfidence := tabs[2]
	assert.Equal(t, 2, pillarByConfidence.Counts["Access"]["high"])
}

func TestTemporal(t *testing.T) {
	e := New(explorerStore(t), nil)
	tr := e.Temporal()

	assert.Equal(t, 2014, tr.FirstObservation.Year())
	assert.Equal(t, 2021, tr.LastObservation.Year())
	assert.Equal(t, 2021, tr.FirstEvent.Year())
	assert.Equal(t, 2022, tr.LastEvent.Year())
	assert.Equal(t, 8, tr.SpanYears)
}

func TestEventsCatalogSorted(t *testing.T) {
	e := New(explorerStore(t), nil)
	events := e.EventsCatalog()

	require.Len(t, events, 2)
	assert.Equal(t, "EVT-1", events[0].RecordID)
	assert.True(t, events[0].Date.Before(events[1].Date))
}

func TestSummarizeLinks(t *testing.T) {
	e := New(explorerStore(t), nil)
	ls := e.SummarizeLinks()

	assert.Equal(t, 1, ls.TotalLinks)
	assert.Equal(t, 1, ls.ByDirection["positive"])
	assert.Equal(t, 1, ls.ByEffectForm["gradual"])
	assert.Equal(t, 1, ls.LinkedEvents)
	assert.Equal(t, 1, ls.UnlinkedEvents, "EVT-2 has no links")
}

func TestRenderReport(t *testing.T) {
	e := New(explorerStore(t), nil)
	report := e.RenderReport()

	assert.Contains(t, report, "EXPLORATION REPORT")
	assert.Contains(t, report, "Total records: 6")
	assert.Contains(t, report, "ACC_OWNERSHIP")
	assert.Contains(t, report, "telebirr launch")
	assert.Contains(t, report, "1 events without links")
}
