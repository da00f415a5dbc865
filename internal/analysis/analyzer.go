// Package analysis computes the exploratory statistics over the unified
// dataset: pillar trajectories, gender-gap measures, cross-indicator
// correlations and data-gap detection.
package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"fipulse/internal/dataset"
	"fipulse/pkg/contracts/domain"
)

// Analyzer runs exploratory analysis over a loaded store.
type Analyzer struct {
	store  *dataset.Store
	logger *slog.Logger
}

// New creates an analyzer. A nil logger falls back to slog.Default.
func New(store *dataset.Store, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{store: store, logger: logger}
}

// Overview is the dataset-level picture used by reports and the dashboard.
type Overview struct {
	Observations int                              `json:"observations"`
	Events       int                              `json:"events"`
	ImpactLinks  int                              `json:"impact_links"`
	Indicators   int                              `json:"indicators"`
	Pillars      map[domain.Pillar]PillarCoverage `json:"pillars"`
}

// PillarCoverage summarizes one pillar's coverage.
type PillarCoverage struct {
	Observations int       `json:"observations"`
	Indicators   int       `json:"indicators"`
	FirstDate    time.Time `json:"first_date"`
	LastDate     time.Time `json:"last_date"`
}

// Overview summarizes the dataset and per-pillar coverage.
func (a *Analyzer) Overview() Overview {
	ov := Overview{
		Observations: len(a.store.Observations()),
		Events:       len(a.store.Events()),
		ImpactLinks:  len(a.store.ImpactLinks()),
		Indicators:   len(a.store.Indicators()),
		Pillars:      make(map[domain.Pillar]PillarCoverage),
	}

	for _, pillar := range domain.Pillars() {
		obs := a.store.ObservationsByPillar(pillar)
		if len(obs) == 0 {
			continue
		}
		p := PillarCoverage{Observations: len(obs)}
		codes := make(map[string]struct{})
		for _, o := range obs {
			codes[o.IndicatorCode] = struct{}{}
			if p.FirstDate.IsZero() || o.Date.Before(p.FirstDate) {
				p.FirstDate = o.Date
			}
			if o.Date.After(p.LastDate) {
				p.LastDate = o.Date
			}
		}
		p.Indicators = len(codes)
		ov.Pillars[pillar] = p
	}
	return ov
}

// Trajectory is an annual series with its overall change.
type Trajectory struct {
	Indicator   string              `json:"indicator_code"`
	Label       string              `json:"indicator"`
	Series      []dataset.YearValue `json:"series"`
	TotalChange float64             `json:"total_change"`
	AnnualRate  float64             `json:"annualized_change"`
}

// Trajectory builds the annual series for one indicator with change measures.
// The annualized rate is total change divided by the year span.
func (a *Analyzer) Trajectory(code string) (*Trajectory, error) {
	series, err := a.store.AnnualSeries(code)
	if err != nil {
		return nil, err
	}

	tr := &Trajectory{
		Indicator: code,
		Label:     a.store.IndicatorLabel(code),
		Series:    series,
	}
	first, last := series[0], series[len(series)-1]
	tr.TotalChange = last.Value - first.Value
	if span := last.Year - first.Year; span > 0 {
		tr.AnnualRate = tr.TotalChange / float64(span)
	}
	return tr, nil
}

// PillarTrajectories builds trajectories for every indicator in a pillar,
// sorted by code.
func (a *Analyzer) PillarTrajectories(pillar domain.Pillar) []*Trajectory {
	var out []*Trajectory
	for _, c := range a.store.Indicators() {
		if c.Pillar != pillar {
			continue
		}
		tr, err := a.Trajectory(c.Code)
		if err != nil {
			continue
		}
		out = append(out, tr)
	}
	return out
}

// GenderGap pairs a male and female variant of the same measure per year.
type GenderGap struct {
	Indicator string        `json:"indicator_code"`
	Points    []GenderPoint `json:"points"`
	LatestGap float64       `json:"latest_gap"`
	Narrowing bool          `json:"narrowing"`
}

// GenderPoint is the gap in one year, in percentage points (male minus female).
type GenderPoint struct {
	Year   int     `json:"year"`
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
	Gap    float64 `json:"gap"`
}

const (
	maleSuffix   = "_MALE"
	femaleSuffix = "_FEMALE"
)

// GenderGaps derives gap series from indicator code pairs that differ only by
// a _MALE/_FEMALE suffix, over the years both sides cover.
func (a *Analyzer) GenderGaps() []*GenderGap {
	var gaps []*GenderGap
	for _, c := range a.store.Indicators() {
		if !strings.HasSuffix(c.Code, maleSuffix) {
			continue
		}
		base := strings.TrimSuffix(c.Code, maleSuffix)

		male, err := a.store.AnnualSeries(c.Code)
		if err != nil {
			continue
		}
		female, err := a.store.AnnualSeries(base + femaleSuffix)
		if err != nil {
			continue
		}

		femaleByYear := make(map[int]float64, len(female))
		for _, p := range female {
			femaleByYear[p.Year] = p.Value
		}

		gap := &GenderGap{Indicator: base}
		for _, m := range male {
			f, ok := femaleByYear[m.Year]
			if !ok {
				continue
			}
			gap.Points = append(gap.Points, GenderPoint{
				Year: m.Year, Male: m.Value, Female: f, Gap: m.Value - f,
			})
		}
		if len(gap.Points) == 0 {
			continue
		}
		gap.LatestGap = gap.Points[len(gap.Points)-1].Gap
		if len(gap.Points) > 1 {
			gap.Narrowing = absFloat(gap.LatestGap) < absFloat(gap.Points[0].Gap)
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// Correlation is a Pearson coefficient between two indicators over shared years.
type Correlation struct {
	IndicatorA  string  `json:"indicator_a"`
	IndicatorB  string  `json:"indicator_b"`
	Coefficient float64 `json:"coefficient"`
	SharedYears int     `json:"shared_years"`
}

// Correlations computes pairwise Pearson correlations over indicator pairs
// that share at least two observation years. Pairs with no overlap are
// omitted rather than reported as zero.
func (a *Analyzer) Correlations() []Correlation {
	indicators := a.store.Indicators()
	series := make(map[string]map[int]float64, len(indicators))
	for _, c := range indicators {
		s, err := a.store.AnnualSeries(c.Code)
		if err != nil {
			continue
		}
		byYear := make(map[int]float64, len(s))
		for _, p := range s {
			byYear[p.Year] = p.Value
		}
		series[c.Code] = byYear
	}

	codes := make([]string, 0, len(series))
	for code := range series {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []Correlation
	for i := 0; i < len(codes); i++ {
		for j := i + 1; j < len(codes); j++ {
			va, vb := sharedValues(series[codes[i]], series[codes[j]])
			if len(va) < 2 {
				continue
			}
			out = append(out, Correlation{
				IndicatorA:  codes[i],
				IndicatorB:  codes[j],
				Coefficient: stat.Correlation(va, vb, nil),
				SharedYears: len(va),
			})
		}
	}
	return out
}

func sharedValues(a, b map[int]float64) ([]float64, []float64) {
	years := make([]int, 0, len(a))
	for year := range a {
		if _, ok := b[year]; ok {
			years = append(years, year)
		}
	}
	sort.Ints(years)

	va := make([]float64, len(years))
	vb := make([]float64, len(years))
	for i, year := range years {
		va[i] = a[year]
		vb[i] = b[year]
	}
	return va, vb
}

// DataGaps flags structural weaknesses in the dataset.
type DataGaps struct {
	SparseIndicators []string `json:"sparse_indicators"`
	StaleIndicators  []string `json:"stale_indicators"`
	UnlinkedEvents   []string `json:"unlinked_events"`
}

// staleYears is how long without a new observation makes an indicator stale.
const staleYears = 3

// DataGaps detects indicators with fewer than two points, indicators with no
// observation in the last three years of the dataset, and events carrying no
// impact links.
func (a *Analyzer) DataGaps() DataGaps {
	var gaps DataGaps

	var latest time.Time
	for _, o := range a.store.Observations() {
		if o.Date.After(latest) {
			latest = o.Date
		}
	}

	for _, c := range a.store.Indicators() {
		if c.RecordCount < 2 {
			gaps.SparseIndicators = append(gaps.SparseIndicators, c.Code)
		}
		if !latest.IsZero() && latest.Year()-c.LastDate.Year() >= staleYears {
			gaps.StaleIndicators = append(gaps.StaleIndicators, c.Code)
		}
	}

	for _, ev := range a.store.Events() {
		if len(a.store.LinksByEvent(ev.RecordID)) == 0 {
			gaps.UnlinkedEvents = append(gaps.UnlinkedEvents, ev.RecordID)
		}
	}
	return gaps
}

// Insights renders the plain-text insights summary artifact.
func (a *Analyzer) Insights() string {
	ov := a.Overview()
	gaps := a.DataGaps()

	var b strings.Builder
	b.WriteString("KEY INSIGHTS\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	fmt.Fprintf(&b, "Dataset: %d observations, %d events, %d impact links across %d indicators.\n\n",
		ov.Observations, ov.Events, ov.ImpactLinks, ov.Indicators)

	for _, pillar := range domain.Pillars() {
		for _, tr := range a.PillarTrajectories(pillar) {
			if len(tr.Series) < 2 {
				continue
			}
			direction := "rose"
			if tr.TotalChange < 0 {
				direction = "fell"
			}
			first, last := tr.Series[0], tr.Series[len(tr.Series)-1]
			fmt.Fprintf(&b, "- %s (%s) %s from %.1f to %.1f between %d and %d (%.1fpp, %.2fpp/year).\n",
				tr.Label, pillar, direction, first.Value, last.Value, first.Year, last.Year,
				tr.TotalChange, tr.AnnualRate)
		}
	}

	for _, gap := range a.GenderGaps() {
		trend := "widened"
		if gap.Narrowing {
			trend = "narrowed"
		}
		fmt.Fprintf(&b, "- Gender gap on %s is %.1fpp and has %s.\n", gap.Indicator, gap.LatestGap, trend)
	}

	if len(gaps.SparseIndicators) > 0 {
		fmt.Fprintf(&b, "- %d indicators have fewer than two observations: %s.\n",
			len(gaps.SparseIndicators), strings.Join(gaps.SparseIndicators, ", "))
	}
	if len(gaps.StaleIndicators) > 0 {
		fmt.Fprintf(&b, "- %d indicators are stale: %s.\n",
			len(gaps.StaleIndicators), strings.Join(gaps.StaleIndicators, ", "))
	}
	if len(gaps.UnlinkedEvents) > 0 {
		fmt.Fprintf(&b, "- %d events have no modeled impact links.\n", len(gaps.UnlinkedEvents))
	}

	a.logger.Info("insights summary rendered",
		slog.Int("indicators", ov.Indicators),
		slog.Int("sparse", len(gaps.SparseIndicators)))
	return b.String()
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
