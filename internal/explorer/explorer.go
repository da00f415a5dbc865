// Package explorer provides structural summaries of the unified dataset:
// record counts, cross-tabulations, temporal coverage and catalogs. It reads
// the store and computes, nothing here mutates data.
package explorer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"fipulse/internal/dataset"
	"fipulse/pkg/contracts/domain"
)

// Explorer computes dataset structure summaries from a loaded store.
type Explorer struct {
	store  *dataset.Store
	logger *slog.Logger
}

// New creates an explorer. A nil logger falls back to slog.Default.
func New(store *dataset.Store, logger *slog.Logger) *Explorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Explorer{store: store, logger: logger}
}

// Summary is the top-level record census of the dataset.
type Summary struct {
	TotalRecords int            `json:"total_records"`
	ByType       map[string]int `json:"by_record_type"`
	ByPillar     map[string]int `json:"by_pillar"`
	BySource     map[string]int `json:"by_source"`
	ByConfidence map[string]int `json:"by_confidence"`
}

// Summarize counts records by type, pillar, source and confidence tier.
func (e *Explorer) Summarize() Summary {
	s := Summary{
		ByType:       make(map[string]int),
		ByPillar:     make(map[string]int),
		BySource:     make(map[string]int),
		ByConfidence: make(map[string]int),
	}

	for _, o := range e.store.Observations() {
		s.ByType[string(domain.RecordTypeObservation)]++
		s.ByPillar[string(o.Pillar)]++
		s.BySource[o.SourceName]++
		s.ByConfidence[string(o.Confidence)]++
	}
	for _, ev := range e.store.Events() {
		s.ByType[string(domain.RecordTypeEvent)]++
		s.BySource[ev.SourceName]++
		s.ByConfidence[string(ev.Confidence)]++
	}
	for _, l := range e.store.ImpactLinks() {
		s.ByType[string(domain.RecordTypeImpactLink)]++
		s.ByPillar[string(l.Pillar)]++
		if l.Evidence != "" {
			s.ByConfidence[string(l.Evidence)]++
		}
	}
	s.ByType[string(domain.RecordTypeCorrection)] = len(e.store.Corrections())

	s.TotalRecords = len(e.store.Observations()) + len(e.store.Events()) +
		len(e.store.ImpactLinks()) + len(e.store.Corrections())
	return s
}

// CrossTab is a two-dimensional count table. Rows and Cols are sorted label
// sets, Counts is indexed [row label][col label].
type CrossTab struct {
	RowDim string                    `json:"row_dimension"`
	ColDim string                    `json:"col_dimension"`
	Rows   []string                  `json:"rows"`
	Cols   []string                  `json:"cols"`
	Counts map[string]map[string]int `json:"counts"`
}

func newCrossTab(rowDim, colDim string) *CrossTab {
	return &CrossTab{
		RowDim: rowDim,
		ColDim: colDim,
		Counts: make(map[string]map[string]int),
	}
}

func (ct *CrossTab) add(row, col string) {
	if row == "" || col == "" {
		return
	}
	if ct.Counts[row] == nil {
		ct.Counts[row] = make(map[string]int)
	}
	ct.Counts[row][col]++
}

func (ct *CrossTab) finalize() {
	colSet := make(map[string]struct{})
	for row, cols := range ct.Counts {
		ct.Rows = append(ct.Rows, row)
		for col := range cols {
			colSet[col] = struct{}{}
		}
	}
	for col := range colSet {
		ct.Cols = append(ct.Cols, col)
	}
	sort.Strings(ct.Rows)
	sort.Strings(ct.Cols)
}

// CrossTabs builds the three standard cross-tabulations:
// record type by pillar, record type by confidence, pillar by confidence.
func (e *Explorer) CrossTabs() []*CrossTab {
	typeByPillar := newCrossTab("record_type", "pillar")
	typeByConfidence := newCrossTab("record_type", "confidence")
	pillarByConfidence := newCrossTab("pillar", "confidence")

	for _, o := range e.store.Observations() {
		typeByPillar.add(string(domain.RecordTypeObservation), string(o.Pillar))
		typeByConfidence.add(string(domain.RecordTypeObservation), string(o.Confidence))
		pillarByConfidence.add(string(o.Pillar), string(o.Confidence))
	}
	for _, ev := range e.store.Events() {
		typeByConfidence.add(string(domain.RecordTypeEvent), string(ev.Confidence))
	}
	for _, l := range e.store.ImpactLinks() {
		typeByPillar.add(string(domain.RecordTypeImpactLink), string(l.Pillar))
		typeByConfidence.add(string(domain.RecordTypeImpactLink), string(l.Evidence))
		pillarByConfidence.add(string(l.Pillar), string(l.Evidence))
	}

	tabs := []*CrossTab{typeByPillar, typeByConfidence, pillarByConfidence}
	for _, ct := range tabs {
		ct.finalize()
	}
	return tabs
}

// TemporalRange is the span of dated records in the dataset.
type TemporalRange struct {
	FirstObservation time.Time `json:"first_observation"`
	LastObservation  time.Time `json:"last_observation"`
	FirstEvent       time.Time `json:"first_event"`
	LastEvent        time.Time `json:"last_event"`
	SpanYears        int       `json:"span_years"`
}

// Temporal computes the observation and event date ranges.
func (e *Explorer) Temporal() TemporalRange {
	var tr TemporalRange
	for _, o := range e.store.Observations() {
		if tr.FirstObservation.IsZero() || o.Date.Before(tr.FirstObservation) {
			tr.FirstObservation = o.Date
		}
		if o.Date.After(tr.LastObservation) {
			tr.LastObservation = o.Date
		}
	}
	for _, ev := range e.store.Events() {
		if tr.FirstEvent.IsZero() || ev.Date.Before(tr.FirstEvent) {
			tr.FirstEvent = ev.Date
		}
		if ev.Date.After(tr.LastEvent) {
			tr.LastEvent = ev.Date
		}
	}

	first, last := tr.FirstObservation, tr.LastObservation
	if !tr.FirstEvent.IsZero() && (first.IsZero() || tr.FirstEvent.Before(first)) {
		first = tr.FirstEvent
	}
	if tr.LastEvent.After(last) {
		last = tr.LastEvent
	}
	if !first.IsZero() {
		tr.SpanYears = last.Year() - first.Year()
	}
	return tr
}

// EventsCatalog lists all events sorted by date ascending.
func (e *Explorer) EventsCatalog() []domain.Event {
	events := make([]domain.Event, len(e.store.Events()))
	copy(events, e.store.Events())
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

// LinksSummary aggregates the impact links table.
type LinksSummary struct {
	TotalLinks     int            `json:"total_links"`
	ByDirection    map[string]int `json:"by_direction"`
	ByEffectForm   map[string]int `json:"by_effect_form"`
	ByIndicator    map[string]int `json:"by_indicator"`
	LinkedEvents   int            `json:"linked_events"`
	UnlinkedEvents int            `json:"unlinked_events"`
}

// SummarizeLinks aggregates impact links by direction, form and target, and
// counts events with and without links.
func (e *Explorer) SummarizeLinks() LinksSummary {
	ls := LinksSummary{
		ByDirection:  make(map[string]int),
		ByEffectForm: make(map[string]int),
		ByIndicator:  make(map[string]int),
	}
	linked := make(map[string]struct{})
	for _, l := range e.store.ImpactLinks() {
		ls.TotalLinks++
		ls.ByDirection[string(l.Direction)]++
		form := l.EffectForm
		if form == "" {
			form = "immediate"
		}
		ls.ByEffectForm[form]++
		ls.ByIndicator[l.Indicator]++
		linked[l.ParentID] = struct{}{}
	}
	ls.LinkedEvents = len(linked)
	ls.UnlinkedEvents = len(e.store.Events()) - len(linked)
	return ls
}

// RenderReport produces the plain-text exploration report artifact.
func (e *Explorer) RenderReport() string {
	summary := e.Summarize()
	temporal := e.Temporal()
	links := e.SummarizeLinks()

	var b strings.Builder
	b.WriteString("ETHIOPIA FINANCIAL INCLUSION DATASET - EXPLORATION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "Total records: %d\n\n", summary.TotalRecords)

	writeCountSection(&b, "Records by type", summary.ByType)
	writeCountSection(&b, "Records by pillar", summary.ByPillar)
	writeCountSection(&b, "Records by confidence", summary.ByConfidence)
	writeCountSection(&b, "Records by source", summary.BySource)

	b.WriteString("Temporal coverage\n")
	if !temporal.FirstObservation.IsZero() {
		fmt.Fprintf(&b, "  observations: %s to %s\n",
			temporal.FirstObservation.Format("2006-01-02"),
			temporal.LastObservation.Format("2006-01-02"))
	}
	if !temporal.FirstEvent.IsZero() {
		fmt.Fprintf(&b, "  events:       %s to %s\n",
			temporal.FirstEvent.Format("2006-01-02"),
			temporal.LastEvent.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "  span: %d years\n\n", temporal.SpanYears)

	b.WriteString("Indicator coverage\n")
	for _, c := range e.store.Indicators() {
		fmt.Fprintf(&b, "  %-24s %-40s %d records (%d-%d)\n",
			c.Code, c.Label, c.RecordCount, c.FirstDate.Year(), c.LastDate.Year())
	}
	b.WriteString("\n")

	b.WriteString("Events catalog\n")
	for _, ev := range e.EventsCatalog() {
		fmt.Fprintf(&b, "  %s  %-16s %s\n", ev.Date.Format("2006-01-02"), ev.Category, ev.Description)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Impact links: %d total, %d events linked, %d events without links\n",
		links.TotalLinks, links.LinkedEvents, links.UnlinkedEvents)

	e.logger.Info("exploration report rendered",
		slog.Int("records", summary.TotalRecords),
		slog.Int("impact_links", links.TotalLinks))
	return b.String()
}

func writeCountSection(b *strings.Builder, title string, counts map[string]int) {
	b.WriteString(title + "\n")
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %-24s %d\n", k, counts[k])
	}
	b.WriteString("\n")
}
