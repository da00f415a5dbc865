package dataset

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"fipulse/pkg/contracts/domain"
)

// Enricher appends new observations, events, impact links and corrections to a
// store. Existing rows are never touched; every addition is validated, stamped
// and logged.
type Enricher struct {
	store    *Store
	validate *validator.Validate
	logger   *slog.Logger
	log      []LogEntry
}

// LogEntry records one enrichment for the audit trail.
type LogEntry struct {
	Type      string    `json:"type"`
	RecordID  string    `json:"record_id"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnricher creates an enricher over an existing store.
func NewEnricher(store *Store, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// AddObservation validates and appends a new observation. The record id and
// collection date are stamped here; callers supply only the collected fields.
func (e *Enricher) AddObservation(o domain.Observation) (domain.Observation, error) {
	o.RecordID = newRecordID("OBS")
	if o.CollectedBy == "" {
		o.CollectedBy = "system"
	}
	o.CollectionDate = time.Now().UTC()

	if err := e.validate.Struct(o); err != nil {
		return domain.Observation{}, fmt.Errorf("validate observation: %w", err)
	}

	e.store.appendObservation(o)
	e.record("observation", o.RecordID,
		fmt.Sprintf("%s = %.2f on %s", o.IndicatorCode, o.Value, o.Date.Format("2006-01-02")))
	return o, nil
}

// AddEvent validates and appends a new event.
func (e *Enricher) AddEvent(ev domain.Event) (domain.Event, error) {
	ev.RecordID = newRecordID("EVT")
	if ev.CollectedBy == "" {
		ev.CollectedBy = "system"
	}
	ev.CollectionDate = time.Now().UTC()

	if err := e.validate.Struct(ev); err != nil {
		return domain.Event{}, fmt.Errorf("validate event: %w", err)
	}

	e.store.appendEvent(ev)
	e.record("event", ev.RecordID,
		fmt.Sprintf("%s on %s", ev.Category, ev.Date.Format("2006-01-02")))
	return ev, nil
}

// AddImpactLink validates and appends a new impact link. The parent event must
// already exist and the magnitude sign must agree with the direction.
func (e *Enricher) AddImpactLink(l domain.ImpactLink) (domain.ImpactLink, error) {
	l.RecordID = newRecordID("LNK")

	if err := e.validate.Struct(l); err != nil {
		return domain.ImpactLink{}, fmt.Errorf("validate impact link: %w", err)
	}
	if _, ok := e.store.EventByID(l.ParentID); !ok {
		return domain.ImpactLink{}, fmt.Errorf("impact link parent %s: event not found", l.ParentID)
	}
	if !l.SignConsistent() {
		return domain.ImpactLink{}, fmt.Errorf("impact link %s: magnitude sign contradicts direction %s", l.RecordID, l.Direction)
	}

	e.store.appendImpactLink(l)
	e.record("impact_link", l.RecordID,
		fmt.Sprintf("%s -> %s (%+.2fpp, lag %dm)", l.ParentID, l.Indicator, l.SignedMagnitude(), l.LagMonths))
	return l, nil
}

// AddCorrection appends a correction referencing an original record. The
// original row stays untouched; downstream consumers decide whether to apply
// the corrected value.
func (e *Enricher) AddCorrection(c domain.Correction) (domain.Correction, error) {
	c.RecordID = newRecordID("COR")
	if c.CollectedBy == "" {
		c.CollectedBy = "system"
	}
	c.CollectionDate = time.Now().UTC()

	if err := e.validate.Struct(c); err != nil {
		return domain.Correction{}, fmt.Errorf("validate correction: %w", err)
	}

	e.store.appendCorrection(c)
	e.record("correction", c.RecordID,
		fmt.Sprintf("%s.%s: %q -> %q", c.OriginalID, c.Field, c.OldValue, c.NewValue))
	return c, nil
}

// Log returns the enrichment audit trail in insertion order.
func (e *Enricher) Log() []LogEntry {
	return e.log
}

// RenderLogMarkdown renders the enrichment log as a Markdown table.
func (e *Enricher) RenderLogMarkdown() string {
	var b strings.Builder
	b.WriteString("# Enrichment Log\n\n")
	if len(e.log) == 0 {
		b.WriteString("No enrichments recorded.\n")
		return b.String()
	}
	b.WriteString("| Timestamp | Type | Record ID | Summary |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, entry := range e.log {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			entry.Timestamp.Format(time.RFC3339), entry.Type, entry.RecordID, entry.Summary)
	}
	return b.String()
}

func (e *Enricher) record(kind, recordID, summary string) {
	entry := LogEntry{
		Type:      kind,
		RecordID:  recordID,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
	e.log = append(e.log, entry)
	e.logger.Info("enrichment added",
		slog.String("type", kind),
		slog.String("record_id", recordID),
		slog.String("summary", summary))
}

// newRecordID mints a prefixed record id. The UUID keeps ids collision-free
// across collection sessions.
func newRecordID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
