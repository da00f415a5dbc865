package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"fipulse/pkg/contracts/domain"
)

// Loader reads the unified workbook and the reference-codes table into memory.
// Both .xlsx (excelize) and .csv inputs are supported; sheet discovery follows
// the same approach as the upstream collection spreadsheets: well-known names
// first, then a header scan.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Well-known sheet names for the unified data and the impact links.
var (
	unifiedSheetNames = []string{"data", "ethiopia_fi_unified_data", "unified_data"}
	impactSheetNames  = []string{"impact_links", "Impact_sheet", "impact_sheet"}
	refSheetNames     = []string{"reference_codes", "codes"}
)

// Load reads the unified dataset and the reference codes concurrently and
// assembles a Store. The reference-codes path may be empty.
func (l *Loader) Load(ctx context.Context, unifiedPath, refCodesPath string) (*Store, error) {
	var (
		observations []domain.Observation
		events       []domain.Event
		links        []domain.ImpactLink
		refCodes     []domain.ReferenceCode
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		observations, events, links, err = l.loadUnified(ctx, unifiedPath)
		return err
	})
	if refCodesPath != "" {
		g.Go(func() error {
			var err error
			refCodes, err = l.loadReferenceCodes(ctx, refCodesPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := NewStore(observations, events, links, refCodes)
	if err := store.CheckIntegrity(); err != nil {
		return nil, fmt.Errorf("integrity check: %w", err)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("unified_path", unifiedPath),
		slog.Int("observations", len(observations)),
		slog.Int("events", len(events)),
		slog.Int("impact_links", len(links)),
		slog.Int("reference_codes", len(refCodes)))

	return store, nil
}

// loadUnified reads every row kind from the unified file.
func (l *Loader) loadUnified(ctx context.Context, path string) ([]domain.Observation, []domain.Event, []domain.ImpactLink, error) {
	rows, linkRows, err := l.readUnifiedRows(ctx, path)
	if err != nil {
		return nil, nil, nil, err
	}

	observations, events, links, err := l.parseUnifiedRows(rows)
	if err != nil {
		return nil, nil, nil, err
	}

	// A dedicated impact-links sheet supplements links embedded in the
	// unified rows.
	if len(linkRows) > 0 {
		extra, err := parseImpactRows(linkRows)
		if err != nil {
			return nil, nil, nil, err
		}
		links = append(links, extra...)
	}

	return observations, events, links, nil
}

// readUnifiedRows returns the raw unified rows and, for workbooks, any rows
// from a dedicated impact-links sheet.
func (l *Loader) readUnifiedRows(ctx context.Context, path string) (unified, impactLinks [][]string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err := readCSV(path)
		return rows, nil, err
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()

		unified, sheet, err := findSheet(f, unifiedSheetNames, []string{"record_type", "pillar"})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		l.logger.InfoContext(ctx, "found unified data sheet",
			slog.String("sheet_name", sheet),
			slog.Int("total_rows", len(unified)))

		// The impact sheet is optional.
		if linkRows, linkSheet, err := findSheet(f, impactSheetNames, []string{"parent_id", "impact_magnitude"}); err == nil {
			l.logger.InfoContext(ctx, "found impact links sheet",
				slog.String("sheet_name", linkSheet),
				slog.Int("total_rows", len(linkRows)))
			impactLinks = linkRows
		}
		return unified, impactLinks, nil
	default:
		return nil, nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// loadReferenceCodes reads the indicator code table.
func (l *Loader) loadReferenceCodes(ctx context.Context, path string) ([]domain.ReferenceCode, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var err error
		rows, err = readCSV(path)
		if err != nil {
			return nil, err
		}
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		rows, _, err = findSheet(f, refSheetNames, []string{"code"})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}

	if len(rows) < 2 {
		return nil, nil
	}
	cols := mapColumns(rows[0])
	codes := make([]domain.ReferenceCode, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := cellGetter(row, cols)
		code := get("code")
		if code == "" {
			code = get("indicator_code")
		}
		if code == "" {
			continue
		}
		codes = append(codes, domain.ReferenceCode{
			Code:   code,
			Label:  firstNonEmpty(get("label"), get("indicator")),
			Pillar: domain.Pillar(get("pillar")),
			Unit:   get("unit"),
		})
	}
	l.logger.InfoContext(ctx, "reference codes loaded", slog.Int("count", len(codes)))
	return codes, nil
}

// parseUnifiedRows splits the denormalized rows by record_type.
func (l *Loader) parseUnifiedRows(rows [][]string) ([]domain.Observation, []domain.Event, []domain.ImpactLink, error) {
	if len(rows) < 2 {
		return nil, nil, nil, fmt.Errorf("unified data has no rows beyond the header")
	}
	cols := mapColumns(rows[0])
	if _, ok := cols["record_type"]; !ok {
		return nil, nil, nil, fmt.Errorf("unified data is missing the record_type column")
	}

	var (
		observations []domain.Observation
		events       []domain.Event
		links        []domain.ImpactLink
	)
	for i, row := range rows[1:] {
		get := cellGetter(row, cols)
		recordType := domain.RecordType(strings.ToLower(get("record_type")))

		switch recordType {
		case domain.RecordTypeObservation:
			date, err := parseDate(firstNonEmpty(get("observation_date"), get("date")))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("row %d: observation date: %w", i+2, err)
			}
			value, err := parseFloat(get("value_numeric"))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("row %d: value_numeric: %w", i+2, err)
			}
			observations = append(observations, domain.Observation{
				RecordID:       get("record_id"),
				Pillar:         domain.Pillar(get("pillar")),
				Indicator:      get("indicator"),
				IndicatorCode:  get("indicator_code"),
				Value:          value,
				Date:           date,
				SourceName:     get("source_name"),
				SourceURL:      get("source_url"),
				Confidence:     domain.Confidence(strings.ToLower(get("confidence"))),
				CollectedBy:    get("collected_by"),
				CollectionDate: parseDateLenient(get("collection_date")),
				OriginalText:   get("original_text"),
				Notes:          get("notes"),
			})

		case domain.RecordTypeEvent:
			date, err := parseDate(firstNonEmpty(get("event_date"), get("observation_date")))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("row %d: event date: %w", i+2, err)
			}
			events = append(events, domain.Event{
				RecordID:       get("record_id"),
				Category:       domain.EventCategory(strings.ToLower(get("category"))),
				Date:           date,
				Description:    get("description"),
				SourceName:     get("source_name"),
				SourceURL:      get("source_url"),
				Confidence:     domain.Confidence(strings.ToLower(get("confidence"))),
				CollectedBy:    get("collected_by"),
				CollectionDate: parseDateLenient(get("collection_date")),
				Notes:          get("notes"),
			})

		case domain.RecordTypeImpactLink:
			link, err := parseImpactRow(get)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			links = append(links, link)

		case "":
			// Rows with a parent_id but no record_type are legacy
			// impact links embedded in the unified table.
			if get("parent_id") != "" {
				link, err := parseImpactRow(get)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("row %d: %w", i+2, err)
				}
				links = append(links, link)
			}

		default:
			l.logger.Warn("skipping row with unknown record_type",
				slog.Int("row", i+2),
				slog.String("record_type", string(recordType)))
		}
	}

	return observations, events, links, nil
}

// parseImpactRows parses a dedicated impact-links sheet.
func parseImpactRows(rows [][]string) ([]domain.ImpactLink, error) {
	if len(rows) < 2 {
		return nil, nil
	}
	cols := mapColumns(rows[0])
	links := make([]domain.ImpactLink, 0, len(rows)-1)
	for i, row := range rows[1:] {
		get := cellGetter(row, cols)
		if get("parent_id") == "" {
			continue
		}
		link, err := parseImpactRow(get)
		if err != nil {
			return nil, fmt.Errorf("impact row %d: %w", i+2, err)
		}
		links = append(links, link)
	}
	return links, nil
}

func parseImpactRow(get func(string) string) (domain.ImpactLink, error) {
	magnitude, err := parseFloat(get("impact_magnitude"))
	if err != nil {
		return domain.ImpactLink{}, fmt.Errorf("impact_magnitude: %w", err)
	}
	lag := 0
	if raw := get("lag_months"); raw != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return domain.ImpactLink{}, fmt.Errorf("lag_months: %w", err)
		}
		lag = int(parsed)
	}

	direction := domain.ImpactDirection(strings.ToLower(get("impact_direction")))
	switch direction {
	case "increase":
		direction = domain.DirectionPositive
	case "decrease":
		direction = domain.DirectionNegative
	case "":
		direction = domain.DirectionPositive
	}

	return domain.ImpactLink{
		RecordID:   get("record_id"),
		ParentID:   get("parent_id"),
		Pillar:     domain.Pillar(get("pillar")),
		Indicator:  firstNonEmpty(get("related_indicator"), get("indicator_code")),
		Direction:  direction,
		Magnitude:  magnitude,
		LagMonths:  lag,
		EffectForm: strings.ToLower(get("effect_form")),
		Evidence:   domain.Confidence(strings.ToLower(get("evidence"))),
		SourceName: get("source_name"),
		Notes:      get("notes"),
	}, nil
}

// findSheet locates a sheet by well-known names, then by scanning headers for
// the required columns.
func findSheet(f *excelize.File, names []string, requiredCols []string) ([][]string, string, error) {
	for _, name := range names {
		if rows, err := f.GetRows(name); err == nil && len(rows) > 0 {
			return rows, name, nil
		}
	}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		header := strings.ToLower(strings.Join(rows[0], " "))
		found := true
		for _, col := range requiredCols {
			if !strings.Contains(header, col) {
				found = false
				break
			}
		}
		if found {
			return rows, name, nil
		}
	}
	return nil, "", fmt.Errorf("could not find a sheet with columns %v", requiredCols)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// mapColumns maps normalized header names to their positions.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}

// cellGetter returns a safe accessor over one row.
func cellGetter(row []string, cols map[string]int) func(string) string {
	return func(name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var dateFormats = []string{"2006-01-02", "2006/01/02", "01/02/2006", "2006-01-02 15:04:05", "2006"}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}

// parseDateLenient returns the zero time for empty or malformed metadata dates.
func parseDateLenient(raw string) time.Time {
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseFloat(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
