// Package http exposes the dashboard API: dataset overview, indicator
// series, event catalog, association matrix and forecasts as JSON.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fipulse/internal/analysis"
	"fipulse/internal/dataset"
	apierrors "fipulse/internal/errors"
	"fipulse/internal/explorer"
	"fipulse/internal/forecast"
	"fipulse/internal/impact"
	"fipulse/pkg/contracts/domain"
)

// DashboardHandler serves the read-only analytics API over a loaded store.
type DashboardHandler struct {
	store      *dataset.Store
	explorer   *explorer.Explorer
	analyzer   *analysis.Analyzer
	forecaster *forecast.Forecaster
	logger     *slog.Logger
}

// NewDashboardHandler wires the analysis layers behind the API.
func NewDashboardHandler(store *dataset.Store, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dashboard_handler"))
	return &DashboardHandler{
		store:      store,
		explorer:   explorer.New(store, logger),
		analyzer:   analysis.New(store, logger),
		forecaster: forecast.NewForecaster(store, logger),
		logger:     logger,
	}
}

// Routes returns the dashboard API routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/indicators", h.GetIndicators)
	r.Get("/indicators/{code}/series", h.GetIndicatorSeries)
	r.Get("/events", h.GetEvents)
	r.Get("/matrix", h.GetMatrix)
	r.Get("/forecast/{code}", h.GetForecast)

	return r
}

type overviewResponse struct {
	Summary  explorer.Summary       `json:"summary"`
	Temporal explorer.TemporalRange `json:"temporal"`
	Pillars  analysis.Overview      `json:"analysis"`
	Latest   []latestIndicator      `json:"latest_indicators"`
}

type latestIndicator struct {
	Code   string        `json:"indicator_code"`
	Label  string        `json:"indicator"`
	Pillar domain.Pillar `json:"pillar"`
	Year   int           `json:"year"`
	Value  float64       `json:"value"`
}

// GetOverview handles GET /api/overview.
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	resp := overviewResponse{
		Summary:  h.explorer.Summarize(),
		Temporal: h.explorer.Temporal(),
		Pillars:  h.analyzer.Overview(),
	}
	for _, c := range h.store.Indicators() {
		series, err := h.store.AnnualSeries(c.Code)
		if err != nil || len(series) == 0 {
			continue
		}
		last := series[len(series)-1]
		resp.Latest = append(resp.Latest, latestIndicator{
			Code: c.Code, Label: c.Label, Pillar: c.Pillar,
			Year: last.Year, Value: last.Value,
		})
	}
	render.JSON(w, r, resp)
}

// GetIndicators handles GET /api/indicators.
func (h *DashboardHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.store.Indicators())
}

type seriesResponse struct {
	Indicator string              `json:"indicator_code"`
	Label     string              `json:"indicator"`
	Series    []dataset.YearValue `json:"series"`
}

// GetIndicatorSeries handles GET /api/indicators/{code}/series.
func (h *DashboardHandler) GetIndicatorSeries(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	series, err := h.store.AnnualSeries(code)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, seriesResponse{
		Indicator: code,
		Label:     h.store.IndicatorLabel(code),
		Series:    series,
	})
}

// GetEvents handles GET /api/events. An optional category query filters.
func (h *DashboardHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		render.JSON(w, r, h.store.EventsByCategory(domain.EventCategory(category)))
		return
	}
	render.JSON(w, r, h.explorer.EventsCatalog())
}

type matrixResponse struct {
	Matrix  *impact.Matrix `json:"matrix"`
	Summary impact.Summary `json:"summary"`
}

// GetMatrix handles GET /api/matrix. The duplicates query selects the
// duplicate-link policy; the default rejects conflicting links.
func (h *DashboardHandler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	policy := impact.DuplicateError
	if r.URL.Query().Get("duplicates") == "keep_strongest" {
		policy = impact.DuplicateKeepStrongest
	}

	matrix, err := impact.BuildMatrix(h.store.Events(), h.store.ImpactLinks(), impact.BuildOptions{
		OnDuplicate: policy,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, matrixResponse{Matrix: matrix, Summary: matrix.Summarize()})
}

// forecastDefaultHorizon is the number of projected years when the request
// does not name any.
const forecastDefaultHorizon = 3

// GetForecast handles GET /api/forecast/{code}.
// Query params: years (comma-separated), scenario, confidence, events, model.
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	q := r.URL.Query()

	years, err := parseYears(q.Get("years"))
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("years", err.Error())))
		return
	}
	if len(years) == 0 {
		base := time.Now().Year()
		for i := 1; i <= forecastDefaultHorizon; i++ {
			years = append(years, base+i)
		}
	}

	scenario, err := forecast.ParseScenario(q.Get("scenario"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	confidence := 0.95
	if raw := q.Get("confidence"); raw != "" {
		confidence, err = strconv.ParseFloat(raw, 64)
		if err != nil || confidence <= 0 || confidence >= 1 {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.ErrValidation("confidence", "confidence must be in (0, 1)")))
			return
		}
	}

	opts := forecast.Options{
		Years:         years,
		IncludeEvents: q.Get("events") != "false",
		ModelType:     forecast.ModelType(q.Get("model")),
		Confidence:    confidence,
	}
	pillar := h.pillarOf(code)

	result, err := h.forecaster.ForecastIndicator(code, pillar, opts)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	rows, err := result.ScenarioRows(scenario)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.JSON(w, r, struct {
		*forecast.Result
		Scenario     forecast.Scenario `json:"scenario"`
		ScenarioRows []forecast.Row    `json:"scenario_rows"`
	}{Result: result, Scenario: scenario, ScenarioRows: rows})
}

func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.FromDomain(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}

func (h *DashboardHandler) pillarOf(code string) domain.Pillar {
	if rc, ok := h.store.ReferenceCodes()[code]; ok && rc.Pillar != "" {
		return rc.Pillar
	}
	for _, c := range h.store.Indicators() {
		if c.Code == code {
			return c.Pillar
		}
	}
	return ""
}

func parseYears(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(raw, ",") {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}
