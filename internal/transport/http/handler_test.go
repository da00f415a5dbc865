package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fipulse/internal/dataset"
	"fipulse/pkg/contracts/domain"
)

func apiStore(t *testing.T) *dataset.Store {
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
		obs("OBS-4", domain.PillarAccess, "ACC_OWNERSHIP", 2024, 49),
	}
	events := []domain.Event{
		{RecordID: "EVT-1", Category: domain.CategoryProductLaunch,
			Date:        time.Date(2021, 5, 11, 0, 0, 0, 0, time.UTC),
			Description: "telebirr launch", SourceName: "Ethio Telecom", Confidence: domain.ConfidenceHigh},
	}
	links := []domain.ImpactLink{
		{RecordID: "LNK-1", ParentID: "EVT-1", Pillar: domain.PillarAccess,
			Indicator: "ACC_OWNERSHIP", Direction: domain.DirectionPositive,
			Magnitude: 5, EffectForm: "immediate"},
	}

	s := dataset.NewStore(observations, events, links, nil)
	require.NoError(t, s.CheckIntegrity())
	return s
}

func apiRouter(t *testing.T) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/api", NewDashboardHandler(apiStore(t), nil).Routes())
	return r
}

func doGet(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetOverview(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "summary")
	assert.Contains(t, resp, "temporal")
	assert.Contains(t, resp, "latest_indicators")
}

func TestGetIndicatorSeries(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/indicators/ACC_OWNERSHIP/series")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Indicator string `json:"indicator_code"`
		Series    []struct {
			Year  int     `json:"year"`
			Value float64 `json:"value"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ACC_OWNERSHIP", resp.Indicator)
	require.Len(t, resp.Series, 4)
	assert.Equal(t, 2014, resp.Series[0].Year)
}

func TestGetIndicatorSeriesUnknown(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/indicators/NOPE/series")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_INDICATOR")
}

func TestGetEvents(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "telebirr launch", events[0]["description"])

	rec = doGet(t, apiRouter(t), "/api/events?category=policy")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Empty(t, events)
}

func TestGetMatrix(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/matrix")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matrix struct {
			EventIDs   []string    `json:"event_ids"`
			Indicators []string    `json:"indicators"`
			Values     [][]float64 `json:"values"`
		} `json:"matrix"`
		Summary struct {
			TotalImpacts int `json:"total_impacts"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"EVT-1"}, resp.Matrix.EventIDs)
	assert.Equal(t, 1, resp.Summary.TotalImpacts)
	assert.Equal(t, 5.0, resp.Matrix.Values[0][0])
}

func TestGetForecast(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/forecast/ACC_OWNERSHIP?years=2025,2027")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Indicator string `json:"indicator_code"`
		Scenario  string `json:"scenario"`
		Rows      []struct {
			Year     int     `json:"year"`
			Forecast float64 `json:"forecast"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ACC_OWNERSHIP", resp.Indicator)
	assert.Equal(t, "base", resp.Scenario)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 2025, resp.Rows[0].Year)
	assert.Greater(t, resp.Rows[0].Forecast, 0.0)
}

func TestGetForecastRejectsUnknownScenario(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/forecast/ACC_OWNERSHIP?scenario=miraculous")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_SCENARIO")
}

func TestGetForecastRejectsBadParams(t *testing.T) {
	rec := doGet(t, apiRouter(t), "/api/forecast/ACC_OWNERSHIP?years=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doGet(t, apiRouter(t), "/api/forecast/ACC_OWNERSHIP?confidence=1.5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(apiStore(t), "1.0.0")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Observations)

	// No dataset loaded: degraded.
	degraded := NewHealthHandler(nil, "1.0.0")
	rec = httptest.NewRecorder()
	degraded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics()
	m.SetDatasetRecords(6)

	handler := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fipulse_dataset_records 6")
	assert.Contains(t, rec.Body.String(), "fipulse_http_requests_total")
}
