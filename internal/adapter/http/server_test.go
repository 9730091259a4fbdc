package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/tempest-listener/internal/adapter/http"
	"github.com/couchcryptid/tempest-listener/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type memoryStore struct {
	rows      []domain.StoredWeather // newest first
	lastLimit int
	insertErr error
	queryErr  error
}

func (m *memoryStore) Insert(_ context.Context, w domain.Weather) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	id := int64(len(m.rows) + 1)
	m.rows = append([]domain.StoredWeather{{ID: id, Weather: w}}, m.rows...)
	return nil
}

func (m *memoryStore) Latest(_ context.Context, limit int) ([]domain.StoredWeather, error) {
	m.lastLimit = limit
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return m.rows[:limit], nil
}

const validBody = `{
	"time_epoch": 1588186800, "wind_lull": 0, "wind_avg": 2.6, "wind_gust": 4.6,
	"wind_direction": 187, "wind_sample_interval": 3, "station_pressure": 1017.57,
	"air_temp": 22.37, "relative_humidity": 50.26, "illuminance": 328, "uv_index": 0.03,
	"solar_radiation": 3, "rain_over_prev_minute": 0, "precip_type": 1,
	"lightning_avg_distance": 0, "lightning_strike_count": 0, "battery_voltage": 2.41,
	"report_interval": 1
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(store *memoryStore, readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", store, &mockReadiness{err: readyErr}, discardLogger())
}

func do(srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, nil), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, fmt.Errorf("no observation stored yet")), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLatest_EmptyReturns404(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, nil), http.MethodGet, "/weather/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no weather observations found", errorBody(t, rec))
}

func TestLatest_ReturnsNewest(t *testing.T) {
	store := &memoryStore{}
	srv := newTestServer(store, nil)

	require.NoError(t, store.Insert(context.Background(), domain.Weather{TimeEpoch: 100}))
	require.NoError(t, store.Insert(context.Background(), domain.Weather{TimeEpoch: 160}))

	rec := do(srv, http.MethodGet, "/weather/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.StoredWeather
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.ID)
	assert.Equal(t, int64(160), got.TimeEpoch)
}

func TestLatest_StoreFailureReturns500(t *testing.T) {
	store := &memoryStore{queryErr: errors.New("connection refused")}
	rec := do(newTestServer(store, nil), http.MethodGet, "/weather/latest", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRecent_Limit(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantLimit int
	}{
		{"default", "/weather", http.StatusOK, 10},
		{"explicit", "/weather?limit=2", http.StatusOK, 2},
		{"maximum", "/weather?limit=1000", http.StatusOK, 1000},
		{"zero", "/weather?limit=0", http.StatusBadRequest, 0},
		{"too large", "/weather?limit=1001", http.StatusBadRequest, 0},
		{"not a number", "/weather?limit=ten", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			rec := do(newTestServer(store, nil), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLimit, store.lastLimit)
		})
	}
}

func TestRecent_EmptyIsArray(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, nil), http.MethodGet, "/weather", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreate_StoresWeather(t *testing.T) {
	store := &memoryStore{}
	rec := do(newTestServer(store, nil), http.MethodPost, "/weather", validBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.rows, 1)
	got := store.rows[0].Weather
	assert.Equal(t, int64(1588186800), got.TimeEpoch)
	assert.Equal(t, float32(2.6), got.WindAvg)
	assert.Equal(t, domain.PrecipRain, got.PrecipType)
	assert.Equal(t, uint16(187), got.WindDirection)
}

func TestCreate_RejectsBadBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", `weather`, "JSON object"},
		{"array", `[1,2]`, "JSON object"},
		{"missing field", strings.Replace(validBody, `"report_interval": 1`, `"extra": 1`, 1), "report_interval"},
		{"null field", strings.Replace(validBody, `"air_temp": 22.37`, `"air_temp": null`, 1), "air_temp"},
		{"precip out of range", strings.Replace(validBody, `"precip_type": 1`, `"precip_type": 7`, 1), "precipitation type"},
		{"fractional integer", strings.Replace(validBody, `"wind_direction": 187`, `"wind_direction": 187.5`, 1), "wind_direction"},
		{"overflow", strings.Replace(validBody, `"wind_direction": 187`, `"wind_direction": 70000`, 1), "wind_direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			rec := do(newTestServer(store, nil), http.MethodPost, "/weather", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.wantErr)
			assert.Empty(t, store.rows)
		})
	}
}

func TestCreate_StoreFailureReturns500(t *testing.T) {
	store := &memoryStore{insertErr: errors.New("disk full")}
	rec := do(newTestServer(store, nil), http.MethodPost, "/weather", validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnknownRouteReturns404(t *testing.T) {
	rec := do(newTestServer(&memoryStore{}, nil), http.MethodGet, "/weather/first", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
