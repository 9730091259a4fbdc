package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/couchcryptid/tempest-listener/internal/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 1000
	maxBodyBytes = 1 << 20
)

// errNoObservations is the body of the 404 returned by /weather/latest.
var errNoObservations = errors.New("no weather observations found")

// requiredFields holds the JSON names of every Weather field. A POSTed body
// must carry all of them.
var requiredFields = jsonFieldNames(reflect.TypeFor[domain.Weather]())

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Latest(r.Context(), 1)
	if err != nil {
		s.logger.Error("query latest observation", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("storage unavailable"))
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, errNoObservations)
		return
	}
	writeJSON(w, http.StatusOK, rows[0])
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.store.Latest(r.Context(), limit)
	if err != nil {
		s.logger.Error("query recent observations", "error", err, "limit", limit)
		writeError(w, http.StatusInternalServerError, errors.New("storage unavailable"))
		return
	}
	if rows == nil {
		rows = []domain.StoredWeather{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	weather, err := decodeWeather(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.Insert(r.Context(), weather); err != nil {
		s.logger.Error("store posted observation", "error", err, "time_epoch", weather.TimeEpoch)
		writeError(w, http.StatusInternalServerError, errors.New("storage unavailable"))
		return
	}
	writeJSON(w, http.StatusCreated, weather)
}

// decodeWeather parses a Weather body. Every field is required, numbers must
// fit their field, and precip_type must be 0..3. Unknown fields are ignored.
func decodeWeather(body io.Reader) (domain.Weather, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("read body: %w", err)
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil || present == nil {
		return domain.Weather{}, errors.New("body must be a JSON object")
	}
	var missing []string
	for _, name := range requiredFields {
		if v, ok := present[name]; !ok || string(v) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return domain.Weather{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	var weather domain.Weather
	if err := json.Unmarshal(data, &weather); err != nil {
		return domain.Weather{}, fmt.Errorf("invalid weather: %w", err)
	}
	return weather, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
	}
	return n, nil
}

func jsonFieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			names = append(names, name)
		}
	}
	return names
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
