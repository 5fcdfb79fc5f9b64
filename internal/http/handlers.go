package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/myskyapp/mysky-service/internal/models"
	"github.com/myskyapp/mysky-service/internal/validation"
)

// ForecastProvider is the service surface the handlers consume.
type ForecastProvider interface {
	GetForecast(ctx context.Context, lat, lon float64, units, lang string) (*models.ForecastBundle, error)
	GetAirQuality(ctx context.Context, lat, lon float64) (*models.AirQuality, error)
	Geocode(ctx context.Context, city string) ([]models.Location, error)
}

// HistoryStore records and lists searched locations.
type HistoryStore interface {
	Add(ctx context.Context, loc models.Location) error
	Recent(ctx context.Context, n int) ([]models.Location, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	service ForecastProvider
	history HistoryStore
	logger  *zap.Logger
	// cachePing, when set, is called by the health check. Used when the
	// backend is memcached.
	cachePing func() error
}

// NewHandler returns a new Handler. history and cachePing may be nil.
func NewHandler(service ForecastProvider, history HistoryStore, logger *zap.Logger, cachePing func() error) *Handler {
	return &Handler{service: service, history: history, logger: logger, cachePing: cachePing}
}

// GetGeocode handles GET /api/geocode?q=<city>.
func (h *Handler) GetGeocode(w http.ResponseWriter, r *http.Request) {
	city, err := validation.ValidateCity(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}
	locations, err := h.service.Geocode(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

// GetForecast handles GET /api/forecast. Accepts either lat/lon or a city
// query; a city is geocoded first and its top candidate recorded in the
// search history.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	units, err := validation.ValidateUnits(q.Get("units"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_UNITS", err.Error())
		return
	}
	lang := q.Get("lang")
	if lang == "" {
		lang = "en"
	}

	var lat, lon float64
	if rawCity := q.Get("city"); rawCity != "" {
		city, err := validation.ValidateCity(rawCity)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
			return
		}
		candidates, err := h.service.Geocode(r.Context(), city)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if len(candidates) == 0 {
			writeError(w, r, http.StatusNotFound, "CITY_NOT_FOUND", "no locations found for that query")
			return
		}
		chosen := candidates[0]
		lat, lon = chosen.Lat, chosen.Lon
		if h.history != nil {
			if err := h.history.Add(r.Context(), chosen); err != nil {
				h.logger.Warn("history add failed", zap.String("city", chosen.Name), zap.Error(err))
			}
		}
	} else {
		lat, lon, err = parseCoordinates(q.Get("lat"), q.Get("lon"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
			return
		}
	}

	bundle, err := h.service.GetForecast(r.Context(), lat, lon, units, lang)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// GetAirQuality handles GET /api/air?lat=&lon=.
func (h *Handler) GetAirQuality(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon, err := parseCoordinates(q.Get("lat"), q.Get("lon"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return
	}
	aq, err := h.service.GetAirQuality(r.Context(), lat, lon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aq)
}

// GetHistory handles GET /api/history?limit=.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusOK, []models.Location{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	locations, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "HISTORY_UNAVAILABLE", "unable to read search history")
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

// PostHistory handles POST /api/history with a Location body.
func (h *Handler) PostHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, r, http.StatusNotFound, "HISTORY_DISABLED", "search history is not enabled")
		return
	}
	var loc models.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed location")
		return
	}
	if loc.Name == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "location name is required")
		return
	}
	if err := validation.ValidateCoordinates(loc.Lat, loc.Lon); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return
	}
	if err := h.history.Add(r.Context(), loc); err != nil {
		writeError(w, r, http.StatusInternalServerError, "HISTORY_UNAVAILABLE", "unable to record search history")
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	checks := make(map[string]string)
	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "mysky-service",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func parseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, validation.ErrLatitudeRange
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, validation.ErrLongitudeRange
	}
	if err := validation.ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeServiceError writes a 503 for upstream failures; the underlying error
// is logged at debug level, never leaked to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch weather data")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("upstream error", zap.Error(err))
	}
}
