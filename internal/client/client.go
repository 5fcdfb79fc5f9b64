package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/myskyapp/mysky-service/internal/models"
	"github.com/myskyapp/mysky-service/internal/observability"
)

// WeatherAPI is the upstream surface the service layer depends on.
type WeatherAPI interface {
	Geocode(ctx context.Context, city string, limit int) ([]models.Location, error)
	OneCall(ctx context.Context, lat, lon float64, units, lang string) (*models.ForecastBundle, error)
	CurrentConditions(ctx context.Context, lat, lon float64, units, lang string) (*CurrentConditionsResponse, error)
	ForecastList(ctx context.Context, lat, lon float64, units, lang string) (*ForecastListResponse, error)
	AirPollution(ctx context.Context, lat, lon float64) (*AirPollutionResponse, error)
}

var (
	// ErrMissingAPIKey is a configuration error: no credential, no client.
	ErrMissingAPIKey = errors.New("OpenWeather API key is required")

	errDecode = errors.New("decode upstream response")
)

// StatusError is a non-success HTTP status from an upstream endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
}

// Timeouts holds the fixed per-endpoint request deadlines.
type Timeouts struct {
	Geocode  time.Duration
	OneCall  time.Duration
	Current  time.Duration
	Forecast time.Duration
	Air      time.Duration
}

// DefaultTimeouts returns the production per-endpoint deadlines.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Geocode:  12 * time.Second,
		OneCall:  14 * time.Second,
		Current:  12 * time.Second,
		Forecast: 14 * time.Second,
		Air:      12 * time.Second,
	}
}

const (
	defaultDataBaseURL = "https://api.openweathermap.org/data/2.5"
	defaultGeoBaseURL  = "https://api.openweathermap.org/geo/1.0"
)

// Config configures an OpenWeatherClient. Base URLs default to the public
// OpenWeatherMap hosts; tests point them at httptest servers.
type Config struct {
	APIKey      string
	DataBaseURL string
	GeoBaseURL  string
	Timeouts    Timeouts
}

// OpenWeatherClient talks to the OpenWeatherMap endpoints. Calls are
// synchronous and blocking; each carries its endpoint's fixed deadline. There
// is no retry: a failed call returns immediately with a classifiable error.
type OpenWeatherClient struct {
	apiKey      string
	dataBaseURL string
	geoBaseURL  string
	timeouts    Timeouts
	client      *http.Client
}

// NewOpenWeatherClient validates the credential and returns a client.
func NewOpenWeatherClient(cfg Config) (*OpenWeatherClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.DataBaseURL == "" {
		cfg.DataBaseURL = defaultDataBaseURL
	}
	if cfg.GeoBaseURL == "" {
		cfg.GeoBaseURL = defaultGeoBaseURL
	}
	zero := Timeouts{}
	if cfg.Timeouts == zero {
		cfg.Timeouts = DefaultTimeouts()
	}
	return &OpenWeatherClient{
		apiKey:      cfg.APIKey,
		dataBaseURL: cfg.DataBaseURL,
		geoBaseURL:  cfg.GeoBaseURL,
		timeouts:    cfg.Timeouts,
		client:      &http.Client{},
	}, nil
}

// Geocode resolves a city name to candidate locations via /geo/1.0/direct.
func (c *OpenWeatherClient) Geocode(ctx context.Context, city string, limit int) ([]models.Location, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", strconv.Itoa(limit))
	var out []models.Location
	if err := c.getJSON(ctx, "geocode", c.geoBaseURL+"/direct", params, c.timeouts.Geocode, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OneCall fetches the primary combined forecast. The response decodes
// directly into the bundle contract.
func (c *OpenWeatherClient) OneCall(ctx context.Context, lat, lon float64, units, lang string) (*models.ForecastBundle, error) {
	params := c.coordParams(lat, lon)
	params.Set("units", units)
	params.Set("lang", lang)
	params.Set("exclude", "minutely")
	var out models.ForecastBundle
	if err := c.getJSON(ctx, "onecall", c.dataBaseURL+"/onecall", params, c.timeouts.OneCall, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentConditions fetches /weather, the first half of the fallback pair.
func (c *OpenWeatherClient) CurrentConditions(ctx context.Context, lat, lon float64, units, lang string) (*CurrentConditionsResponse, error) {
	params := c.coordParams(lat, lon)
	params.Set("units", units)
	params.Set("lang", lang)
	var out CurrentConditionsResponse
	if err := c.getJSON(ctx, "current", c.dataBaseURL+"/weather", params, c.timeouts.Current, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForecastList fetches /forecast, the 3-hour-step list used for fallback
// synthesis.
func (c *OpenWeatherClient) ForecastList(ctx context.Context, lat, lon float64, units, lang string) (*ForecastListResponse, error) {
	params := c.coordParams(lat, lon)
	params.Set("units", units)
	params.Set("lang", lang)
	var out ForecastListResponse
	if err := c.getJSON(ctx, "forecast", c.dataBaseURL+"/forecast", params, c.timeouts.Forecast, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AirPollution fetches /air_pollution.
func (c *OpenWeatherClient) AirPollution(ctx context.Context, lat, lon float64) (*AirPollutionResponse, error) {
	params := c.coordParams(lat, lon)
	var out AirPollutionResponse
	if err := c.getJSON(ctx, "air", c.dataBaseURL+"/air_pollution", params, c.timeouts.Air, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *OpenWeatherClient) coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return params
}

// getJSON performs one GET against an upstream endpoint and decodes the
// response. Every failure mode maps to a classifiable error: deadline ->
// timeout, transport -> connection, non-2xx -> StatusError, bad body ->
// decode.
func (c *OpenWeatherClient) getJSON(ctx context.Context, endpoint, rawURL string, params url.Values, timeout time.Duration, out any) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		observability.ObserveUpstreamCall(endpoint, "error", time.Since(start))
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	observability.ObserveUpstreamCall(endpoint, statusLabel(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", errDecode, endpoint, err)
	}
	return nil
}

// readErrorMessage extracts the upstream {"cod","message"} error body when
// present. Best-effort; an unparsable body yields an empty message.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return ""
	}
	return apiErr.Message
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
