package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, dataURL, geoURL string) *OpenWeatherClient {
	t.Helper()
	c, err := NewOpenWeatherClient(Config{
		APIKey:      "test-key",
		DataBaseURL: dataURL,
		GeoBaseURL:  geoURL,
	})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

// TestNewOpenWeatherClient_MissingKey verifies that an empty API key is
// rejected at construction.
func TestNewOpenWeatherClient_MissingKey(t *testing.T) {
	_, err := NewOpenWeatherClient(Config{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("NewOpenWeatherClient() error = %v, want ErrMissingAPIKey", err)
	}
}

// TestGeocode_Success verifies request shaping (path, query, credential) and
// response decoding for the geocoding endpoint.
func TestGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct" {
			t.Errorf("path = %q, want /direct", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Seattle" {
			t.Errorf("q = %q, want Seattle", q.Get("q"))
		}
		if q.Get("limit") != "5" {
			t.Errorf("limit = %q, want 5", q.Get("limit"))
		}
		if q.Get("appid") != "test-key" {
			t.Errorf("appid = %q, want test-key", q.Get("appid"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Seattle","lat":47.6062,"lon":-122.3321,"country":"US","state":"Washington"}]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, server.URL)
	locations, err := c.Geocode(context.Background(), "Seattle", 5)
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("Geocode() returned %d locations, want 1", len(locations))
	}
	if locations[0].Name != "Seattle" || locations[0].Country != "US" {
		t.Errorf("Geocode() = %+v, want Seattle/US", locations[0])
	}
}

// TestOneCall_Success verifies the primary endpoint decodes directly into a
// ForecastBundle and excludes the minutely block.
func TestOneCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/onecall" {
			t.Errorf("path = %q, want /onecall", r.URL.Path)
		}
		if r.URL.Query().Get("exclude") != "minutely" {
			t.Errorf("exclude = %q, want minutely", r.URL.Query().Get("exclude"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"lat": 47.6062, "lon": -122.3321,
			"timezone": "America/Los_Angeles", "timezone_offset": -25200,
			"current": {"dt": 1717200000, "temp": 18.2, "weather": [{"main":"Clear"}]},
			"hourly": [{"dt": 1717200000, "temp": 18.2, "pop": 0.1}],
			"daily": [{"dt": 1717174800, "temp": {"min": 12.1, "max": 21.4}, "pop": 0.2}]
		}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, server.URL)
	bundle, err := c.OneCall(context.Background(), 47.6062, -122.3321, "metric", "en")
	if err != nil {
		t.Fatalf("OneCall() error = %v", err)
	}
	if bundle.Timezone != "America/Los_Angeles" {
		t.Errorf("timezone = %q, want America/Los_Angeles", bundle.Timezone)
	}
	if bundle.TimezoneOffset != -25200 {
		t.Errorf("timezone offset = %d, want -25200", bundle.TimezoneOffset)
	}
	if len(bundle.Hourly) != 1 || bundle.Hourly[0].Temp == nil || *bundle.Hourly[0].Temp != 18.2 {
		t.Errorf("hourly = %+v, want one 18.2 entry", bundle.Hourly)
	}
	if len(bundle.Daily) != 1 || bundle.Daily[0].Temp.Min == nil || *bundle.Daily[0].Temp.Min != 12.1 {
		t.Errorf("daily = %+v, want one entry with min 12.1", bundle.Daily)
	}
}

// TestGetJSON_StatusError verifies that a non-2xx response becomes a
// StatusError carrying the upstream message.
func TestGetJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, server.URL)
	_, err := c.CurrentConditions(context.Background(), 0, 0, "metric", "en")
	if err == nil {
		t.Fatal("CurrentConditions() error = nil, want StatusError")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", statusErr.StatusCode)
	}
	if statusErr.Message != "Invalid API key" {
		t.Errorf("message = %q, want upstream message", statusErr.Message)
	}
	if Classify(err) != KindHTTPStatus {
		t.Errorf("Classify() = %q, want %q", Classify(err), KindHTTPStatus)
	}
}

// TestGetJSON_DecodeError verifies that a 200 with an unparsable body is
// classified as a decode failure.
func TestGetJSON_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, server.URL)
	_, err := c.ForecastList(context.Background(), 0, 0, "metric", "en")
	if err == nil {
		t.Fatal("ForecastList() error = nil, want decode error")
	}
	if Classify(err) != KindDecode {
		t.Errorf("Classify() = %q, want %q", Classify(err), KindDecode)
	}
}

// TestGetJSON_Timeout verifies that exceeding the per-endpoint deadline is
// classified as a timeout.
func TestGetJSON_Timeout(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, server.URL)
	c.timeouts.Air = 20 * time.Millisecond

	_, err := c.AirPollution(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("AirPollution() error = nil, want timeout")
	}
	<-started
	if Classify(err) != KindTimeout {
		t.Errorf("Classify() = %q, want %q", Classify(err), KindTimeout)
	}
}

// TestGetJSON_ConnectionError verifies that an unreachable host is classified
// as a connection failure.
func TestGetJSON_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	c := newTestClient(t, server.URL, server.URL)
	_, err := c.AirPollution(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("AirPollution() error = nil, want connection error")
	}
	if Classify(err) != KindConnection {
		t.Errorf("Classify() = %q, want %q", Classify(err), KindConnection)
	}
}

// TestAirPollution_Success verifies decoding of the air pollution payload.
func TestAirPollution_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/air_pollution" {
			t.Errorf("path = %q, want /air_pollution", r.URL.Path)
		}
		w.Write([]byte(`{"list":[{"main":{"aqi":2},"components":{"pm2_5":8.5,"o3":61.1}}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, server.URL)
	resp, err := c.AirPollution(context.Background(), 47.6062, -122.3321)
	if err != nil {
		t.Fatalf("AirPollution() error = %v", err)
	}
	if len(resp.List) != 1 {
		t.Fatalf("AirPollution() returned %d entries, want 1", len(resp.List))
	}
	if resp.List[0].Main.AQI == nil || *resp.List[0].Main.AQI != 2 {
		t.Errorf("aqi = %v, want 2", resp.List[0].Main.AQI)
	}
	if resp.List[0].Components["pm2_5"] != 8.5 {
		t.Errorf("pm2_5 = %v, want 8.5", resp.List[0].Components["pm2_5"])
	}
}
