package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestMetricsHandler verifies the private registry serves the application
// metrics.
func TestMetricsHandler(t *testing.T) {
	ObserveUpstreamCall("onecall", "success", 100*time.Millisecond)
	CacheHitsTotal.WithLabelValues("disk").Inc()
	ForecastQueriesTotal.Inc()

	w := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	// Vectors only appear once observed, so exercise each asserted family
	// above.
	for _, name := range []string{"upstreamCallsTotal", "cacheHitsTotal", "forecastQueriesTotal"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
