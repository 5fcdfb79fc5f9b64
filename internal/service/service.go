package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/myskyapp/mysky-service/internal/cache"
	"github.com/myskyapp/mysky-service/internal/client"
	"github.com/myskyapp/mysky-service/internal/forecast"
	"github.com/myskyapp/mysky-service/internal/models"
	"github.com/myskyapp/mysky-service/internal/observability"
)

// GeocodeLimit caps geocoding candidates per query.
const GeocodeLimit = 5

// ForecastService orchestrates weather data acquisition: cache-aside lookups
// around the primary one-call endpoint, with a single fallback attempt that
// synthesizes the bundle from the two narrow endpoints. One fetch is a
// straight sequence of blocking calls; the only shared state is the cache.
type ForecastService struct {
	client  client.WeatherAPI
	cache   cache.Store
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewForecastService wires the service. The circuit breaker guards only the
// primary endpoint: while open, fetches go straight to the fallback path. It
// never retries anything.
func NewForecastService(api client.WeatherAPI, store cache.Store, logger *zap.Logger) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "onecall",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker transition",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &ForecastService{client: api, cache: store, breaker: breaker, logger: logger}
}

// loggerFromContext extracts the request-scoped zap.Logger if present.
func (s *ForecastService) loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return s.logger
}

// GetForecast returns the ForecastBundle for the coordinates, serving from
// cache within the TTL window. On a miss it calls the primary endpoint; any
// primary failure triggers exactly one fallback synthesis attempt. Only a
// fallback failure surfaces to the caller.
func (s *ForecastService) GetForecast(ctx context.Context, lat, lon float64, units, lang string) (*models.ForecastBundle, error) {
	key := forecastCacheKey(lat, lon, units)
	logger := s.loggerFromContext(ctx)
	observability.ForecastQueriesTotal.Inc()

	var cached models.ForecastBundle
	if s.cacheGet(ctx, key, "forecast", &cached) {
		logger.Debug("forecast cache hit", zap.String("key", key))
		return &cached, nil
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.OneCall(ctx, lat, lon, units, lang)
	})
	var bundle *models.ForecastBundle
	if err != nil {
		recordUpstreamError("onecall", err)
		logger.Warn("primary forecast endpoint failed, synthesizing",
			zap.String("kind", string(client.Classify(err))),
			zap.Error(err))
		bundle, err = s.synthesizeFallback(ctx, lat, lon, units, lang)
		if err != nil {
			observability.FallbackFailuresTotal.Inc()
			return nil, fmt.Errorf("fetch forecast for %s: %w", key, err)
		}
		observability.FallbackSynthesisTotal.Inc()
	} else {
		bundle = result.(*models.ForecastBundle)
	}

	s.cachePut(ctx, key, bundle, logger)
	return bundle, nil
}

// synthesizeFallback performs the single fallback attempt: current conditions,
// then the 3-hour forecast list, then synthesis. Either call failing fails the
// whole fetch; there is no further fallback.
func (s *ForecastService) synthesizeFallback(ctx context.Context, lat, lon float64, units, lang string) (*models.ForecastBundle, error) {
	cur, err := s.client.CurrentConditions(ctx, lat, lon, units, lang)
	if err != nil {
		recordUpstreamError("current", err)
		return nil, fmt.Errorf("fallback current conditions: %w", err)
	}
	fc, err := s.client.ForecastList(ctx, lat, lon, units, lang)
	if err != nil {
		recordUpstreamError("forecast", err)
		return nil, fmt.Errorf("fallback forecast list: %w", err)
	}
	return forecast.Synthesize(lat, lon, cur, fc), nil
}

// GetAirQuality returns the current air pollution reading, cached under the
// rounded coordinates.
func (s *ForecastService) GetAirQuality(ctx context.Context, lat, lon float64) (*models.AirQuality, error) {
	key := fmt.Sprintf("air::%.4f,%.4f", lat, lon)
	logger := s.loggerFromContext(ctx)

	var cached models.AirQuality
	if s.cacheGet(ctx, key, "air", &cached) {
		return &cached, nil
	}

	resp, err := s.client.AirPollution(ctx, lat, lon)
	if err != nil {
		recordUpstreamError("air", err)
		return nil, fmt.Errorf("fetch air quality for %s: %w", key, err)
	}
	aq := airQualityFrom(resp)

	s.cachePut(ctx, key, aq, logger)
	return aq, nil
}

// Geocode resolves a city name to candidate locations, cached per query
// string.
func (s *ForecastService) Geocode(ctx context.Context, city string) ([]models.Location, error) {
	key := "geocode::" + city
	logger := s.loggerFromContext(ctx)

	var cached []models.Location
	if s.cacheGet(ctx, key, "geocode", &cached) {
		return cached, nil
	}

	locations, err := s.client.Geocode(ctx, city, GeocodeLimit)
	if err != nil {
		recordUpstreamError("geocode", err)
		return nil, fmt.Errorf("geocode %q: %w", city, err)
	}

	s.cachePut(ctx, key, locations, logger)
	return locations, nil
}

// cacheGet reads and decodes a cached payload. Every failure mode (read
// error, corrupt payload, expiry) degrades to a miss; caching is never a
// correctness dependency.
func (s *ForecastService) cacheGet(ctx context.Context, key, cacheType string, out any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		return false
	}
	observability.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	return true
}

// cachePut stores a payload best-effort. A failed write is logged and
// counted, never surfaced.
func (s *ForecastService) cachePut(ctx context.Context, key string, payload any, logger *zap.Logger) {
	if err := s.cache.Set(ctx, key, payload); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func airQualityFrom(resp *client.AirPollutionResponse) *models.AirQuality {
	aq := &models.AirQuality{Components: map[string]float64{}}
	if len(resp.List) == 0 {
		return aq
	}
	entry := resp.List[0]
	aq.AQI = entry.Main.AQI
	for k, v := range entry.Components {
		aq.Components[k] = v
	}
	return aq
}

func recordUpstreamError(endpoint string, err error) {
	observability.UpstreamErrorsTotal.WithLabelValues(endpoint, string(client.Classify(err))).Inc()
}

// forecastCacheKey derives the cache key from rounded coordinates and the
// unit system, so nearby lookups in the same units share an entry.
func forecastCacheKey(lat, lon float64, units string) string {
	return fmt.Sprintf("onecall::%.4f,%.4f::units=%s", lat, lon, units)
}
