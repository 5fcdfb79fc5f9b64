package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/myskyapp/mysky-service/internal/cache"
	"github.com/myskyapp/mysky-service/internal/client"
	"github.com/myskyapp/mysky-service/internal/config"
	"github.com/myskyapp/mysky-service/internal/history"
	internalhttp "github.com/myskyapp/mysky-service/internal/http"
	"github.com/myskyapp/mysky-service/internal/observability"
	"github.com/myskyapp/mysky-service/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	api, err := client.NewOpenWeatherClient(client.Config{
		APIKey:      cfg.APIKey,
		DataBaseURL: cfg.DataBaseURL,
		GeoBaseURL:  cfg.GeoBaseURL,
		Timeouts:    client.DefaultTimeouts(),
	})
	if err != nil {
		logger.Fatal("failed to build weather client", zap.Error(err))
	}

	var (
		store     cache.Store
		cachePing func() error
		memcached *cache.MemcachedCache
		scheduler *gocron.Scheduler
	)
	switch cfg.CacheBackend {
	case "memcached":
		memcached, err = cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.CacheTTL, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("failed to create memcached cache", zap.Error(err))
		}
		store = memcached
		cachePing = memcached.Ping
		logger.Info("using memcached cache", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		disk, err := cache.NewDiskCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			logger.Fatal("failed to create cache directory", zap.Error(err))
		}
		store = disk
		logger.Info("using disk cache",
			zap.String("dir", disk.Dir()),
			zap.Duration("ttl", cfg.CacheTTL))

		if cfg.PruneInterval > 0 {
			scheduler = gocron.NewScheduler(time.UTC)
			_, err := scheduler.Every(cfg.PruneInterval).Do(func() {
				removed, err := disk.Prune()
				if err != nil {
					logger.Warn("cache prune failed", zap.Error(err))
					return
				}
				if removed > 0 {
					observability.CachePrunedFilesTotal.Add(float64(removed))
					logger.Info("pruned cache files", zap.Int("removed", removed))
				}
			})
			if err != nil {
				logger.Fatal("failed to schedule cache prune job", zap.Error(err))
			}
			scheduler.StartAsync()
		}
	}

	hist, err := history.New(cfg.HistoryDBPath, cfg.HistoryLimit)
	if err != nil {
		logger.Fatal("failed to open search history", zap.Error(err))
	}

	svc := service.NewForecastService(api, store, logger)
	handler := internalhttp.NewHandler(svc, hist, logger, cachePing)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	router := mux.NewRouter()
	router.Use(internalhttp.CorrelationIDMiddleware(logger))
	router.Use(internalhttp.MetricsMiddleware)

	router.HandleFunc("/health", handler.GetHealth).Methods(nethttp.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(nethttp.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(internalhttp.RateLimitMiddleware(limiter))
	apiRouter.Use(internalhttp.TimeoutMiddleware(cfg.RequestTimeout))
	apiRouter.HandleFunc("/geocode", handler.GetGeocode).Methods(nethttp.MethodGet)
	apiRouter.HandleFunc("/forecast", handler.GetForecast).Methods(nethttp.MethodGet)
	apiRouter.HandleFunc("/air", handler.GetAirQuality).Methods(nethttp.MethodGet)
	apiRouter.HandleFunc("/history", handler.GetHistory).Methods(nethttp.MethodGet)
	apiRouter.HandleFunc("/history", handler.PostHistory).Methods(nethttp.MethodPost)

	srv := &nethttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	if memcached != nil {
		if err := memcached.Close(); err != nil {
			logger.Warn("memcached close failed", zap.Error(err))
		}
	}
	if err := hist.Close(); err != nil {
		logger.Warn("history close failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
