package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	v1 "github.com/jaennil/guide_helper/backend/offline/internal/infrastructure/http/v1"
	"github.com/jaennil/guide_helper/backend/offline/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/guide_helper/backend/offline/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/offline/internal/repository/upstream"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/internal/usecase"
	"github.com/jaennil/guide_helper/backend/offline/pkg/config"
	"github.com/jaennil/guide_helper/backend/offline/pkg/http_server"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/jaennil/guide_helper/backend/offline/pkg/metrics"
	"github.com/jaennil/guide_helper/backend/offline/pkg/telemetry"
)

// Init performs the process-wide setup every entry point needs before any
// resource is requested. It is safe to call more than once.
func Init(cfg *config.Config, l logger.Logger) (shutdown func(context.Context) error, err error) {
	metrics.Init()

	shutdown = func(context.Context) error { return nil }
	if !cfg.Telemetry.Enabled {
		return shutdown, nil
	}

	shutdown, err = telemetry.InitTracer(telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, l)
	if err != nil {
		return nil, err
	}

	return shutdown, nil
}

// NewResourceUseCase builds the cache and upstream collaborators from config.
// The returned closer releases the cache backend.
func NewResourceUseCase(cfg *config.Config, l logger.Logger) (*usecase.ResourceUseCase, io.Closer, error) {
	resourceCache, err := cache.NewCache(cfg.Cache, cfg.Redis, l)
	if err != nil {
		return nil, nil, err
	}

	fetcher := upstream.NewHTTPFetcher(upstream.Config{
		UserAgent: cfg.Upstream.UserAgent,
		Referer:   cfg.Upstream.Referer,
		Timeout:   cfg.Upstream.Timeout,
	}, l)

	uc := usecase.NewResourceUseCase(resourceCache, fetcher, l, usecase.Options{
		Expiry:         cfg.Offline.Expiry,
		TileCountLimit: cfg.Offline.TileCountLimit,
		SeedWorkers:    cfg.Offline.SeedWorkers,
	})

	return uc, closerFor(resourceCache), nil
}

func closerFor(c cache.ResourceCache) io.Closer {
	if closer, ok := c.(io.Closer); ok {
		return closer
	}
	return io.NopCloser(nil)
}

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger)
	defer l.Sync()

	l.Info("app config", "cfg", cfg)

	shutdownTelemetry, err := Init(cfg, l)
	if err != nil {
		l.Fatal("failed to initialize telemetry", "error", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			l.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	defaultTemplate, err := resource.ParseTemplate(cfg.Upstream.Template)
	if err != nil {
		l.Fatal("invalid upstream template", "template", cfg.Upstream.Template, "error", err)
	}

	resourceUseCase, cacheCloser, err := NewResourceUseCase(cfg, l)
	if err != nil {
		l.Fatal("failed to initialize resource cache", "type", cfg.Cache.Type, "error", err)
	}
	defer cacheCloser.Close()

	validate := validator.New()
	h := handler.NewHandler(validate, resourceUseCase, defaultTemplate)
	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := http_server.NewServer(logger.WithLogger(ctx, l), cfg.HTTP.Server, router)

	go func() {
		l.Info("starting http server...", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	l.Info("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	l.Info("shutting down http server...", "address", httpServer.Addr)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error("http server shutdown failed", "error", err)
	} else {
		l.Info("http server shutdown completed")
	}

	l.Info("application shutdown completed")
}
