package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/jaennil/guide_helper/backend/offline/pkg/metrics"
	"github.com/jaennil/guide_helper/backend/offline/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnexpectedStatus = errors.New("upstream returned unexpected status")

// StatusError carries the upstream HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

type Config struct {
	UserAgent string
	Referer   string
	Timeout   time.Duration
}

type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	referer    string
	logger     logger.Logger
}

func NewHTTPFetcher(cfg Config, l logger.Logger) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: cfg.UserAgent,
		referer:   cfg.Referer,
		logger:    l,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "upstream.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", locator)),
	)
	defer span.End()

	data, err := f.fetch(ctx, locator)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.size", len(data)))
	return data, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		f.logger.Error("failed to create request", "url", locator, "error", err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// tile servers such as OpenStreetMap require an identifying User-Agent
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		f.logger.Error("failed to fetch from upstream", "url", locator, "error", err)
		return nil, fmt.Errorf("failed to fetch resource from upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("status").Inc()
		f.logger.Warn("upstream returned non-200", "url", locator, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		f.logger.Error("failed to read resource data", "url", locator, "error", err)
		return nil, fmt.Errorf("failed to read resource data: %w", err)
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	f.logger.Debug("fetched resource from upstream", "url", locator, "size", len(data), "duration", time.Since(start))

	return data, nil
}
