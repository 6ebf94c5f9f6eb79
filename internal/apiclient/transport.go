package apiclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dtroode/gophsocial/internal/logger"
)

// transport logs every round trip and feeds the request metrics.
type transport struct {
	next    http.RoundTripper
	logger  *logger.Logger
	metrics *Metrics
}

func newTransport(next http.RoundTripper, logger *logger.Logger, metrics *Metrics) *transport {
	if t, ok := next.(*transport); ok {
		next = t.next
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{next: next, logger: logger, metrics: metrics}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logger.Debug("API request started",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader))

	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.metrics.observe(req.Method, status, duration.Seconds())

	if err != nil {
		t.logger.Error("API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return nil, err
	}

	t.logger.Debug("API request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", duration.Milliseconds(),
		"status", resp.StatusCode)

	return resp, nil
}
