package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
	"github.com/yndnr/lingvo-go/internal/telemetry/metric"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 8 << 20

	headerRequestID = "X-Request-ID"
)

// Config configures an HTTPClient.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	TLS       *tls.Config
	UserAgent string
	Metrics   *metric.Registry
	Logger    logger.Logger
}

// HTTPClient provides HTTP communication with the translation API.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	metrics   *metric.Registry
	log       logger.Logger
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(cfg Config) *HTTPClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLS != nil {
		transport.TLSClientConfig = cfg.TLS
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "lingvo-cli/dev"
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	return &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout, Transport: transport},
		limiter:   limiter,
		userAgent: userAgent,
		metrics:   cfg.Metrics,
		log:       log.With("component", "api"),
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// call describes one API request.
type call struct {
	endpoint   string // metric and log label
	method     string
	path       string
	query      url.Values
	credential string
	body       any
}

func (c *HTTPClient) do(ctx context.Context, r call, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, r, out)

	outcome := metric.OutcomeOK
	if err != nil {
		outcome = string(domain.AsClientError(err).Kind)
	}
	c.metrics.ObserveRequest(r.endpoint, outcome, time.Since(start))
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, r call, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.ErrTransport.WithCause(fmt.Errorf("rate limit: %w", err))
		}
	}

	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return domain.ErrTransport.WithCause(fmt.Errorf("marshal body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return domain.ErrTransport.WithCause(fmt.Errorf("create request: %w", err))
	}

	requestID := ulid.Make().String()
	c.addHeaders(req, r, requestID)
	log := c.log.WithContext(logger.WithRequestID(ctx, requestID)).
		With("request_id", requestID, "endpoint", r.endpoint)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("api request failed", "method", r.method, "path", r.path, "error", err)
		return domain.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.ErrTransport.WithStatus(resp.StatusCode).WithCause(fmt.Errorf("read body: %w", err))
	}

	log.Debug("api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(r, resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return domain.ErrTransport.WithStatus(resp.StatusCode).WithCause(fmt.Errorf("parse %s response: %w", r.endpoint, err))
		}
	}
	return nil
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request, r call, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.credential != "" {
		req.Header.Set("Authorization", "Token "+r.credential)
	}
}

// statusError maps a non-2xx response to a ClientError. The decoded body is
// kept verbatim; a body that is not a JSON object is dropped.
func statusError(r call, status int, data []byte) error {
	var payload map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			payload = nil
		}
	}

	var base *domain.ClientError
	switch {
	case r.credential != "" && status == http.StatusUnauthorized:
		base = domain.ErrCredentialRejected
	case r.credential != "" && status == http.StatusForbidden:
		base = domain.ErrPermissionDenied
	case status >= http.StatusInternalServerError:
		base = domain.ErrServerFailure
	default:
		base = domain.ErrServerRejected
	}

	e := base.WithStatus(status)
	if payload != nil {
		e = e.WithPayload(payload)
	}
	return e
}
