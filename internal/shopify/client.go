// Package shopify talks to the remote customer-record store (the Shopify
// Admin REST API). Client is the only place outbound calls are retried;
// nothing above it re-implements backoff.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/slammedialab/vercel-siteid/internal/platform/metrics"
)

const (
	defaultBaseDelay     = 400 * time.Millisecond
	defaultExtraAttempts = 1
	maxResponseBytes     = 4 << 20
)

var tracer = otel.Tracer("github.com/slammedialab/vercel-siteid/internal/shopify")

// Config describes how to reach the store.
type Config struct {
	Domain      string
	AccessToken string
	APIVersion  string
	BaseDelay   time.Duration

	// ExtraAttempts is the retry budget after the first try. Zero selects the
	// default of one; a negative value disables retries.
	ExtraAttempts int
}

// Client executes Admin API calls with retry on 429/5xx and uniform error
// shaping.
type Client struct {
	baseURL       string
	token         string
	http          *http.Client
	baseDelay     time.Duration
	extraAttempts int
	logger        *slog.Logger
	metrics       *metrics.Metrics
	sleep         func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables call instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBaseURL points the client at an explicit versioned API root, such as a
// local fake of the Admin API.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithSleeper replaces the backoff wait. Tests use it to observe delays.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient builds a client for the configured store.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:       BaseURL(cfg.Domain, cfg.APIVersion),
		token:         cfg.AccessToken,
		http:          &http.Client{Timeout: 15 * time.Second},
		baseDelay:     cfg.BaseDelay,
		extraAttempts: cfg.ExtraAttempts,
		logger:        slog.New(slog.DiscardHandler),
		sleep:         sleepContext,
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}
	switch {
	case c.extraAttempts == 0:
		c.extraAttempts = defaultExtraAttempts
	case c.extraAttempts < 0:
		c.extraAttempts = 0
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL joins the store domain and API version into the versioned root.
func BaseURL(domain, version string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimRight(domain, "/")
	return "https://" + domain + "/admin/api/" + strings.Trim(strings.TrimSpace(version), "/")
}

// Response is a successful call. Body is nil when the payload was empty or
// not JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Decode unmarshals the body into v. A nil body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type call struct {
	query         map[string]any
	body          any
	headers       map[string]string
	extraAttempts *int
}

// CallOption customises one call.
type CallOption func(*call)

// WithQuery adds query parameters. Nil values are skipped; other scalars are
// rendered with fmt.Sprint.
func WithQuery(q map[string]any) CallOption {
	return func(c *call) {
		if c.query == nil {
			c.query = make(map[string]any, len(q))
		}
		for k, v := range q {
			c.query[k] = v
		}
	}
}

// WithBody sets the request body. Strings, byte slices and json.RawMessage
// are sent as-is; anything else is JSON encoded.
func WithBody(body any) CallOption {
	return func(c *call) {
		c.body = body
	}
}

// WithHeader sets a header that takes precedence over the defaults.
func WithHeader(key, value string) CallOption {
	return func(c *call) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithExtraAttempts overrides the client's retry budget for this call.
func WithExtraAttempts(n int) CallOption {
	return func(c *call) {
		if n < 0 {
			n = 0
		}
		c.extraAttempts = &n
	}
}

// Do executes method against path (relative to the versioned API root).
// It returns the parsed response on 2xx and a *RemoteCallError otherwise.
func (c *Client) Do(ctx context.Context, method, path string, opts ...CallOption) (*Response, error) {
	var cl call
	for _, opt := range opts {
		opt(&cl)
	}

	endpoint, err := c.endpoint(path, cl.query)
	if err != nil {
		return nil, err
	}
	payload, hasBody, err := encodeBody(method, cl.body)
	if err != nil {
		return nil, err
	}

	extra := c.extraAttempts
	if cl.extraAttempts != nil {
		extra = *cl.extraAttempts
	}
	total := 1 + extra

	ctx, span := tracer.Start(ctx, "shopify "+method)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("shopify.path", path),
	)

	start := time.Now()
	var lastErr *RemoteCallError
	for attempt := 1; attempt <= total; attempt++ {
		resp, callErr := c.attempt(ctx, method, endpoint, payload, hasBody, cl.headers)
		if callErr == nil {
			span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode), attribute.Int("shopify.attempts", attempt))
			c.metrics.ObserveRemoteCall(method, resp.StatusCode, time.Since(start))
			return resp, nil
		}
		callErr.Method = method
		callErr.Path = path
		callErr.Attempts = attempt
		lastErr = callErr

		if !callErr.Transient() || attempt == total || ctx.Err() != nil {
			break
		}

		delay := c.baseDelay * time.Duration(attempt)
		c.metrics.IncrementRetry(callErr.StatusCode)
		c.logger.WarnContext(ctx, "retrying store call",
			"method", method,
			"path", path,
			"status", callErr.StatusCode,
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
		)
		if err := c.sleep(ctx, delay); err != nil {
			lastErr.Err = err
			break
		}
	}

	c.metrics.ObserveRemoteCall(method, lastErr.StatusCode, time.Since(start))
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Status)
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, hasBody bool, headers map[string]string) (*Response, *RemoteCallError) {
	var body io.Reader
	if hasBody {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &RemoteCallError{Status: "request build failed", Err: err}
	}

	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteCallError{Status: "transport error", Err: err, transport: true}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &RemoteCallError{StatusCode: res.StatusCode, Status: res.Status, Err: fmt.Errorf("read body: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &RemoteCallError{
			StatusCode: res.StatusCode,
			Status:     statusText(res),
			Snippet:    truncate(string(raw), snippetLimit),
			Body:       raw,
		}
	}

	out := &Response{StatusCode: res.StatusCode}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && json.Valid(trimmed) {
		out.Body = json.RawMessage(trimmed)
	}
	return out, nil
}

func (c *Client) endpoint(path string, query map[string]any) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("build endpoint for %s: %w", path, err)
	}
	if len(query) > 0 {
		values := u.Query()
		for k, v := range query {
			if isNil(v) {
				continue
			}
			values.Set(k, fmt.Sprint(deref(v)))
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

func encodeBody(method string, body any) ([]byte, bool, error) {
	if body == nil || method == http.MethodGet || method == http.MethodHead {
		return nil, false, nil
	}
	switch b := body.(type) {
	case string:
		return []byte(b), true, nil
	case []byte:
		return b, true, nil
	case json.RawMessage:
		return b, true, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, false, fmt.Errorf("encode request body: %w", err)
	}
	return encoded, true, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface()
	}
	return v
}

func statusText(res *http.Response) string {
	if text := http.StatusText(res.StatusCode); text != "" {
		return text
	}
	return res.Status
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
