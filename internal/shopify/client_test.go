package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Client Test Suite
// =============================================================================
// Retry and error shaping are exercised against a scripted upstream so the
// attempt count and the backoff schedule can be asserted exactly.

type ClientSuite struct {
	suite.Suite
	server    *httptest.Server
	mu        sync.Mutex
	responses []scripted
	requests  []*http.Request
	bodies    []string
	delays    []time.Duration
}

type scripted struct {
	status int
	body   string
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	if s.server != nil {
		s.server.Close()
	}
	s.responses = nil
	s.requests = nil
	s.bodies = nil
	s.delays = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(context.Background()))
		s.bodies = append(s.bodies, string(raw))
		next := scripted{status: http.StatusOK, body: `{}`}
		if len(s.responses) > 0 {
			next = s.responses[0]
			s.responses = s.responses[1:]
		}
		s.mu.Unlock()
		w.WriteHeader(next.status)
		_, _ = w.Write([]byte(next.body))
	}))
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) script(r ...scripted) {
	s.responses = append(s.responses, r...)
}

func (s *ClientSuite) client(cfg Config) *Client {
	cfg.AccessToken = "shpat_token"
	return NewClient(cfg,
		WithBaseURL(s.server.URL+"/admin/api/2024-10"),
		WithSleeper(func(_ context.Context, d time.Duration) error {
			s.delays = append(s.delays, d)
			return nil
		}),
	)
}

// =============================================================================
// Retry Boundary
// =============================================================================

func (s *ClientSuite) TestRetryBoundary() {
	ctx := context.Background()

	s.Run("429 is retried and succeeds on the second attempt", func() {
		s.SetupTest()
		s.script(scripted{429, `{"errors":"Throttled"}`}, scripted{200, `{"ok":true}`})

		resp, err := s.client(Config{}).Do(ctx, http.MethodGet, "/customers/1.json")
		s.Require().NoError(err)
		s.Equal(200, resp.StatusCode)
		s.JSONEq(`{"ok":true}`, string(resp.Body))
		s.Len(s.requests, 2)
		s.Equal([]time.Duration{400 * time.Millisecond}, s.delays)
	})

	s.Run("persistent 503 exhausts the budget with linear backoff", func() {
		s.SetupTest()
		s.script(scripted{503, `down`}, scripted{503, `down`}, scripted{503, `down`})

		_, err := s.client(Config{BaseDelay: 100 * time.Millisecond, ExtraAttempts: 2}).
			Do(ctx, http.MethodGet, "/customers/1.json")
		rce, ok := AsRemoteCallError(err)
		s.Require().True(ok)
		s.Equal(503, rce.StatusCode)
		s.Equal(3, rce.Attempts)
		s.Equal("down", rce.Snippet)
		s.Len(s.requests, 3)
		s.Equal([]time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, s.delays)
	})

	s.Run("404 and 422 are not retried and never sleep", func() {
		for _, status := range []int{404, 422} {
			s.SetupTest()
			s.script(scripted{status, `{"errors":"nope"}`})

			_, err := s.client(Config{}).Do(ctx, http.MethodGet, "/customers/1.json")
			rce, ok := AsRemoteCallError(err)
			s.Require().True(ok)
			s.Equal(status, rce.StatusCode)
			s.Equal(1, rce.Attempts)
			s.Len(s.requests, 1)
			s.Empty(s.delays)
		}
	})

	s.Run("negative budget disables retries", func() {
		s.SetupTest()
		s.script(scripted{500, ``}, scripted{200, `{}`})

		_, err := s.client(Config{ExtraAttempts: -1}).Do(ctx, http.MethodGet, "/x.json")
		s.Error(err)
		s.Len(s.requests, 1)
	})

	s.Run("per-call budget overrides the client default", func() {
		s.SetupTest()
		s.script(scripted{500, ``}, scripted{500, ``}, scripted{500, ``}, scripted{200, `{}`})

		_, err := s.client(Config{}).Do(ctx, http.MethodGet, "/x.json", WithExtraAttempts(3))
		s.NoError(err)
		s.Len(s.requests, 4)
	})
}

func (s *ClientSuite) TestTransportErrorsAreRetried() {
	var calls int
	c := NewClient(Config{AccessToken: "t", ExtraAttempts: 1},
		WithBaseURL("http://example.invalid/admin/api/2024-10"),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, io.ErrUnexpectedEOF
		})}),
		WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)

	_, err := c.Do(context.Background(), http.MethodGet, "/x.json")
	rce, ok := AsRemoteCallError(err)
	s.Require().True(ok)
	s.Zero(rce.StatusCode)
	s.True(rce.Transient())
	s.ErrorIs(err, io.ErrUnexpectedEOF)
	s.Equal(2, calls)
}

func (s *ClientSuite) TestCancelledContextStopsRetrying() {
	s.script(scripted{503, ``}, scripted{200, `{}`})
	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(Config{AccessToken: "t", ExtraAttempts: 3},
		WithBaseURL(s.server.URL),
		WithSleeper(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)

	_, err := c.Do(ctx, http.MethodGet, "/x.json")
	s.ErrorIs(err, context.Canceled)
	s.Len(s.requests, 1)
}

// =============================================================================
// Request Shaping
// =============================================================================

func (s *ClientSuite) TestRequestShaping() {
	ctx := context.Background()

	s.Run("query skips nil values and renders scalars", func() {
		s.SetupTest()
		var missing *string
		limit := 5
		_, err := s.client(Config{}).Do(ctx, http.MethodGet, "customers/search.json", WithQuery(map[string]any{
			"query":   `email:"a@b.com"`,
			"limit":   &limit,
			"since":   missing,
			"nothing": nil,
			"flag":    true,
		}))
		s.Require().NoError(err)
		q := s.requests[0].URL.Query()
		s.Equal("/admin/api/2024-10/customers/search.json", s.requests[0].URL.Path)
		s.Equal(`email:"a@b.com"`, q.Get("query"))
		s.Equal("5", q.Get("limit"))
		s.Equal("true", q.Get("flag"))
		s.False(q.Has("since"))
		s.False(q.Has("nothing"))
	})

	s.Run("structured bodies are JSON encoded with a content type", func() {
		s.SetupTest()
		_, err := s.client(Config{}).Do(ctx, http.MethodPost, "/customers.json",
			WithBody(map[string]any{"customer": map[string]string{"email": "a@b.com"}}))
		s.Require().NoError(err)
		s.JSONEq(`{"customer":{"email":"a@b.com"}}`, s.bodies[0])
		s.Equal("application/json", s.requests[0].Header.Get("Content-Type"))
		s.Equal("shpat_token", s.requests[0].Header.Get("X-Shopify-Access-Token"))
		s.Equal("application/json", s.requests[0].Header.Get("Accept"))
	})

	s.Run("string bodies are sent verbatim", func() {
		s.SetupTest()
		_, err := s.client(Config{}).Do(ctx, http.MethodPut, "/x.json", WithBody(`{"raw":1}`))
		s.Require().NoError(err)
		s.Equal(`{"raw":1}`, s.bodies[0])
	})

	s.Run("GET never carries a body or content type", func() {
		s.SetupTest()
		_, err := s.client(Config{}).Do(ctx, http.MethodGet, "/x.json", WithBody(map[string]int{"a": 1}))
		s.Require().NoError(err)
		s.Empty(s.bodies[0])
		s.Empty(s.requests[0].Header.Get("Content-Type"))
	})

	s.Run("caller headers take precedence", func() {
		s.SetupTest()
		_, err := s.client(Config{}).Do(ctx, http.MethodGet, "/x.json",
			WithHeader("Accept", "text/plain"),
			WithHeader("X-Shopify-Access-Token", "override"))
		s.Require().NoError(err)
		s.Equal("text/plain", s.requests[0].Header.Get("Accept"))
		s.Equal("override", s.requests[0].Header.Get("X-Shopify-Access-Token"))
	})
}

// =============================================================================
// Response Shaping
// =============================================================================

func (s *ClientSuite) TestResponseShaping() {
	ctx := context.Background()

	s.Run("non-JSON success yields a nil body", func() {
		s.SetupTest()
		s.script(scripted{200, `<html>ok</html>`})
		resp, err := s.client(Config{}).Do(ctx, http.MethodGet, "/x.json")
		s.Require().NoError(err)
		s.Nil(resp.Body)

		var v map[string]any
		s.NoError(resp.Decode(&v))
		s.Nil(v)
	})

	s.Run("empty success yields a nil body", func() {
		s.SetupTest()
		s.script(scripted{204, ``})
		resp, err := s.client(Config{}).Do(ctx, http.MethodDelete, "/x.json")
		s.Require().NoError(err)
		s.Equal(204, resp.StatusCode)
		s.Nil(resp.Body)
	})

	s.Run("error snippet is capped at 400 characters", func() {
		s.SetupTest()
		s.script(scripted{400, strings.Repeat("x", 1000)})
		_, err := s.client(Config{}).Do(ctx, http.MethodGet, "/x.json")
		rce, ok := AsRemoteCallError(err)
		s.Require().True(ok)
		s.Len(rce.Snippet, 400)
		s.Len(rce.Body, 1000)
		s.Contains(err.Error(), "400 Bad Request")
	})
}

// =============================================================================
// Validation Errors
// =============================================================================

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantTaken bool
		wantField string
	}{
		{name: "map of lists", status: 422, body: `{"errors":{"email":["has already been taken"]}}`, wantTaken: true, wantField: "email"},
		{name: "map of strings", status: 422, body: `{"errors":{"email":"has already been taken"}}`, wantTaken: true, wantField: "email"},
		{name: "other field", status: 422, body: `{"errors":{"phone":["is invalid"]}}`, wantField: "phone"},
		{name: "base string", status: 422, body: `{"errors":"Email has already been taken"}`, wantTaken: true, wantField: "base"},
		{name: "base list", status: 422, body: `{"errors":["Email has already been taken"]}`, wantTaken: true, wantField: "base"},
		{name: "base about something else", status: 422, body: `{"errors":"Phone has already been taken"}`, wantField: "base"},
		{name: "unparseable falls back to snippet", status: 422, body: `email has been taken`, wantTaken: true},
		{name: "wrong status", status: 400, body: `{"errors":{"email":["has already been taken"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &RemoteCallError{StatusCode: tt.status, Body: []byte(tt.body), Snippet: tt.body}
			if got := IsEmailTaken(err); got != tt.wantTaken {
				t.Fatalf("IsEmailTaken = %v, want %v", got, tt.wantTaken)
			}
			if tt.wantField != "" {
				ve := err.ValidationErrors()
				if _, ok := ve[tt.wantField]; !ok {
					t.Fatalf("expected field %q in %v", tt.wantField, ve)
				}
			}
		})
	}
}

func TestIsEmailTakenIgnoresOtherErrors(t *testing.T) {
	if IsEmailTaken(io.EOF) {
		t.Fatal("plain errors are never email-taken")
	}
	if IsEmailTaken(nil) {
		t.Fatal("nil is never email-taken")
	}
}

func TestBaseURL(t *testing.T) {
	for _, domain := range []string{"shop.example.com", "https://shop.example.com/", " http://shop.example.com "} {
		if got := BaseURL(domain, "2024-10"); got != "https://shop.example.com/admin/api/2024-10" {
			t.Fatalf("BaseURL(%q) = %q", domain, got)
		}
	}
}

func TestResponseDecode(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: json.RawMessage(`{"customer":{"id":7}}`)}
	var out customerResponse
	if err := resp.Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Customer == nil || out.Customer.ID != 7 {
		t.Fatalf("unexpected decode %+v", out)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
