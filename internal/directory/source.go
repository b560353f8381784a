package directory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxExportBytes = 16 << 20

// Source produces the raw tabular export.
type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// HTTPSource downloads a CSV export (for example a published spreadsheet).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns a source for url.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &SourceError{URL: s.URL, Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, &SourceError{URL: s.URL, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, &SourceError{URL: s.URL, StatusCode: res.StatusCode, Err: fmt.Errorf("%s", res.Status)}
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxExportBytes))
	if err != nil {
		return nil, &SourceError{URL: s.URL, Err: fmt.Errorf("read body: %w", err)}
	}
	return Parse(bytes.NewReader(raw))
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]Entry, error) {
	return f(ctx)
}
