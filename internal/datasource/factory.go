package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// HTTPSource downloads a dataset over HTTP(S).
type HTTPSource struct {
	url    string
	client *RateLimitedHTTPClient
}

// NewHTTPSource creates a source backed by the retrying client.
func NewHTTPSource(url string, client *RateLimitedHTTPClient) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

func (s *HTTPSource) Name() string { return s.url }

// Open issues the GET and returns the body on a 2xx response.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: status %d %s", s.url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}

// FileSource reads a dataset from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a local file source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return s.path }

func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	return f, nil
}

// NewSource picks an implementation from the location scheme.
func NewSource(location string, client *RateLimitedHTTPClient) (Source, error) {
	switch {
	case location == "":
		return nil, ErrSourceNotConfigured
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		if client == nil {
			client = NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
		}
		return NewHTTPSource(location, client), nil
	default:
		return NewFileSource(strings.TrimPrefix(location, "file://")), nil
	}
}
