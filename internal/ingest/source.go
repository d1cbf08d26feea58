// Package ingest loads per-horse prediction records and groups them into races.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/config"
)

// Source opens the raw prediction export
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// NewSource picks a file or HTTP source based on the configured input path
func NewSource(cfg *config.Config, logger logrus.FieldLogger) Source {
	if cfg.IsRemoteInput() {
		return NewHTTPSource(cfg.Input.Path, HTTPSourceConfig{
			Timeout:    time.Duration(cfg.Input.TimeoutSeconds) * time.Second,
			MaxRetries: cfg.Input.RetryAttempts,
		}, logger)
	}
	return &FileSource{Path: cfg.Input.Path}
}

// FileSource reads predictions from local disk
type FileSource struct {
	Path string
}

// Open opens the file
func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", s.Path, err)
	}
	return f, nil
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.Path
}

// HTTPSourceConfig holds configuration for remote downloads
type HTTPSourceConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// HTTPSource downloads predictions over HTTP(S) with retries
type HTTPSource struct {
	url    string
	client *retryablehttp.Client
}

// NewHTTPSource creates a new retrying HTTP source
func NewHTTPSource(url string, cfg HTTPSourceConfig, logger logrus.FieldLogger) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = 100 * time.Millisecond
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 10 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = downloadRetryPolicy()
	retryClient.Logger = nil
	if logger != nil {
		retryClient.Logger = logger
	}

	return &HTTPSource{url: url, client: retryClient}
}

// Open issues the GET request and returns the response body
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: unexpected status %d", s.url, resp.StatusCode)
	}

	return resp.Body, nil
}

// Name returns the source URL
func (s *HTTPSource) Name() string {
	return s.url
}

// downloadRetryPolicy retries network errors, 429 and 5xx responses
func downloadRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}
}
