package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

// DefaultUserAgent is sent on every PDF download; some publishers refuse
// requests that do not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultMaxDownloadBytes caps a single PDF download.
const DefaultMaxDownloadBytes = 256 << 20

// Fetcher reads PDF bytes from disk or over HTTP.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	logger     *zap.Logger
}

type FetcherOption func(*Fetcher)

// WithMaxDownloadBytes replaces DefaultMaxDownloadBytes.
func WithMaxDownloadBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

func NewFetcher(httpClient *http.Client, logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: httpClient,
		userAgent:  DefaultUserAgent,
		maxBytes:   DefaultMaxDownloadBytes,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ReadFile returns the whole content of the file at path.
func (f *Fetcher) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Download GETs url and returns the body. Any non-2xx status is an error,
// as is a body larger than the configured limit.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("HTTP request failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("server returned status %d for url %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("response for url %s exceeds %d bytes", url, f.maxBytes)
	}

	f.logger.Debug("download completed", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}

// NewHttpClient builds the shared client. An empty proxyUrl means the
// environment proxy settings apply.
func NewHttpClient(proxyUrl string, timeout time.Duration) (*http.Client, error) {
	proxy := http.ProxyFromEnvironment
	if proxyUrl != "" {
		u, err := url.Parse(proxyUrl)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		proxy = http.ProxyURL(u)
	}

	transport := &http.Transport{
		Proxy:                 proxy,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 120 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
