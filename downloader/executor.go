package downloader

import (
	"context"
	"log/slog"
	"time"
)

// RequestExecutor decides how to fetch a page: plain HTTP, or a headless
// browser when the page needs its scripts to run.
type RequestExecutor struct {
	httpClient *HTTPClient
	useBrowser bool
	timeout    time.Duration
	logger     *slog.Logger
}

// NewRequestExecutor creates a new request executor
func NewRequestExecutor(httpClient *HTTPClient, useBrowser bool, timeout time.Duration, logger *slog.Logger) *RequestExecutor {
	return &RequestExecutor{
		httpClient: httpClient,
		useBrowser: useBrowser,
		timeout:    timeout,
		logger:     logger,
	}
}

// FetchHTML fetches a page. In browser mode the page is rendered and
// waitSelector (if any) must become visible.
func (e *RequestExecutor) FetchHTML(ctx context.Context, targetURL string, headers map[string]string, waitSelector string) (string, error) {
	e.logger.Debug("Fetching page", "url", targetURL, "browser", e.useBrowser)

	if e.useBrowser {
		html, err := FetchHTML(ctx, targetURL, headers, waitSelector, e.timeout, e.logger)
		if err != nil {
			return "", err
		}
		e.logger.Debug("✓ Browser fetch successful", "url", targetURL)
		return html, nil
	}

	html, err := e.httpClient.FetchHTML(ctx, targetURL, headers)
	if err != nil {
		return "", err
	}
	e.logger.Debug("✓ HTTP fetch successful", "url", targetURL)
	return html, nil
}

// GetHTTPClient returns the underlying HTTP client
func (e *RequestExecutor) GetHTTPClient() *HTTPClient {
	return e.httpClient
}
