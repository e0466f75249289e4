package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	apperrors "hitodl/errors"

	"golang.org/x/net/publicsuffix"
)

// DefaultUserAgent is sent with every request unless a site overrides it.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:87.0) Gecko/20100101 Firefox/87.0"

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

// StatusError reports a response with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// ClientOptions configures an HTTPClient.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// Transport replaces the default transport; tests use it to redirect requests.
	Transport http.RoundTripper
}

// HTTPClient is the plain HTTP client shared by page fetches and file downloads.
// It keeps cookies across requests and is safe for concurrent use.
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewHTTPClient creates a new HTTP client with a cookie jar
func NewHTTPClient(opts ClientOptions, logger *slog.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		userAgent: opts.UserAgent,
		logger:    logger,
	}, nil
}

// FetchHTML fetches a page and returns its decompressed body.
// Any status other than 200 is a fetch error.
func (c *HTTPClient) FetchHTML(ctx context.Context, targetURL string, headers map[string]string) (string, error) {
	req, err := c.newRequest(ctx, targetURL, headers)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.CodeFetch, "request %s", targetURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if decompressed, _, err := DecompressResponseBody(body, resp.Header.Get("Content-Encoding")); err == nil {
			body = decompressed
		}
		return "", apperrors.Wrapf(statusError(targetURL, resp.StatusCode, body), apperrors.CodeFetch, "fetch page")
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.CodeFetch, "read %s", targetURL)
	}

	decompressed, wasCompressed, err := DecompressResponseBody(bodyBytes, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.CodeFetch, "decompress %s", targetURL)
	}
	if wasCompressed {
		c.logger.Debug("Decompressed response", "url", targetURL, "from", len(bodyBytes), "to", len(decompressed))
	}

	return string(decompressed), nil
}

// Open starts a download and returns the response body for a 200 response.
// The caller must close the body.
func (c *HTTPClient) Open(ctx context.Context, targetURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, targetURL, headers)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, statusError(targetURL, resp.StatusCode, body)
	}

	return resp.Body, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, targetURL string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
