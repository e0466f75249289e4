package downloader

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	apperrors "hitodl/errors"

	"github.com/gocolly/colly"
)

// APIClient fetches JSON endpoints through a colly collector
type APIClient struct {
	collector *colly.Collector
	logger    *slog.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(timeout time.Duration, transport http.RoundTripper, logger *slog.Logger) *APIClient {
	collector := colly.NewCollector(
		colly.UserAgent(DefaultUserAgent),
		colly.AllowURLRevisit(),
	)

	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	if transport != nil {
		collector.WithTransport(transport)
	}

	return &APIClient{
		collector: collector,
		logger:    logger,
	}
}

// FetchRaw makes an API request and returns the raw response body.
// Any status other than 200 is a fetch error.
func (c *APIClient) FetchRaw(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var responseData, errorBody []byte
	var statusCode int
	var fetchErr error

	// Clone keeps the configuration but not the callbacks of earlier calls
	collector := c.collector.Clone()

	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		responseData = r.Body

		decompressed, wasCompressed, err := DecompressResponseBody(r.Body, r.Headers.Get("Content-Encoding"))
		if err != nil {
			fetchErr = apperrors.Wrapf(err, apperrors.CodeFetch, "decompress %s", url)
			return
		}
		if wasCompressed {
			c.logger.Debug("Decompressed API response", "url", url, "from", len(r.Body), "to", len(decompressed))
			responseData = decompressed
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			statusCode = r.StatusCode
			errorBody = r.Body
		}
		fetchErr = apperrors.Wrapf(err, apperrors.CodeFetch, "request %s", url)
	})

	visitErr := collector.Visit(url)
	collector.Wait()

	if statusCode != 0 && statusCode != http.StatusOK {
		return nil, apperrors.Wrapf(statusError(url, statusCode, errorBody), apperrors.CodeFetch, "fetch manifest")
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, apperrors.Wrapf(visitErr, apperrors.CodeFetch, "failed to visit %s", url)
	}

	c.logger.Debug("Fetched API response", "url", url, "bytes", len(responseData))
	return responseData, nil
}
