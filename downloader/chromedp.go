package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	apperrors "hitodl/errors"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserSession manages a headless chromedp browser context
type BrowserSession struct {
	ctx     context.Context
	cancel  context.CancelFunc
	headers map[string]string
	timeout time.Duration
	logger  *slog.Logger

	// status of the last main document response
	status atomic.Int64
}

// NewBrowserSession starts a headless browser. headers are sent with every
// request the page makes.
func NewBrowserSession(ctx context.Context, headers map[string]string, timeout time.Duration, logger *slog.Logger) (*BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(DefaultUserAgent),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	session := &BrowserSession{
		ctx:     browserCtx,
		cancel:  func() { cancelBrowser(); cancelAlloc() },
		headers: headers,
		timeout: timeout,
		logger:  logger,
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			session.status.Store(e.Response.Status)
		}
	})

	return session, nil
}

// networkHeaders converts plain headers to the devtools representation.
func networkHeaders(headers map[string]string) network.Headers {
	out := make(network.Headers, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}

// Navigate navigates to a URL and waits for the selector, or the body when
// waitSelector is empty. A non-200 document response is a fetch error.
func (bs *BrowserSession) Navigate(url string, waitSelector string) error {
	ctx, cancel := context.WithTimeout(bs.ctx, bs.timeout)
	defer cancel()

	tasks := chromedp.Tasks{network.Enable()}
	if len(bs.headers) > 0 {
		tasks = append(tasks, network.SetExtraHTTPHeaders(networkHeaders(bs.headers)))
	}

	tasks = append(tasks, chromedp.Navigate(url))

	if waitSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	} else {
		tasks = append(tasks, chromedp.WaitReady("body"))
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeFetch, "browser navigation to %s", url)
	}

	if status := bs.status.Load(); status != 0 && status != 200 {
		return apperrors.Wrapf(&StatusError{URL: url, StatusCode: int(status)}, apperrors.CodeFetch, "fetch page")
	}

	bs.logger.Debug("Browser navigation successful", "url", url)
	return nil
}

// GetHTML returns the page HTML
func (bs *BrowserSession) GetHTML() (string, error) {
	ctx, cancel := context.WithTimeout(bs.ctx, 10*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html))
	return html, err
}

// Close closes the browser session
func (bs *BrowserSession) Close() {
	if bs.cancel != nil {
		bs.cancel()
	}
}

// FetchHTML renders a URL in a fresh browser session and returns the HTML
func FetchHTML(ctx context.Context, url string, headers map[string]string, waitSelector string, timeout time.Duration, logger *slog.Logger) (string, error) {
	session, err := NewBrowserSession(ctx, headers, timeout, logger)
	if err != nil {
		return "", fmt.Errorf("failed to create browser session: %w", err)
	}
	defer session.Close()

	if err := session.Navigate(url, waitSelector); err != nil {
		return "", err
	}

	html, err := session.GetHTML()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeFetch, "failed to get HTML")
	}

	return html, nil
}
