package downloader

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Body markers of an anti-bot interstitial, with what each one means.
var challengeMarkers = []struct {
	marker, reason string
}{
	{"cf-browser-verification", "JS browser verification challenge"},
	{"challenge-form", "challenge form"},
	{"/cdn-cgi/challenge-platform/", "challenge JS"},
	{"cf-chl-", "challenge token"},
}

var metaRefresh = regexp.MustCompile(`(?i)<meta[^>]+http-equiv=["']?refresh`)

// ChallengeError reports a response that is an anti-bot challenge page
// rather than the requested document. It unwraps to the StatusError.
type ChallengeError struct {
	StatusError
	Indicators []string
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("%s returned an anti-bot challenge (status %d: %s); try --browser",
		e.URL, e.StatusCode, strings.Join(e.Indicators, ", "))
}

func (e *ChallengeError) Unwrap() error {
	return &e.StatusError
}

// DetectChallenge inspects a failed response and reports whether it is a
// challenge page. Only 403, 429 and 503 responses are considered.
func DetectChallenge(statusCode int, body []byte) ([]string, bool) {
	switch statusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
	default:
		return nil, false
	}

	lower := bytes.ToLower(body)
	var indicators []string
	for _, m := range challengeMarkers {
		if bytes.Contains(lower, []byte(m.marker)) {
			indicators = append(indicators, m.reason)
		}
	}
	if len(indicators) > 0 && metaRefresh.Match(body) {
		indicators = append(indicators, "meta refresh")
	}

	return indicators, len(indicators) > 0
}

// statusError builds the error for a non-200 response, recognising
// challenge pages.
func statusError(url string, statusCode int, body []byte) error {
	if indicators, ok := DetectChallenge(statusCode, body); ok {
		return &ChallengeError{
			StatusError: StatusError{URL: url, StatusCode: statusCode},
			Indicators:  indicators,
		}
	}
	return &StatusError{URL: url, StatusCode: statusCode}
}
