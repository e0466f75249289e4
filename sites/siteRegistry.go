package sites

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"hitodl/downloader"
	apperrors "hitodl/errors"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]func() downloader.SitePlugin{}
)

// init() is called automatically when the package is imported
// This registers every supported site by domain
func init() {
	Register("hitomi.la", func() downloader.SitePlugin { return NewHitomiSite() })

	// Add new sites here in the future:
	// Register("example.org", func() downloader.SitePlugin { return NewExampleSite() })
}

// Register makes a site available to Lookup. Registering a domain twice
// replaces the earlier plugin.
func Register(domain string, factory func() downloader.SitePlugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(domain)] = factory
}

// Domains lists the registered domains in sorted order.
func Domains() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	domains := make([]string, 0, len(registry))
	for d := range registry {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Lookup returns a fresh plugin for the site serving rawURL.
// Subdomains of a registered domain match it.
func Lookup(rawURL string) (downloader.SitePlugin, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return nil, apperrors.InvalidURLf("not a URL: %q", rawURL)
	}
	host := strings.ToLower(u.Hostname())

	registryMu.RLock()
	defer registryMu.RUnlock()

	for domain, factory := range registry {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return factory(), nil
		}
	}
	return nil, apperrors.InvalidURLf("unsupported site %s", host)
}
