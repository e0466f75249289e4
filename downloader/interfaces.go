package downloader

import (
	"hitodl/models"
)

// SitePlugin defines the interface that every gallery site must implement.
// Sites provide ONLY addressing and parsing logic - the downloader handles ALL execution.
type SitePlugin interface {
	// GetSiteName returns the site identifier stored as source.website (e.g. "hitomi")
	GetSiteName() string

	// GetDomain returns the site domain used for registry lookup (e.g. "hitomi.la")
	GetDomain() string

	// ParseGalleryURL validates a gallery page URL and extracts the gallery id.
	// The returned URL is the normalised (percent-decoded) form that is fetched
	// and persisted.
	ParseGalleryURL(rawURL string) (id int, pageURL string, err error)

	// ManifestURL returns the endpoint serving the file manifest of a gallery
	ManifestURL(id int) string

	// ParseManifest decodes a manifest response body
	ParseManifest(body []byte) (*models.Manifest, error)

	// PageReadySelector names the element that must be visible before a
	// browser-rendered gallery page is read
	PageReadySelector() string

	// ParsePage extracts the raw attribute lists from a gallery page
	ParsePage(html string) (*models.PageInfo, error)

	// ResolveFile picks the format of a file and fills in its download URL and name
	ResolveFile(id int, file *models.FileEntry, hint models.Format) error

	// DownloadHeaders returns the request headers the content hosts expect
	DownloadHeaders(id int) map[string]string
}

// NameResolver turns raw scraped names into canonical names.
// Implementations may block on operator input.
type NameResolver interface {
	ResolveAll(c models.Category, raws []string) ([]string, error)
}

// Prompter asks the operator a question.
type Prompter interface {
	Ask(question string) (string, error)
}
