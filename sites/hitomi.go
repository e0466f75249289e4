package sites

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"hitodl/downloader"
	apperrors "hitodl/errors"
	"hitodl/models"

	"github.com/PuerkitoBio/goquery"
)

// Number of attribute rows in the gallery-info table, in page order:
// groups, type, language, series, characters, tags.
const infoRows = 6

// Selector of the attribute table ParsePage reads.
const infoSelector = `div[class="gallery-info"]`

// HitomiSite implements the SitePlugin interface for hitomi.la.
// The bases are fields so the whole site can be pointed at a local server;
// build it with NewHitomiSiteAt so the patterns match them.
type HitomiSite struct {
	PageBase      string // gallery pages, e.g. "https://hitomi.la"
	ManifestBase  string // manifest host, e.g. "https://ltn.hitomi.la"
	ContentDomain string // image hosts live at <shard>.<ContentDomain>

	pagePattern *regexp.Regexp
	hostPattern *regexp.Regexp
}

// Ensure HitomiSite implements SitePlugin
var _ downloader.SitePlugin = (*HitomiSite)(nil)

// NewHitomiSite returns the plugin configured for the public site.
func NewHitomiSite() *HitomiSite {
	return NewHitomiSiteAt("https://hitomi.la", "https://ltn.hitomi.la", "hitomi.la")
}

// NewHitomiSiteAt returns the plugin for a site served from other bases.
func NewHitomiSiteAt(pageBase, manifestBase, contentDomain string) *HitomiSite {
	return &HitomiSite{
		PageBase:      pageBase,
		ManifestBase:  manifestBase,
		ContentDomain: contentDomain,
		pagePattern:   regexp.MustCompile(`^` + regexp.QuoteMeta(pageBase) + `/[a-z]+/(.+)-([^-]+)-(\d+)\.html`),
		hostPattern:   regexp.MustCompile(`//..?\.` + regexp.QuoteMeta(contentDomain) + `/`),
	}
}

// GetSiteName returns the site identifier
func (h *HitomiSite) GetSiteName() string {
	return "hitomi"
}

// GetDomain returns the site domain
func (h *HitomiSite) GetDomain() string {
	return "hitomi.la"
}

// ParseGalleryURL accepts https://hitomi.la/<kind>/<slug>-<language>-<id>.html,
// percent-encoded or not, and returns the id and the decoded URL.
func (h *HitomiSite) ParseGalleryURL(rawURL string) (int, string, error) {
	decoded, err := url.PathUnescape(strings.TrimSpace(rawURL))
	if err != nil {
		return 0, "", apperrors.InvalidURLf("cannot decode %q: %v", rawURL, err)
	}

	m := h.pagePattern.FindStringSubmatch(decoded)
	if m == nil {
		return 0, "", apperrors.InvalidURLf("not a gallery page: %s", rawURL)
	}

	id, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, "", apperrors.InvalidURLf("gallery id out of range: %s", m[3])
	}
	return id, decoded, nil
}

// PageReadySelector returns the element a rendered gallery page must show
// before it is parsed.
func (h *HitomiSite) PageReadySelector() string {
	return infoSelector
}

// ManifestURL returns the script that carries the file list of a gallery.
func (h *HitomiSite) ManifestURL(id int) string {
	return h.ManifestBase + "/galleries/" + strconv.Itoa(id) + ".js"
}

// ParseManifest decodes the manifest script. The body is a JavaScript
// assignment; the JSON object starts at the first "{".
func (h *HitomiSite) ParseManifest(body []byte) (*models.Manifest, error) {
	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, apperrors.Manifestf("manifest has no JSON object")
	}

	var manifest models.Manifest
	if err := json.Unmarshal(bytes.TrimSpace(body[start:]), &manifest); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeManifest, "cannot decode manifest")
	}
	if manifest.Files == nil {
		return nil, apperrors.Manifestf("manifest has no files")
	}
	return &manifest, nil
}

// ParsePage reads the authors from the title block and the attribute lists
// from the gallery-info table.
func (h *HitomiSite) ParsePage(html string) (*models.PageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStructure, "cannot parse gallery page")
	}

	info := &models.PageInfo{
		Authors: anchorTexts(doc.Find("h2 li > a")),
	}

	rows := doc.Find(infoSelector + " tr")
	if rows.Length() < infoRows {
		return nil, apperrors.Structuref("gallery-info table has %d rows, want %d", rows.Length(), infoRows)
	}

	targets := []*[]string{
		&info.Groups,
		&info.Type,
		&info.Language,
		&info.Series,
		&info.Characters,
		&info.Tags,
	}
	rows.Slice(0, infoRows).Each(func(i int, row *goquery.Selection) {
		*targets[i] = anchorTexts(row.Find("a"))
	})

	return info, nil
}

// DownloadHeaders returns the headers the content hosts check.
func (h *HitomiSite) DownloadHeaders(id int) map[string]string {
	return map[string]string{
		"Accept":          "image/avif,image/webp,*/*",
		"Accept-Language": "ja,en-US;q=0.7,en;q=0.3",
		"Referer":         h.PageBase + "/reader/" + strconv.Itoa(id) + ".html",
	}
}

func anchorTexts(sel *goquery.Selection) []string {
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, a *goquery.Selection) {
		if t := strings.TrimSpace(a.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	return texts
}
