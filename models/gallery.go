package models

// FileEntry is one page of a gallery as listed in the file manifest.
// Name and URL are rewritten once by the address resolver and then left alone.
type FileEntry struct {
	Hash    string `json:"hash"`    // content hash, drives the storage path
	Name    string `json:"name"`    // ordinal name, e.g. "01.jpg"; extension follows Format after resolution
	HasAVIF Flag   `json:"hasavif"` // alternate format A available
	HasWebP Flag   `json:"haswebp"` // alternate format B available
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`

	Format Format `json:"-"` // chosen format, set by the resolver
	URL    string `json:"-"` // resolved download URL, set by the resolver
}

// Manifest is the per-gallery JSON document served by the origin's ltn host.
// Files is a pointer so a missing "files" key can be told apart from an empty list.
type Manifest struct {
	ID            any          `json:"id"`
	Title         *string      `json:"title"`
	JapaneseTitle *string      `json:"japanese_title"`
	Language      *string      `json:"language"`
	Type          *string      `json:"type"`
	Files         *[]FileEntry `json:"files"`
}

// PreferredTitle returns the localized title, falling back to the plain one.
// Empty when neither is set.
func (m *Manifest) PreferredTitle() string {
	if m.JapaneseTitle != nil && *m.JapaneseTitle != "" {
		return *m.JapaneseTitle
	}
	if m.Title != nil && *m.Title != "" {
		return *m.Title
	}
	return ""
}

// PageInfo is what the gallery HTML page yields before any name resolution.
type PageInfo struct {
	Authors    []string
	Groups     []string
	Type       []string
	Language   []string
	Series     []string
	Characters []string
	Tags       []string
}

// Source identifies where a gallery was downloaded from.
type Source struct {
	Website string `yaml:"website"`
	ID      string `yaml:"id"`
	URL     string `yaml:"url"`
}

// GalleryMetadata is persisted as _info.yml inside the gallery directory.
// Every raw list is positionally aligned with its resolved list. Fields are
// kept in key order so files match the ones written by earlier versions.
type GalleryMetadata struct {
	Authors       []string `yaml:"authors"`
	AuthorsRaw    []string `yaml:"authors-raw"`
	Characters    []string `yaml:"characters"`
	CharactersRaw []string `yaml:"characters-raw"`
	Groups        []string `yaml:"groups"`
	GroupsRaw     []string `yaml:"groups-raw"`
	Language      string   `yaml:"language"`
	Original      bool     `yaml:"original"`
	Series        []string `yaml:"series"`
	SeriesRaw     []string `yaml:"series-raw"`
	Source        Source   `yaml:"source"`
	TagsRaw       []string `yaml:"tags-raw"`
	Title         string   `yaml:"title"`
}

// Raw returns the scraped names for a category.
func (m *GalleryMetadata) Raw(c Category) []string {
	switch c {
	case CategoryAuthors:
		return m.AuthorsRaw
	case CategoryGroups:
		return m.GroupsRaw
	case CategorySeries:
		return m.SeriesRaw
	case CategoryCharacters:
		return m.CharactersRaw
	case CategoryTags:
		return m.TagsRaw
	}
	return nil
}

// Resolved returns the canonical names for a category. Tags have no
// resolved list on disk; they are translated at index time.
func (m *GalleryMetadata) Resolved(c Category) []string {
	switch c {
	case CategoryAuthors:
		return m.Authors
	case CategoryGroups:
		return m.Groups
	case CategorySeries:
		return m.Series
	case CategoryCharacters:
		return m.Characters
	}
	return nil
}

// SetNames stores an aligned raw/resolved pair for a category.
func (m *GalleryMetadata) SetNames(c Category, raw, resolved []string) {
	switch c {
	case CategoryAuthors:
		m.AuthorsRaw, m.Authors = raw, resolved
	case CategoryGroups:
		m.GroupsRaw, m.Groups = raw, resolved
	case CategorySeries:
		m.SeriesRaw, m.Series = raw, resolved
	case CategoryCharacters:
		m.CharactersRaw, m.Characters = raw, resolved
	case CategoryTags:
		m.TagsRaw = raw
	}
}

// Gallery bundles everything the download engine needs for one gallery.
type Gallery struct {
	ID       int
	Metadata GalleryMetadata
	Files    []FileEntry
}
