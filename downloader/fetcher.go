package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "hitodl/errors"
	"hitodl/models"
	"hitodl/parser"
	"hitodl/validation"
)

// Fetcher retrieves and normalises everything known about a gallery before
// any file is downloaded. It runs on the calling goroutine and may block on
// operator prompts.
type Fetcher struct {
	site     SitePlugin
	api      *APIClient
	executor *RequestExecutor
	names    NameResolver
	prompter Prompter
	format   models.Format
	logger   *slog.Logger
}

// FetcherConfig bundles the collaborators of a Fetcher.
type FetcherConfig struct {
	Site     SitePlugin
	API      *APIClient
	Executor *RequestExecutor
	Names    NameResolver
	Prompter Prompter
	Format   models.Format
	Logger   *slog.Logger
}

// NewFetcher creates a metadata fetcher
func NewFetcher(cfg FetcherConfig) *Fetcher {
	format := cfg.Format
	if format == "" {
		format = models.FormatAuto
	}
	return &Fetcher{
		site:     cfg.Site,
		api:      cfg.API,
		executor: cfg.Executor,
		names:    cfg.Names,
		prompter: cfg.Prompter,
		format:   format,
		logger:   cfg.Logger,
	}
}

// FetchGallery resolves the gallery behind rawURL: its file manifest with
// download URLs and its metadata with every name translated.
func (f *Fetcher) FetchGallery(ctx context.Context, rawURL string) (*models.Gallery, error) {
	id, pageURL, err := f.site.ParseGalleryURL(rawURL)
	if err != nil {
		return nil, err
	}

	log := f.logger.With("gallery", id)
	log.Info("Getting metadata...")

	body, err := f.api.FetchRaw(ctx, f.site.ManifestURL(id))
	if err != nil {
		return nil, err
	}

	manifest, err := f.site.ParseManifest(body)
	if err != nil {
		return nil, err
	}

	files := *manifest.Files
	for i := range files {
		if err := f.site.ResolveFile(id, &files[i], f.format); err != nil {
			return nil, fmt.Errorf("resolve file %d: %w", i, err)
		}
	}
	log.Debug("Resolved file manifest", "files", len(files))

	html, err := f.executor.FetchHTML(ctx, pageURL, nil, f.site.PageReadySelector())
	if err != nil {
		return nil, err
	}

	page, err := f.site.ParsePage(html)
	if err != nil {
		return nil, err
	}

	meta, err := f.buildMetadata(id, pageURL, page)
	if err != nil {
		return nil, err
	}

	title := manifest.PreferredTitle()
	if title == "" {
		if title, err = f.prompter.Ask("Title?\n"); err != nil {
			return nil, fmt.Errorf("ask for title: %w", err)
		}
	}
	if meta.Title, err = f.confirmTitle(title); err != nil {
		return nil, err
	}

	if err := validation.Metadata(meta); err != nil {
		return nil, err
	}

	return &models.Gallery{
		ID:       id,
		Metadata: *meta,
		Files:    files,
	}, nil
}

// buildMetadata turns the raw page attributes into gallery metadata,
// translating names of every category except tags.
func (f *Fetcher) buildMetadata(id int, pageURL string, page *models.PageInfo) (*models.GalleryMetadata, error) {
	meta := &models.GalleryMetadata{
		Source: models.Source{
			Website: f.site.GetSiteName(),
			ID:      strconv.Itoa(id),
			URL:     pageURL,
		},
	}

	if len(page.Type) == 0 || len(page.Language) == 0 {
		return nil, apperrors.Structuref("gallery page has no type or language")
	}
	meta.Original = strings.TrimSpace(page.Type[0]) == "original"
	meta.Language = strings.TrimSpace(page.Language[0])

	raw := map[models.Category][]string{
		models.CategoryAuthors:    page.Authors,
		models.CategoryGroups:     page.Groups,
		models.CategorySeries:     page.Series,
		models.CategoryCharacters: page.Characters,
	}

	for _, c := range models.Categories {
		if c == models.CategoryTags {
			continue
		}
		names := nonNil(raw[c])
		resolved, err := f.names.ResolveAll(c, names)
		if err != nil {
			return nil, err
		}
		meta.SetNames(c, names, resolved)
	}

	// Tags are translated at index time, using known translations only
	tags := make([]string, 0, len(page.Tags))
	for _, tag := range page.Tags {
		if t := parser.NormalizeTag(tag); t != "" {
			tags = append(tags, t)
		}
	}
	meta.SetNames(models.CategoryTags, tags, nil)

	return meta, nil
}

// confirmTitle shows the title to the operator; an empty answer keeps it.
func (f *Fetcher) confirmTitle(title string) (string, error) {
	answer, err := f.prompter.Ask(title + "\nIs the title correct? (Input the correct title if it's not correct)\n")
	if err != nil {
		return "", fmt.Errorf("confirm title: %w", err)
	}
	if answer != "" {
		return answer, nil
	}
	return title, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
