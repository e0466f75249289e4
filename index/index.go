// Package index maintains the category symlink index: for every category and
// canonical name, <root>/<category>/<name>/<gallery> links back to the
// gallery directory under _data/.
package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "hitodl/errors"
	"hitodl/library"
	"hitodl/models"
	"hitodl/parser"
)

// Translations is the read side of the translation cache.
type Translations interface {
	Lookup(c models.Category, raw string) (string, bool)
}

// Maintainer creates and refreshes category symlinks.
type Maintainer struct {
	root         string
	dataDirName  string
	translations Translations
	logger       *slog.Logger
}

// New returns a maintainer for the workspace at root whose galleries live in
// root/dataDirName.
func New(root, dataDirName string, translations Translations, logger *slog.Logger) *Maintainer {
	return &Maintainer{
		root:         root,
		dataDirName:  dataDirName,
		translations: translations,
		logger:       logger,
	}
}

// Names returns the canonical names a gallery is indexed under in a category.
// Tags only count when the cache knows them; they are never prompted for.
func (m *Maintainer) Names(c models.Category, meta *models.GalleryMetadata) []string {
	var names []string
	if c == models.CategoryTags {
		for _, raw := range meta.TagsRaw {
			if name, ok := m.translations.Lookup(c, raw); ok {
				names = append(names, name)
			}
		}
	} else {
		names = meta.Resolved(c)
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		dir := parser.SanitizeFilename(name)
		if name == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		out = append(out, dir)
	}
	return out
}

// Reindex links one gallery into every category it belongs to. Existing
// links with the same path are replaced, so running it again is harmless.
// All links are attempted; failures are returned joined.
func (m *Maintainer) Reindex(galleryDir string, meta *models.GalleryMetadata) error {
	target := filepath.Join("..", "..", m.dataDirName, galleryDir)

	var errs []error
	linked := 0
	for _, c := range models.Categories {
		for _, name := range m.Names(c, meta) {
			if err := m.link(filepath.Join(m.root, string(c), name), galleryDir, target); err != nil {
				errs = append(errs, fmt.Errorf("link %s/%s: %w", c, name, err))
				continue
			}
			linked++
		}
	}

	m.logger.Debug("Reindexed gallery", "dir", galleryDir, "links", linked, "failed", len(errs))
	return apperrors.Join(errs...)
}

// link makes dir/galleryDir a symlink to target.
func (m *Maintainer) link(dir, galleryDir, target string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, galleryDir)
	if info, err := os.Lstat(path); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			if current, err := os.Readlink(path); err == nil && current == target {
				return nil
			}
		} else if info.IsDir() {
			return fmt.Errorf("%s is a directory, not a link", path)
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		m.logger.Debug("Replacing stale link", "path", path)
	} else if !os.IsNotExist(err) {
		return err
	}

	return os.Symlink(target, path)
}

// ReindexAll rebuilds the links of every gallery under the data directory.
// Galleries without readable metadata are skipped with a warning.
func (m *Maintainer) ReindexAll() error {
	lib := library.New(filepath.Join(m.root, m.dataDirName), nil, m.logger)

	galleries, err := lib.Galleries()
	if err != nil {
		return fmt.Errorf("list galleries: %w", err)
	}

	var errs []error
	indexed := 0
	for _, dir := range galleries {
		meta, err := library.ReadMetadata(lib.Path(dir))
		if err != nil {
			m.logger.Warn("Skipping gallery without metadata", "dir", dir, "error", err)
			continue
		}
		if err := m.Reindex(dir, meta); err != nil {
			errs = append(errs, err)
			continue
		}
		indexed++
	}

	m.logger.Info("Updated links", "galleries", indexed, "failed", len(errs))
	return apperrors.Join(errs...)
}
