package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitodl/library"
	"hitodl/logger"
	"hitodl/models"
)

type mapTranslations map[string]string

func (m mapTranslations) Lookup(c models.Category, raw string) (string, bool) {
	if c != models.CategoryTags {
		return "", false
	}
	v := m[raw]
	return v, v != ""
}

func testMetadata() *models.GalleryMetadata {
	return &models.GalleryMetadata{
		Title:         "夏",
		Language:      "japanese",
		Authors:       []string{"山田", ""},
		AuthorsRaw:    []string{"yamada", "unknown"},
		Groups:        []string{"サークル"},
		GroupsRaw:     []string{"circle"},
		Series:        []string{"オリジナル"},
		SeriesRaw:     []string{"original"},
		Characters:    []string{},
		CharactersRaw: []string{},
		TagsRaw:       []string{"full color", "unmapped"},
		Source:        models.Source{Website: "hitomi", ID: "1", URL: "https://hitomi.la/galleries/a-japanese-1.html"},
	}
}

func setup(t *testing.T, galleries ...string) (string, *Maintainer) {
	t.Helper()
	root := t.TempDir()
	for _, g := range galleries {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "_data", g), 0755))
	}
	return root, New(root, "_data", mapTranslations{"full color": "フルカラー"}, logger.Discard())
}

func assertLink(t *testing.T, root, rel, gallery string) {
	t.Helper()
	path := filepath.Join(root, rel, gallery)

	target, err := os.Readlink(path)
	require.NoError(t, err, path)
	assert.Equal(t, filepath.Join("..", "..", "_data", gallery), target)

	info, err := os.Stat(path)
	require.NoError(t, err, "link must resolve: %s", path)
	assert.True(t, info.IsDir())
}

func TestNames(t *testing.T) {
	_, m := setup(t)
	meta := testMetadata()

	assert.Equal(t, []string{"山田"}, m.Names(models.CategoryAuthors, meta), "empty names are not indexed")
	assert.Equal(t, []string{"フルカラー"}, m.Names(models.CategoryTags, meta), "unknown tags are not indexed")
	assert.Empty(t, m.Names(models.CategoryCharacters, meta))

	meta.Series = []string{"a/b", "ab"}
	meta.SeriesRaw = []string{"x", "y"}
	assert.Equal(t, []string{"ab"}, m.Names(models.CategorySeries, meta))
}

func TestReindex(t *testing.T) {
	root, m := setup(t, "夏|japanese")

	require.NoError(t, m.Reindex("夏|japanese", testMetadata()))

	assertLink(t, root, "authors/山田", "夏|japanese")
	assertLink(t, root, "groups/サークル", "夏|japanese")
	assertLink(t, root, "series/オリジナル", "夏|japanese")
	assertLink(t, root, "tags/フルカラー", "夏|japanese")
	assert.NoDirExists(t, filepath.Join(root, "tags", "unmapped"))
	assert.NoDirExists(t, filepath.Join(root, "characters"))
}

func TestReindex_Idempotent(t *testing.T) {
	root, m := setup(t, "夏|japanese")

	require.NoError(t, m.Reindex("夏|japanese", testMetadata()))
	require.NoError(t, m.Reindex("夏|japanese", testMetadata()))

	entries, err := os.ReadDir(filepath.Join(root, "authors", "山田"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assertLink(t, root, "authors/山田", "夏|japanese")
}

func TestReindex_ReplacesStaleLinks(t *testing.T) {
	root, m := setup(t, "夏|japanese", "other")

	dir := filepath.Join(root, "authors", "山田")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.Symlink(filepath.Join("..", "..", "_data", "other"), filepath.Join(dir, "夏|japanese")))

	groupDir := filepath.Join(root, "groups", "サークル")
	require.NoError(t, os.MkdirAll(groupDir, 0755))
	require.NoError(t, os.Symlink("/does/not/exist", filepath.Join(groupDir, "夏|japanese")))

	require.NoError(t, m.Reindex("夏|japanese", testMetadata()))

	assertLink(t, root, "authors/山田", "夏|japanese")
	assertLink(t, root, "groups/サークル", "夏|japanese")
}

func TestReindex_DirectoryInTheWay(t *testing.T) {
	root, m := setup(t, "夏|japanese")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "authors", "山田", "夏|japanese"), 0755))

	err := m.Reindex("夏|japanese", testMetadata())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authors/山田")

	assertLink(t, root, "groups/サークル", "夏|japanese")
}

func TestReindexAll(t *testing.T) {
	root, m := setup(t, "夏|japanese", "冬|english", "broken")
	require.NoError(t, library.WriteMetadata(filepath.Join(root, "_data", "夏|japanese"), testMetadata()))

	winter := testMetadata()
	winter.Title = "冬"
	winter.Authors = []string{"鈴木"}
	winter.AuthorsRaw = []string{"suzuki"}
	require.NoError(t, library.WriteMetadata(filepath.Join(root, "_data", "冬|english"), winter))

	require.NoError(t, os.WriteFile(filepath.Join(root, "_data", ".DS_Store"), []byte("x"), 0644))

	require.NoError(t, m.ReindexAll())

	assertLink(t, root, "authors/山田", "夏|japanese")
	assertLink(t, root, "authors/鈴木", "冬|english")
	assertLink(t, root, "series/オリジナル", "夏|japanese")
	assertLink(t, root, "series/オリジナル", "冬|english")
	assert.NoFileExists(t, filepath.Join(root, "authors", "山田", "broken"))
}
