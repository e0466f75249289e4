package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hitodl/errors"
	"hitodl/models"
)

type sample struct {
	Workers  int    `flag:"workers" validate:"min=1,max=128"`
	LogLevel string `flag:"log-level" validate:"oneof=debug info warn error"`
	Root     string `validate:"required"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(sample{Workers: 16, LogLevel: "info", Root: "/tmp"}))

	err := v.Validate(sample{Workers: 0, LogLevel: "loud"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
	assert.Contains(t, err.Error(), "--workers must be at least 1")
	assert.Contains(t, err.Error(), "--log-level must be one of: debug info warn error")
	assert.Contains(t, err.Error(), "Root is required")
}

func validMetadata() *models.GalleryMetadata {
	return &models.GalleryMetadata{
		Title:      "タイトル",
		Language:   "japanese",
		Authors:    []string{"山田"},
		AuthorsRaw: []string{"yamada"},
		Source:     models.Source{Website: "hitomi", ID: "123456", URL: "https://hitomi.la/galleries/foo-japanese-123456.html"},
	}
}

func TestMetadata(t *testing.T) {
	require.NoError(t, Metadata(validMetadata()))

	meta := validMetadata()
	meta.GroupsRaw = []string{"circle"}
	err := Metadata(meta)
	assert.ErrorIs(t, err, apperrors.ErrStructure)
	assert.Contains(t, err.Error(), "groups")

	meta = validMetadata()
	meta.Source.URL = ""
	assert.ErrorIs(t, Metadata(meta), apperrors.ErrStructure)

	meta = validMetadata()
	meta.Title = "  "
	assert.ErrorIs(t, Metadata(meta), apperrors.ErrStructure)

	meta = validMetadata()
	meta.TagsRaw = []string{"full color"}
	assert.NoError(t, Metadata(meta), "tags have no resolved list")
}
