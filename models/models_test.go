package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`null`, false},
		{`"1"`, true},
		{`""`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f)
		})
	}

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &f))
}

func TestManifest_MissingFilesIsNil(t *testing.T) {
	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &m))
	assert.Nil(t, m.Files)

	require.NoError(t, json.Unmarshal([]byte(`{"files":[]}`), &m))
	require.NotNil(t, m.Files)
	assert.Empty(t, *m.Files)
}

func TestManifest_PreferredTitle(t *testing.T) {
	jp, en, empty := "日本語", "English", ""

	assert.Equal(t, jp, (&Manifest{JapaneseTitle: &jp, Title: &en}).PreferredTitle())
	assert.Equal(t, en, (&Manifest{JapaneseTitle: &empty, Title: &en}).PreferredTitle())
	assert.Equal(t, "", (&Manifest{}).PreferredTitle())
}

func TestGalleryMetadata_SetNames(t *testing.T) {
	var m GalleryMetadata
	m.SetNames(CategorySeries, []string{"original"}, []string{"オリジナル"})
	m.SetNames(CategoryTags, []string{"full color"}, nil)

	assert.Equal(t, []string{"original"}, m.Raw(CategorySeries))
	assert.Equal(t, []string{"オリジナル"}, m.Resolved(CategorySeries))
	assert.Equal(t, []string{"full color"}, m.Raw(CategoryTags))
	assert.Nil(t, m.Resolved(CategoryTags))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	f, err = ParseFormat("webp")
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, f)

	_, err = ParseFormat("png")
	assert.Error(t, err)
}
