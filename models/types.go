package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Category is one of the five attribute namespaces a gallery is indexed by.
// The value doubles as the category directory name and the translation file stem.
type Category string

const (
	CategoryAuthors    Category = "authors"
	CategoryGroups     Category = "groups"
	CategorySeries     Category = "series"
	CategoryCharacters Category = "characters"
	CategoryTags       Category = "tags"
)

// Categories lists every category in the order they are loaded, saved and indexed.
var Categories = []Category{
	CategoryAuthors,
	CategoryGroups,
	CategorySeries,
	CategoryCharacters,
	CategoryTags,
}

// Singular returns the name used in operator prompts ("author", "group", ...).
func (c Category) Singular() string {
	switch c {
	case CategoryAuthors:
		return "author"
	case CategoryGroups:
		return "group"
	case CategoryCharacters:
		return "character"
	case CategoryTags:
		return "tag"
	default:
		return string(c)
	}
}

// Format is the image encoding a file is downloaded in.
type Format string

const (
	FormatAuto Format = "auto" // hint only: avif > webp > jpg
	FormatAVIF Format = "avif"
	FormatWebP Format = "webp"
	FormatJPG  Format = "jpg"
)

// ParseFormat converts a hint string into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatAuto, FormatAVIF, FormatWebP, FormatJPG:
		return Format(s), nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Flag is a capability flag from the file manifest. The origin encodes
// these as 0/1, as booleans, or leaves them null.
type Flag bool

// UnmarshalJSON accepts true/false, numbers and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false", `""`:
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}

	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid flag value %s", string(data))
	}
	*f = n != 0
	return nil
}
