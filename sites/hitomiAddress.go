package sites

import (
	"regexp"
	"strconv"
	"strings"

	"hitodl/models"
)

// The content hosts shard files by a hex token taken from the storage path.
var (
	shardPattern = regexp.MustCompile(`/[0-9a-f]/([0-9a-f]{2})/`)
	shardToken   = regexp.MustCompile(`^[0-9a-f]{2}$`)
)

// FullPathFromHash builds the storage path of a file: the second to last
// character of the hash, then its last two characters, then the hash itself.
// Hashes shorter than three characters are used verbatim.
//
//	FullPathFromHash("0123456789abc") == "b/bc/0123456789abc"
func FullPathFromHash(hash string) string {
	n := len(hash)
	if n < 3 {
		return hash
	}
	return hash[n-2:n-1] + "/" + hash[n-2:] + "/" + hash
}

// SubdomainFromToken maps a two digit hex shard token to a content subdomain.
// Tokens below 0x30 are spread over two frontends, the rest over three;
// tokens below 0x09 all land on the second frontend. base is appended
// ("a" for most assets, "b" for jpg images). A token that is not exactly
// two lowercase hex digits yields "a" + base.
func SubdomainFromToken(token, base string) string {
	if !shardToken.MatchString(token) {
		return "a" + base
	}
	g, err := strconv.ParseInt(token, 16, 64)
	if err != nil {
		return "a" + base
	}

	frontends := int64(3)
	if g < 0x30 {
		frontends = 2
	}
	if g < 0x09 {
		g = 1
	}

	return string(rune('a'+g%frontends)) + base
}

// SubdomainFromURL returns the subdomain serving url. URLs without a shard
// token are served from "a".
func SubdomainFromURL(url, base string) string {
	m := shardPattern.FindStringSubmatch(url)
	if m == nil {
		return "a"
	}
	return SubdomainFromToken(m[1], base)
}

// urlFromURL swaps the placeholder host of a content URL for its shard.
func (h *HitomiSite) urlFromURL(url, base string) string {
	return h.hostPattern.ReplaceAllLiteralString(url, "//"+SubdomainFromURL(url, base)+"."+h.ContentDomain+"/")
}

// urlFromHash builds the unsharded content URL of a file in the given format.
func (h *HitomiSite) urlFromHash(file *models.FileEntry, format models.Format) string {
	dir := string(format)
	if format == models.FormatJPG {
		dir = "images"
	}
	return "https://a." + h.ContentDomain + "/" + dir + "/" + FullPathFromHash(file.Hash) + "." + string(format)
}

// chooseFormat picks the format a file is downloaded in. The automatic
// order is avif, webp, jpg; a hint moves its format to the front when the
// file offers it, and jpg forces jpg.
func chooseFormat(file *models.FileEntry, hint models.Format) models.Format {
	switch hint {
	case models.FormatJPG:
		return models.FormatJPG
	case models.FormatWebP:
		if file.HasWebP {
			return models.FormatWebP
		}
	case models.FormatAVIF:
		if file.HasAVIF {
			return models.FormatAVIF
		}
	}

	if file.HasAVIF {
		return models.FormatAVIF
	}
	if file.HasWebP {
		return models.FormatWebP
	}
	return models.FormatJPG
}

// ResolveFile picks the format of a file, sets its sharded download URL and
// renames it to carry the chosen extension.
func (h *HitomiSite) ResolveFile(_ int, file *models.FileEntry, hint models.Format) error {
	format := chooseFormat(file, hint)

	base := "a"
	if format == models.FormatJPG {
		base = "b"
	}

	file.Format = format
	file.URL = h.urlFromURL(h.urlFromHash(file, format), base)

	stem, _, _ := strings.Cut(file.Name, ".")
	file.Name = stem + "." + string(format)
	return nil
}
