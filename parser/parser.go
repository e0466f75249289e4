package parser

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxNameBytes leaves room for the "|language_N" suffix under the usual
// 255 byte file name limit.
const maxNameBytes = 200

var tagPattern = regexp.MustCompile(`^([a-z ]+)([♀♂])?`)

// LocalDirList returns the names of all subdirectories of rootDir.
// Dot entries are skipped, as is anything in exclusionList.
func LocalDirList(rootDir string, exclusionList ...string) ([]string, error) {
	// Expand ~ to home directory
	expandedPath, err := ExpandPath(rootDir)
	if err != nil {
		return nil, err
	}

	exclusions := make(map[string]struct{}, len(exclusionList))
	for _, name := range exclusionList {
		exclusions[name] = struct{}{}
	}

	entries, err := os.ReadDir(expandedPath)
	if err != nil {
		return nil, err
	}

	dirList := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, skip := exclusions[entry.Name()]; skip {
			continue
		}
		dirList = append(dirList, entry.Name())
	}

	return dirList, nil
}

// ExpandPath expands ~ to the user's home directory, or returns the path as-is
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

// SanitizeFilename turns an arbitrary title into a single path component.
// Characters that are invalid on common filesystems and control characters
// are removed, the result is NFC-normalised and trimmed.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			continue
		}
		b.WriteRune(r)
	}

	clean := strings.TrimSpace(b.String())
	clean = strings.TrimRight(clean, ". ")

	if len(clean) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !isRuneStart(clean[cut]) {
			cut--
		}
		clean = strings.TrimSpace(clean[:cut])
	}

	if clean == "" || clean == "." || clean == ".." {
		return "untitled"
	}
	return clean
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// NormalizeTag reduces a scraped tag to its leading lowercase words,
// dropping the gender marker the site appends ("big breasts ♀" -> "big breasts").
// Tags that do not start with a lowercase letter keep their text minus the marker.
func NormalizeTag(tag string) string {
	if m := tagPattern.FindStringSubmatch(tag); m != nil {
		if trimmed := strings.TrimRight(m[1], " "); trimmed != "" {
			return trimmed
		}
	}

	tag = strings.NewReplacer("♀", "", "♂", "").Replace(tag)
	return strings.TrimSpace(tag)
}
