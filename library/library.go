// Package library manages the per-gallery data directories under _data/.
package library

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "hitodl/errors"
	"hitodl/models"
	"hitodl/parser"
	"hitodl/prompt"

	"gopkg.in/yaml.v3"
)

// InfoFileName is the metadata document inside every gallery directory.
const InfoFileName = "_info.yml"

// Library is the gallery data root.
type Library struct {
	dataDir  string
	prompter prompt.Prompter
	logger   *slog.Logger
}

// New returns a library rooted at dataDir. prompter decides what to do with
// a gallery that was downloaded before; it may be nil when nothing is allocated.
func New(dataDir string, prompter prompt.Prompter, logger *slog.Logger) *Library {
	return &Library{
		dataDir:  dataDir,
		prompter: prompter,
		logger:   logger,
	}
}

// Path returns the absolute path of a gallery directory.
func (l *Library) Path(dirName string) string {
	return filepath.Join(l.dataDir, dirName)
}

// DirName returns the preferred directory name of a gallery: its sanitised
// title and its language, separated by "|".
func DirName(meta *models.GalleryMetadata) string {
	return parser.SanitizeFilename(meta.Title) + "|" + parser.SanitizeFilename(meta.Language)
}

// Allocate picks and creates the directory a gallery is downloaded into.
//
// Candidates are DirName, then DirName_1, DirName_2 and so on. A candidate
// that does not exist is used. One holding a different gallery is skipped.
// One holding the same source URL is a duplicate and the operator decides:
// reuse it (the default), download into a new numbered directory, or abort
// with ErrDuplicate.
func (l *Library) Allocate(meta *models.GalleryMetadata) (string, error) {
	base := DirName(meta)
	fresh := false

	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = base + "_" + strconv.Itoa(i)
		}
		path := l.Path(name)

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return "", fmt.Errorf("create gallery directory: %w", err)
			}
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("check gallery directory: %w", err)
		}
		if !info.IsDir() || fresh {
			continue
		}

		existing, err := ReadMetadata(path)
		if err != nil {
			l.logger.Warn("Skipping directory without readable metadata", "dir", name, "error", err)
			continue
		}
		if existing.Source.URL != meta.Source.URL {
			continue
		}

		decision, err := l.askDuplicate(meta.Source.URL, name)
		if err != nil {
			return "", err
		}
		switch decision {
		case "a":
			return "", apperrors.Duplicatef("%s was already downloaded to %s", meta.Source.URL, name)
		case "y":
			fresh = true
		default:
			l.logger.Info("Resuming existing gallery directory", "dir", name)
			return name, nil
		}
	}
}

func (l *Library) askDuplicate(url, name string) (string, error) {
	if l.prompter == nil {
		return "", apperrors.Duplicatef("%s was already downloaded to %s", url, name)
	}

	answer, err := l.prompter.Ask(fmt.Sprintf(
		"%s was already downloaded to %s.\nDownload it again into a new directory? (y)es / (n)o, reuse it / (a)bort; default is n\n",
		url, name))
	if err != nil {
		return "", fmt.Errorf("ask about duplicate: %w", err)
	}

	answer = strings.ToLower(answer)
	if answer == "" {
		return "n", nil
	}
	return answer[:1], nil
}

// Galleries lists every gallery directory name. Dot entries and plain files are ignored.
func (l *Library) Galleries() ([]string, error) {
	return parser.LocalDirList(l.dataDir)
}

// ReadMetadata loads _info.yml from a gallery directory.
func ReadMetadata(dir string) (*models.GalleryMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFileName))
	if err != nil {
		return nil, err
	}

	var meta models.GalleryMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", InfoFileName, err)
	}
	return &meta, nil
}

// WriteMetadata replaces _info.yml in a gallery directory.
func WriteMetadata(dir string, meta *models.GalleryMetadata) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("encode %s: %w", InfoFileName, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", InfoFileName, err)
	}

	return parser.WriteFileAtomic(filepath.Join(dir, InfoFileName), buf.Bytes())
}
