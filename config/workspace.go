package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "hitodl/errors"
	"hitodl/models"
	"hitodl/translations"
)

// InitWorkspace creates the data directory, the five category directories
// and empty translation files under root. Existing files are left untouched.
func InitWorkspace(root string, logger *slog.Logger) error {
	dirs := []string{filepath.Join(root, DataDirName)}
	for _, c := range models.Categories {
		dirs = append(dirs, filepath.Join(root, string(c)))
	}

	for _, dir := range dirs {
		if err := verifyDirectory(dir, logger); err != nil {
			return err
		}
	}

	for _, c := range models.Categories {
		if err := touchFile(filepath.Join(root, translations.FileName(c)), logger); err != nil {
			return err
		}
	}

	return nil
}

// CheckWorkspace returns a config error when root has not been initialised.
func CheckWorkspace(root string) error {
	info, err := os.Stat(filepath.Join(root, DataDirName))
	if err != nil || !info.IsDir() {
		return apperrors.Configf("%s is not an initialised workspace (missing %s/); run with --init first", root, DataDirName)
	}
	return nil
}

// verifyDirectory creates dir if it does not exist.
func verifyDirectory(dir string, logger *slog.Logger) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
		logger.Info("Created directory", "path", dir)
	case err != nil:
		return fmt.Errorf("error checking directory %s: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", dir)
	default:
		logger.Debug("Directory already exists", "path", dir)
	}
	return nil
}

// touchFile creates an empty file if it does not exist.
func touchFile(path string, logger *slog.Logger) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		logger.Debug("File already exists", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error creating file %s: %w", path, err)
	}
	logger.Info("Created file", "path", path)
	return f.Close()
}
