package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileComplete reports whether path exists as a regular file with content.
// Zero-length leftovers from an interrupted run count as missing.
func FileComplete(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	_, err := CopyFileAtomic(path, bytes.NewReader(data))
	return err
}

// CopyFileAtomic streams r into path through a temporary file and renames it
// into place once everything has been written.
func CopyFileAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return n, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return n, fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("rename into %s: %w", path, err)
	}

	return n, nil
}
