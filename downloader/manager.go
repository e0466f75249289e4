package downloader

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	apperrors "hitodl/errors"
	"hitodl/library"
	"hitodl/models"
	"hitodl/parser"

	"golang.org/x/sync/errgroup"
)

// Cover thumbnail settings.
const (
	CoverFileName = "_cover.jpg"
	CoverWidth    = 350
	CoverHeight   = 490

	coverAttempts = 3
)

// DefaultWorkers is the download pool width when none is configured.
const DefaultWorkers = 16

// Report summarises one Download call.
type Report struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
}

// Manager is the download engine: it persists a gallery's metadata and
// fetches its files into the gallery directory with a bounded worker pool.
type Manager struct {
	client  *HTTPClient
	site    SitePlugin
	workers int
	cover   bool
	logger  *slog.Logger
}

// ManagerConfig bundles the settings of a Manager.
type ManagerConfig struct {
	Client  *HTTPClient
	Site    SitePlugin
	Workers int
	Cover   bool
	Logger  *slog.Logger
}

// NewManager creates a new download manager
func NewManager(cfg ManagerConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Manager{
		client:  cfg.Client,
		site:    cfg.Site,
		workers: workers,
		cover:   cfg.Cover,
		logger:  cfg.Logger,
	}
}

// Download writes the gallery metadata into galleryDir and, unless
// metadataOnly is set, downloads every file that is not already complete.
//
// Files are independent: one failing does not stop the others. Every
// failure is returned, joined, once all files have been attempted.
func (m *Manager) Download(ctx context.Context, galleryDir string, gallery *models.Gallery, metadataOnly bool) (*Report, error) {
	if err := library.WriteMetadata(galleryDir, &gallery.Metadata); err != nil {
		return nil, err
	}

	report := &Report{Total: len(gallery.Files)}
	if metadataOnly {
		m.logger.Info("Finished downloading to: "+galleryDir, "metadata_only", true)
		return report, nil
	}

	headers := m.site.DownloadHeaders(gallery.ID)

	var (
		downloaded, skipped atomic.Int64
		mu                  sync.Mutex
		failures            []error
	)

	var g errgroup.Group
	g.SetLimit(m.workers)

	for _, file := range gallery.Files {
		g.Go(func() error {
			done, err := m.downloadFile(ctx, galleryDir, file, headers)
			switch {
			case err != nil:
				m.logger.Error("Download failed", "file", file.Name, "error", err)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			case done:
				downloaded.Add(1)
			default:
				skipped.Add(1)
			}
			// failures are collected, not returned, so siblings keep running
			return nil
		})
	}
	g.Wait()

	report.Downloaded = int(downloaded.Load())
	report.Skipped = int(skipped.Load())
	report.Failed = len(failures)

	if m.cover && len(failures) < len(gallery.Files) {
		m.writeCover(galleryDir, gallery.Files)
	}

	m.logger.Info("Finished downloading to: "+galleryDir,
		"downloaded", report.Downloaded, "skipped", report.Skipped, "failed", report.Failed)

	if len(failures) > 0 {
		return report, apperrors.Join(failures...)
	}
	return report, nil
}

// downloadFile fetches one file unless a complete copy exists.
// It reports whether a request was made.
func (m *Manager) downloadFile(ctx context.Context, galleryDir string, file models.FileEntry, headers map[string]string) (bool, error) {
	target := filepath.Join(galleryDir, file.Name)
	if parser.FileComplete(target) {
		m.logger.Debug("Skipping complete file", "file", file.Name)
		return false, nil
	}

	m.logger.Info("Downloading: " + file.Name)

	body, err := m.client.Open(ctx, file.URL, headers)
	if err != nil {
		return true, apperrors.Wrapf(err, apperrors.CodeDownload, "failed to download %s", file.Name)
	}
	defer body.Close()

	if _, err := parser.CopyFileAtomic(target, body); err != nil {
		return true, apperrors.Wrapf(err, apperrors.CodeDownload, "failed to save %s", file.Name)
	}
	return true, nil
}

// writeCover creates the cover thumbnail from the first file that decodes.
// Failures are logged and never fail the download.
func (m *Manager) writeCover(galleryDir string, files []models.FileEntry) {
	dst := filepath.Join(galleryDir, CoverFileName)
	if parser.FileComplete(dst) {
		return
	}

	attempts := 0
	for _, file := range files {
		src := filepath.Join(galleryDir, file.Name)
		if !parser.FileComplete(src) {
			continue
		}
		if attempts == coverAttempts {
			break
		}
		attempts++

		err := parser.CreateCover(src, dst, CoverWidth, CoverHeight)
		if err == nil {
			m.logger.Info("Created cover", "from", file.Name)
			return
		}
		m.logger.Debug("Cannot create cover", "from", file.Name, "error", err)
	}

	m.logger.Warn("No file could be used as cover", "dir", galleryDir)
}
