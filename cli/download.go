package cli

import (
	"context"
	"fmt"
	"log/slog"

	"hitodl/config"
	"hitodl/downloader"
	apperrors "hitodl/errors"
	"hitodl/index"
	"hitodl/library"
	"hitodl/prompt"
	"hitodl/translations"
)

// download runs one gallery through fetch, allocation, download and
// indexing. Translations learnt on the way are saved even when a later
// step fails.
func download(ctx context.Context, env *Environment, cfg *config.Config, store *translations.Store, rawURL string, metadataOnly bool, log *slog.Logger) (err error) {
	site, err := env.Lookup(rawURL)
	if err != nil {
		return err
	}

	defer func() {
		if saveErr := store.Save(); saveErr != nil {
			err = apperrors.Join(err, fmt.Errorf("save translations: %w", saveErr))
		}
	}()

	client, err := downloader.NewHTTPClient(downloader.ClientOptions{
		Timeout:   cfg.Timeout,
		Transport: env.Transport,
	}, log)
	if err != nil {
		return err
	}

	prompter := prompt.NewTerminal(env.Stdin, env.Stdout)

	fetcher := downloader.NewFetcher(downloader.FetcherConfig{
		Site:     site,
		API:      downloader.NewAPIClient(cfg.Timeout, env.Transport, log),
		Executor: downloader.NewRequestExecutor(client, cfg.Browser, cfg.Timeout, log),
		Names:    translations.NewResolver(store, prompter, log),
		Prompter: prompter,
		Format:   cfg.Format,
		Logger:   log,
	})

	gallery, err := fetcher.FetchGallery(ctx, rawURL)
	if err != nil {
		return err
	}

	lib := library.New(cfg.DataDir(), prompter, log)
	dirName, err := lib.Allocate(&gallery.Metadata)
	if err != nil {
		return err
	}

	manager := downloader.NewManager(downloader.ManagerConfig{
		Client:  client,
		Site:    site,
		Workers: cfg.Workers,
		Cover:   cfg.Cover,
		Logger:  log,
	})

	report, downloadErr := manager.Download(ctx, lib.Path(dirName), gallery, metadataOnly)
	if report == nil {
		return downloadErr
	}

	// the gallery is indexed even when some files failed
	indexErr := index.New(cfg.RootDir, config.DataDirName, store, log).Reindex(dirName, &gallery.Metadata)

	return apperrors.Join(downloadErr, indexErr)
}
