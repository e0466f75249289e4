// Package cli is the hitodl command line: one root command that downloads a
// gallery, or maintains the workspace when a mode flag is given.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hitodl/config"
	"hitodl/downloader"
	apperrors "hitodl/errors"
	"hitodl/index"
	"hitodl/logger"
	"hitodl/sites"
	"hitodl/translations"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
)

// Environment is everything a run touches outside the workspace.
type Environment struct {
	Stdin  io.Reader // operator answers
	Stdout io.Writer // prompts and --debug output
	Stderr io.Writer // logs

	// Transport replaces the default HTTP transport when set.
	Transport http.RoundTripper

	// Lookup picks the site plugin for a gallery URL.
	Lookup func(rawURL string) (downloader.SitePlugin, error)

	// Clipboard returns the clipboard text; used when no URL is given.
	Clipboard func() (string, error)
}

// DefaultEnvironment wires the process streams, the site registry and the
// system clipboard.
func DefaultEnvironment() *Environment {
	return &Environment{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Lookup:    sites.Lookup,
		Clipboard: readClipboard,
	}
}

// options are the mode flags of one run.
type options struct {
	metadataOnly  bool
	updateLinks   bool
	initWorkspace bool
	debug         bool
}

var rootCmd = NewRootCmd(DefaultEnvironment())

// NewRootCmd builds the root command around env.
func NewRootCmd(env *Environment) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "hitodl [URL]",
		Short: "Download a gallery and index it by author, group, series, character and tag",
		Long: `hitodl downloads the gallery at URL into <root>/_data/<title>|<language>/,
writes its metadata to _info.yml and links it from the category directories.

The root directory is --root, then $` + config.EnvRootDir + `, then the current directory.
Without URL the clipboard is read.`,
		Version:       config.VersionString(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagValues(cmd))
			if err != nil {
				logger.New(logger.Config{Writer: env.Stderr, Format: logger.FormatPretty, Level: slog.LevelInfo}).
					Error("Invalid configuration", "error", err)
				return err
			}

			log := logger.New(logger.Config{
				Writer: env.Stderr,
				Format: cfg.LogFormat,
				Level:  logger.ParseLevel(cfg.LogLevel),
			})

			err = run(cmd.Context(), env, cfg, opts, args, log)
			switch {
			case err == nil:
				return nil
			case apperrors.Is(err, apperrors.ErrDuplicate):
				log.Info("Download aborted", "reason", err.Error())
				return nil
			default:
				log.Error("Failed", "error", err)
				return err
			}
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.metadataOnly, "metadata-only", "m", false, "write metadata and links, skip the files")
	flags.BoolVar(&opts.updateLinks, "update-links", false, "rebuild the category links of every downloaded gallery and exit")
	flags.BoolVar(&opts.initWorkspace, "init", false, "create the workspace directories and translation files and exit")
	flags.BoolVar(&opts.debug, "debug", false, "print the translation tables and exit")

	flags.String("root", "", "workspace root (env "+config.EnvRootDir+")")
	flags.IntP("workers", "j", config.DefaultWorkers, "parallel file downloads (env "+config.EnvWorkers+")")
	flags.String("log-level", "info", "debug, info, warn or error (env "+config.EnvLogLevel+")")
	flags.String("log-format", logger.FormatPretty, "pretty or json (env "+config.EnvLogFormat+")")
	flags.String("format", "auto", "preferred image format: auto, avif, webp or jpg (env "+config.EnvFormat+")")
	flags.Bool("browser", false, "render the gallery page in headless Chrome (env "+config.EnvBrowser+")")
	flags.Bool("cover", false, "write a _cover.jpg thumbnail (env "+config.EnvCover+")")
	flags.Duration("timeout", config.DefaultTimeout, "per request timeout (env "+config.EnvTimeout+")")

	return cmd
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// flagValues passes only the flags given on the command line, so that
// environment variables can fill in the rest.
func flagValues(cmd *cobra.Command) config.FlagValues {
	flags := cmd.Flags()
	get := func(name string) string {
		if !flags.Changed(name) {
			return ""
		}
		return flags.Lookup(name).Value.String()
	}

	return config.FlagValues{
		Root:      get("root"),
		Workers:   get("workers"),
		LogLevel:  get("log-level"),
		LogFormat: get("log-format"),
		Format:    get("format"),
		Browser:   get("browser"),
		Cover:     get("cover"),
		Timeout:   get("timeout"),
	}
}

// run executes one mode. Only the download mode needs a URL.
func run(ctx context.Context, env *Environment, cfg *config.Config, opts options, args []string, log *slog.Logger) error {
	if opts.initWorkspace {
		if err := config.InitWorkspace(cfg.RootDir, log); err != nil {
			return err
		}
		log.Info("Workspace ready", "root", cfg.RootDir)
		return nil
	}

	if err := config.CheckWorkspace(cfg.RootDir); err != nil {
		return err
	}

	store, err := translations.Load(cfg.RootDir)
	if err != nil {
		return err
	}

	if opts.debug {
		_, err := pretty.Fprintf(env.Stdout, "%# v\n", store.Snapshot())
		return err
	}

	if opts.updateLinks {
		return index.New(cfg.RootDir, config.DataDirName, store, log).ReindexAll()
	}

	rawURL, err := galleryURL(env, args, log)
	if err != nil {
		return err
	}

	return download(ctx, env, cfg, store, rawURL, opts.metadataOnly, log)
}

// galleryURL returns the URL argument or, without one, the clipboard text.
func galleryURL(env *Environment, args []string, log *slog.Logger) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}

	if env.Clipboard == nil {
		return "", apperrors.InvalidURLf("no gallery URL given")
	}
	text, err := env.Clipboard()
	if err != nil {
		return "", apperrors.InvalidURLf("no gallery URL given and the clipboard is unavailable: %v", err)
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \n\t") {
		return "", apperrors.InvalidURLf("no gallery URL given and the clipboard holds no URL")
	}

	log.Info("Using URL from clipboard", "url", text)
	return text, nil
}

func readClipboard() (string, error) {
	if err := clipboard.Init(); err != nil {
		return "", fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", fmt.Errorf("clipboard is empty")
	}
	return string(data), nil
}
