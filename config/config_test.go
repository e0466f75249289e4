package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hitodl/errors"
	"hitodl/logger"
	"hitodl/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRootDir, EnvWorkers, EnvLogLevel, EnvLogFormat, EnvFormat, EnvBrowser, EnvCover, EnvTimeout} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(FlagValues{})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, wd, cfg.RootDir)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, models.FormatAuto, cfg.Format)
	assert.False(t, cfg.Browser)
	assert.False(t, cfg.Cover)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv(EnvRootDir, root)
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvCover, "yes")
	t.Setenv(EnvFormat, "WEBP")

	cfg, err := Load(FlagValues{})
	require.NoError(t, err)

	assert.Equal(t, root, cfg.RootDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Cover)
	assert.Equal(t, models.FormatWebP, cfg.Format)
	assert.Equal(t, filepath.Join(root, "_data"), cfg.DataDir())
	assert.Equal(t, filepath.Join(root, "tags"), cfg.CategoryDir(models.CategoryTags))
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRootDir, t.TempDir())
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvBrowser, "true")
	flagRoot := t.TempDir()

	cfg, err := Load(FlagValues{Root: flagRoot, Workers: "2", Browser: "false", Timeout: "5s", LogLevel: "DEBUG"})
	require.NoError(t, err)

	assert.Equal(t, flagRoot, cfg.RootDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.Browser)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		flags FlagValues
	}{
		{"workers not a number", FlagValues{Workers: "many"}},
		{"workers zero", FlagValues{Workers: "0"}},
		{"bad timeout", FlagValues{Timeout: "soon"}},
		{"negative timeout", FlagValues{Timeout: "-1s"}},
		{"bad format", FlagValues{Format: "png"}},
		{"bad level", FlagValues{LogLevel: "loud"}},
		{"bad log format", FlagValues{LogFormat: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(tt.flags)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConfig)
		})
	}
}

func TestLoad_TildeRoot(t *testing.T) {
	clearEnv(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(FlagValues{Root: "~/hentai"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "hentai"), cfg.RootDir)
}

func TestInitWorkspace(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tags.yml"), []byte("glasses: 眼鏡\n"), 0644))

	require.Error(t, CheckWorkspace(root))
	require.NoError(t, InitWorkspace(root, logger.Discard()))
	require.NoError(t, CheckWorkspace(root))

	assert.DirExists(t, filepath.Join(root, "_data"))
	for _, c := range models.Categories {
		assert.DirExists(t, filepath.Join(root, string(c)))
		assert.FileExists(t, filepath.Join(root, string(c)+".yml"))
	}

	data, err := os.ReadFile(filepath.Join(root, "tags.yml"))
	require.NoError(t, err)
	assert.Equal(t, "glasses: 眼鏡\n", string(data), "existing translation files are not truncated")

	// second run is a no-op
	require.NoError(t, InitWorkspace(root, logger.Discard()))
}

func TestInitWorkspace_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "authors"), []byte("x"), 0644))

	assert.Error(t, InitWorkspace(root, logger.Discard()))
}
