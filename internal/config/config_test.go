package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidateDefaults checks that an empty config is filled with the standard release defaults.
func TestValidateDefaults(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))

	require.Equal(t, "gin-cli", cfg.PackageName)
	require.Equal(t, "gin", cfg.BinaryName)
	require.Equal(t, "dist", cfg.DestDir)
	require.Len(t, cfg.Platforms, 4)
	require.Equal(t, "gin-deb", cfg.DockerImage)
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	require.Equal(t, filepath.Join("dist", "downloads"), cfg.DownloadsDir())
	require.Equal(t, filepath.Join("dist", "pkg"), cfg.PkgDir())
	require.Equal(t, filepath.Join("dist", "etags"), cfg.ETagFile())
}

// TestValidateBadPlatform rejects target triples that are not os/arch pairs.
func TestValidateBadPlatform(t *testing.T) {
	t.Parallel()

	cfg := &Config{Platforms: []string{"linux-amd64"}}
	require.Error(t, Validate(cfg))

	cfg = &Config{Platforms: []string{"linux/"}}
	require.Error(t, Validate(cfg))
}

// TestLoadMissingFile ensures a missing settings file yields the defaults.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "gin-cli", cfg.PackageName)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		PackageName: "gin-cli",
		SourceDir:   "/src/gin-cli",
		Timeout:     time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.SourceDir, loaded.SourceDir)
	require.Equal(t, time.Minute, loaded.Timeout)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
