package packager

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/G-Node/gin-release/internal/config"
	"github.com/G-Node/gin-release/internal/release"
)

const testPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleExecutable</key>
	<string>launch</string>
	<key>CFBundleVersion</key>
	<string>0.0.0</string>
	<key>CFBundleShortVersionString</key>
	<string>0.0.0</string>
</dict>
</plist>
`

// newTestPackager builds a Packager over a fixture assets tree and a
// fresh dist directory.
func newTestPackager(t *testing.T) *Packager {
	t.Helper()

	assets := t.TempDir()

	files := map[string]string{
		"README.md":                       "gin readme\n",
		"LICENSE":                         "gin license\n",
		"version":                         "version=1.2.3\n",
		"scripts/gin.sh":                  "#!/bin/sh\nexec /opt/gin/bin/gin \"$@\"\n",
		"scripts/gin-shell.bat":           "@echo off\r\n",
		"scripts/launch-macos.sh":         "#!/bin/sh\nopen .\n",
		"scripts/makedeb":                 "#!/bin/sh\ndpkg-deb --build gin-cli\n",
		"debdock/Dockerfile":              "FROM debian:stable\n",
		"debdock/debian/control":          "Package: gin-cli\nVersion: {version}\nDescription: build {build} commit {commit}\n",
		"debdock/debian/changelog":        "gin-cli ({version}) stable\n",
		"debdock/debian/changelog.Debian": "gin-cli Debian changelog\n",
		"macapp/gin-Info.plist":           testPlist,
	}
	for name, contents := range files {
		path := filepath.Join(assets, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o755))
	}

	cfg := &config.Config{
		AssetsDir: assets,
		SourceDir: assets,
		DestDir:   filepath.Join(t.TempDir(), "dist"),
	}
	require.NoError(t, config.Validate(cfg))
	require.NoError(t, os.MkdirAll(cfg.PkgDir(), 0o755))
	require.NoError(t, os.MkdirAll(cfg.DownloadsDir(), 0o755))

	return New(cfg, &release.Record{Version: "1.2.3", Build: "000042", Commit: "abcdef"})
}

// writeBinary creates a fake built binary under <dest>/<osarch>/.
func writeBinary(t *testing.T, p *Packager, osarch, name string) string {
	t.Helper()

	dir := filepath.Join(p.cfg.DestDir, osarch)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("binary "+osarch), 0o755))

	return path
}

// requireTool skips the test when the named tool is not installed.
func requireTool(t *testing.T, name string) {
	t.Helper()

	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// TestPlainTarballNaming produces a versioned tarball next to the binary.
func TestPlainTarballNaming(t *testing.T) {
	t.Parallel()
	requireTool(t, "tar")

	p := newTestPackager(t)
	bin := writeBinary(t, p, "linux-amd64", "gin")

	path, err := p.PlainTarball(context.Background(), bin)
	require.NoError(t, err)
	require.Equal(t, "gin-cli-1.2.3-linux-amd64.tar.gz", filepath.Base(path))
	require.FileExists(t, path)
}

// TestPlainTarballMacNaming spells darwin as macos in the artifact name.
func TestPlainTarballMacNaming(t *testing.T) {
	t.Parallel()
	requireTool(t, "tar")

	p := newTestPackager(t)
	bin := writeBinary(t, p, "darwin-amd64", "gin")

	path, err := p.PlainTarball(context.Background(), bin)
	require.NoError(t, err)
	require.Equal(t, "gin-cli-1.2.3-macos-amd64.tar.gz", filepath.Base(path))
}

// TestPlainTarballHonorsTimeout ensures the configured timeout bounds the
// packaging step's external tooling.
func TestPlainTarballHonorsTimeout(t *testing.T) {
	t.Parallel()

	p := newTestPackager(t)
	p.cfg.Timeout = time.Nanosecond

	bin := writeBinary(t, p, "linux-amd64", "gin")

	_, err := p.PlainTarball(context.Background(), bin)
	require.Error(t, err)
}

// TestLinkLatest checks alias creation, byte identity and idempotence.
func TestLinkLatest(t *testing.T) {
	t.Parallel()

	p := newTestPackager(t)
	ctx := context.Background()

	artifact := filepath.Join(p.cfg.PkgDir(), "gin-cli-1.2.3-linux-amd64.tar.gz")
	require.NoError(t, os.WriteFile(artifact, []byte("archive body"), 0o644))

	require.NoError(t, p.LinkLatest(ctx, artifact))

	latest := filepath.Join(p.cfg.PkgDir(), "gin-cli-latest-linux-amd64.tar.gz")
	contents, err := os.ReadFile(latest)
	require.NoError(t, err)
	require.Equal(t, "archive body", string(contents))

	// Second run replaces the alias without error.
	require.NoError(t, p.LinkLatest(ctx, artifact))

	entries, err := filepath.Glob(filepath.Join(p.cfg.PkgDir(), "gin-cli-latest-*"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
