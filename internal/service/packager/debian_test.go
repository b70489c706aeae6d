package packager

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTarGz creates a gzipped tarball with the given relative files.
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for name, contents := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o755,
			Size: int64(len(contents)),
		}))

		_, err = tw.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())
}

// TestStageDebianTree verifies the package filesystem layout and the
// control-file substitution.
func TestStageDebianTree(t *testing.T) {
	t.Parallel()
	requireTool(t, "tar")

	p := newTestPackager(t)
	ctx := context.Background()

	bin := writeBinary(t, p, "linux-amd64", "gin")

	annex := filepath.Join(t.TempDir(), "git-annex-standalone-amd64.tar.gz")
	writeTarGz(t, annex, map[string]string{
		"git-annex.linux/git-annex": "annex payload",
	})

	pkgdir := filepath.Join(t.TempDir(), "gin-cli")
	require.NoError(t, p.stageDebianTree(ctx, pkgdir, bin, annex))

	// Binary and wrapper under /opt/gin/bin.
	require.FileExists(t, filepath.Join(pkgdir, "opt", "gin", "bin", "gin"))
	require.FileExists(t, filepath.Join(pkgdir, "opt", "gin", "bin", "gin.sh"))

	// Symlink from /usr/local/bin to the wrapper script.
	target, err := os.Readlink(filepath.Join(pkgdir, "usr", "local", "bin", "gin"))
	require.NoError(t, err)
	require.Equal(t, "/opt/gin/bin/gin.sh", target)

	// Annex standalone extracted under /opt/gin.
	require.FileExists(t, filepath.Join(pkgdir, "opt", "gin", "git-annex.linux", "git-annex"))

	// Control file with the version record substituted.
	control, err := os.ReadFile(filepath.Join(pkgdir, "DEBIAN", "control"))
	require.NoError(t, err)
	require.Contains(t, string(control), "Version: 1.2.3")
	require.Contains(t, string(control), "build 000042 commit abcdef")
	require.NotContains(t, string(control), "{version}")

	// Changelogs compressed, originals gone.
	docDir := filepath.Join(pkgdir, "usr", "share", "doc", "gin-cli")
	require.FileExists(t, filepath.Join(docDir, "changelog.gz"))
	require.FileExists(t, filepath.Join(docDir, "changelog.Debian.gz"))
	require.NoFileExists(t, filepath.Join(docDir, "changelog"))

	// Project license becomes the package copyright.
	copyright, err := os.ReadFile(filepath.Join(docDir, "copyright"))
	require.NoError(t, err)
	require.Equal(t, "gin license\n", string(copyright))
}

// TestWriteControlFile leaves no placeholder behind.
func TestWriteControlFile(t *testing.T) {
	t.Parallel()

	p := newTestPackager(t)

	dest := filepath.Join(t.TempDir(), "control")
	require.NoError(t, p.writeControlFile(dest))

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(contents), "{"), "unsubstituted placeholder in control file")
}
