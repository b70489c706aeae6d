package packager

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/G-Node/gin-release/internal/archive"
)

// writeZipFixture creates a small archive 7z can extract, standing in for
// a portable tool package.
func writeZipFixture(t *testing.T, path string, files map[string]string) {
	t.Helper()

	root := t.TempDir()
	for name, contents := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
	}

	require.NoError(t, archive.Zip(path, root))
}

// TestWindowsBundle assembles a zip with the binary, wrapper script and
// extracted portable tools, all under relative paths.
func TestWindowsBundle(t *testing.T) {
	t.Parallel()
	requireTool(t, "7z")

	p := newTestPackager(t)
	ctx := context.Background()

	bin := writeBinary(t, p, "windows-386", "gin.exe")

	gitPkg := filepath.Join(t.TempDir(), "PortableGit-32-bit.7z.exe")
	writeZipFixture(t, gitPkg, map[string]string{"cmd/git.exe": "git"})

	annexPkg := filepath.Join(t.TempDir(), "git-annex-installer.exe")
	writeZipFixture(t, annexPkg, map[string]string{"annex/git-annex.exe": "annex"})

	path, err := p.Windows(ctx, bin, gitPkg, annexPkg)
	require.NoError(t, err)
	require.Equal(t, "gin-cli-1.2.3-windows-386.zip", filepath.Base(path))

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer func() {
		_ = reader.Close()
	}()

	names := make(map[string]bool, len(reader.File))
	for _, file := range reader.File {
		names[file.Name] = true
	}

	require.True(t, names["bin/gin.exe"])
	require.True(t, names["README.md"])
	require.True(t, names["gin-shell.bat"])
	require.True(t, names["git/cmd/git.exe"])
	require.True(t, names["git/annex/git-annex.exe"])
}
