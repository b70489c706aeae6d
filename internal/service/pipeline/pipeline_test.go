package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunGuardLifecycle acquires the marker, verifies it exists, and
// releases it.
func TestRunGuardLifecycle(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), markerFilename)
	ctx := context.Background()

	releaseGuard, err := acquireRunGuard(ctx, path)
	require.NoError(t, err)
	require.FileExists(t, path)

	releaseGuard()
	require.NoFileExists(t, path)
}

// TestRunGuardStaleMarker removes a marker left behind by a dead run.
func TestRunGuardStaleMarker(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), markerFilename)
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	releaseGuard, err := acquireRunGuard(context.Background(), path)
	require.NoError(t, err)

	releaseGuard()
}

// TestPickBySubstring selects variants and reports missing ones.
func TestPickBySubstring(t *testing.T) {
	t.Parallel()

	items := []string{
		"dist/downloads/PortableGit-32-bit.7z.exe",
		"dist/downloads/PortableGit-64-bit.7z.exe",
	}

	got, err := pickBySubstring(items, "64-bit")
	require.NoError(t, err)
	require.Equal(t, items[1], got)

	_, err = pickBySubstring(items, "arm64")
	require.ErrorIs(t, err, errNoMatch)
}
