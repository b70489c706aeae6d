package archive

import (
	"context"
	"fmt"

	"github.com/G-Node/gin-release/internal/command"
)

// TarGz creates dest as a gzipped tarball of the named entries, with
// member paths relative to baseDir.
func TarGz(ctx context.Context, dest, baseDir string, names ...string) error {
	args := append([]string{"-czf", dest, "-C", baseDir}, names...)

	if _, err := command.RunChecked(ctx, command.Spec{Name: "tar", Args: args}); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	return nil
}

// UntarGz extracts a gzipped tarball into destDir.
func UntarGz(ctx context.Context, src, destDir string) error {
	return untar(ctx, "-xzf", src, destDir)
}

// UntarBz2 extracts a bzip2 tarball into destDir.
func UntarBz2(ctx context.Context, src, destDir string) error {
	return untar(ctx, "-xjf", src, destDir)
}

func untar(ctx context.Context, mode, src, destDir string) error {
	spec := command.Spec{
		Name: "tar",
		Args: []string{mode, src, "-C", destDir},
	}

	if _, err := command.RunChecked(ctx, spec); err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}

	return nil
}

// Un7z extracts a 7z-readable archive (including self-extracting
// installers) into destDir.
func Un7z(ctx context.Context, src, destDir string) error {
	spec := command.Spec{
		Name: "7z",
		Args: []string{"x", "-y", "-o" + destDir, src},
	}

	if _, err := command.RunChecked(ctx, spec); err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}

	return nil
}
