package packager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/G-Node/gin-release/internal/archive"
	"github.com/G-Node/gin-release/internal/logger"
)

// PlainTarball archives a built binary together with the README, with
// member paths relative to the binary's directory. It serves both the
// Linux and the macOS plain outputs; the artifact name spells darwin as
// macos.
func (p *Packager) PlainTarball(ctx context.Context, binfile string) (string, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	dir := filepath.Dir(binfile)

	if err := copyFile(p.asset("README.md"), filepath.Join(dir, "README.md")); err != nil {
		return "", fmt.Errorf("stage README: %w", err)
	}

	dest := p.archivePath(osarch(binfile), "", "tar.gz")

	if err := replaceExisting(dest); err != nil {
		return "", err
	}

	if err := archive.TarGz(ctx, dest, dir, filepath.Base(binfile), "README.md"); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Created tarball", "path", dest)

	return dest, nil
}
