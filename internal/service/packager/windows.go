package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/G-Node/gin-release/internal/archive"
	"github.com/G-Node/gin-release/internal/logger"
)

// Windows builds a zip bundle embedding the binary alongside extracted
// portable Git and git-annex tools. Member paths are relative to the
// staging root; no working-directory change is involved.
func (p *Packager) Windows(ctx context.Context, binfile, gitArchive, annexInstaller string) (result string, err error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	tmpdir, err := os.MkdirTemp("", "gin-windows-")
	if err != nil {
		return "", err
	}

	defer func() {
		_ = os.RemoveAll(tmpdir)
	}()

	pkgroot := filepath.Join(tmpdir, p.cfg.BinaryName)
	binDir := filepath.Join(pkgroot, "bin")
	gitDir := filepath.Join(pkgroot, "git")

	for _, dir := range []string{binDir, gitDir} {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	if err = copyFile(binfile, filepath.Join(binDir, filepath.Base(binfile))); err != nil {
		return "", fmt.Errorf("stage binary: %w", err)
	}

	if err = copyFile(p.asset("README.md"), filepath.Join(pkgroot, "README.md")); err != nil {
		return "", fmt.Errorf("stage README: %w", err)
	}

	shell := p.cfg.BinaryName + "-shell.bat"
	if err = copyFile(p.asset("scripts", shell), filepath.Join(pkgroot, shell)); err != nil {
		return "", fmt.Errorf("stage shell wrapper: %w", err)
	}

	if err = archive.Un7z(ctx, gitArchive, gitDir); err != nil {
		return "", fmt.Errorf("extract portable git: %w", err)
	}

	if err = archive.Un7z(ctx, annexInstaller, gitDir); err != nil {
		return "", fmt.Errorf("extract annex installer: %w", err)
	}

	dest := p.archivePath(osarch(binfile), "", "zip")

	if err = replaceExisting(dest); err != nil {
		return "", err
	}

	logger.Info(ctx, "Creating Windows zip file")

	if err = archive.Zip(dest, pkgroot); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Created Windows bundle", "path", dest)

	return dest, nil
}
