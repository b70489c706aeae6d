package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/G-Node/gin-release/internal/config"
	"github.com/G-Node/gin-release/internal/release"
)

// Packager assembles platform distributables from built binaries and
// fetched dependency artifacts.
type Packager struct {
	cfg *config.Config
	rec *release.Record
}

// New creates a Packager for one release run.
func New(cfg *config.Config, rec *release.Record) *Packager {
	return &Packager{cfg: cfg, rec: rec}
}

// bound derives a context limited by the configured tool timeout, so no
// external tool a packaging step drives can hang the run.
func (p *Packager) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.cfg.Timeout)
}

// archivePath composes the output path for an artifact of the given
// os-arch directory name, variant and extension.
func (p *Packager) archivePath(osarch, variant, ext string) string {
	name := release.ArchiveName(p.cfg.PackageName, p.rec.Version, osarch, variant, ext)
	return filepath.Join(p.cfg.PkgDir(), name)
}

// asset returns the path of a release collateral file.
func (p *Packager) asset(parts ...string) string {
	return filepath.Join(append([]string{p.cfg.AssetsDir}, parts...)...)
}

// osarch returns the <os>-<arch> directory name a binary was built into.
func osarch(binfile string) string {
	return filepath.Base(filepath.Dir(binfile))
}

// copyFile copies src to dst, preserving the source file mode. When dst
// is an existing directory the source basename is kept.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if dstInfo, statErr := os.Stat(dst); statErr == nil && dstInfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	return out.Close()
}

// replaceExisting removes a stale artifact so the new one can take its place.
func replaceExisting(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
