package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/G-Node/gin-release/internal/archive"
	"github.com/G-Node/gin-release/internal/logger"
)

// debBuildMount is where the staging directory is mounted inside the
// build container; the makedeb script expects it.
const debBuildMount = "/debbuild"

// Debian produces a .deb embedding the binary and the git-annex
// standalone tree under /opt/<binary>. The actual dpkg invocation runs in
// an isolated container with the staging directory mounted.
func (p *Packager) Debian(ctx context.Context, binfile, annexArchive string) (result string, err error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	tmpdir, err := os.MkdirTemp(debTempRoot(), "gin-linux-")
	if err != nil {
		return "", err
	}

	defer func() {
		_ = os.RemoveAll(tmpdir)
	}()

	if err = copyFile(p.asset("scripts", "makedeb"), tmpdir); err != nil {
		return "", fmt.Errorf("stage makedeb: %w", err)
	}

	pkgdir := filepath.Join(tmpdir, p.cfg.PackageName)
	if err = p.stageDebianTree(ctx, pkgdir, binfile, annexArchive); err != nil {
		return "", err
	}

	slot := newContainerSlot(p.cfg.ContainerPrefix, p.cfg.DockerImage)

	// Unconditional pre-clean, and again on every exit path.
	slot.cleanup(ctx)
	defer slot.cleanup(ctx)

	logger.Info(ctx, "Preparing docker image for debian build")

	if err = slot.build(ctx, p.asset(p.cfg.DockerContext)); err != nil {
		return "", err
	}

	mountDir, err := filepath.Abs(tmpdir)
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "Running debian build script")

	if err = slot.run(ctx, mountDir, debBuildMount); err != nil {
		return "", err
	}

	built := filepath.Join(tmpdir, p.cfg.PackageName+".deb")
	dest := filepath.Join(p.cfg.PkgDir(), fmt.Sprintf("%s-%s.deb", p.cfg.PackageName, p.rec.Version))

	if err = replaceExisting(dest); err != nil {
		return "", err
	}

	if err = copyFile(built, dest); err != nil {
		return "", fmt.Errorf("collect deb: %w", err)
	}

	logger.InfoKV(ctx, "Created debian package", "path", dest)

	return dest, nil
}

// stageDebianTree assembles the package filesystem layout:
//
//	DEBIAN/control                      (version substituted)
//	opt/<bin>/bin/{<bin>, <bin>.sh}
//	opt/<bin>/README.md
//	opt/<bin>/git-annex.linux/...      (extracted standalone)
//	usr/local/bin/<bin> -> /opt/<bin>/bin/<bin>.sh
//	usr/share/doc/<pkg>/{copyright, changelog.gz, changelog.Debian.gz}
func (p *Packager) stageDebianTree(ctx context.Context, pkgdir, binfile, annexArchive string) error {
	bin := p.cfg.BinaryName

	debcapDir := filepath.Join(pkgdir, "DEBIAN")
	optBinDir := filepath.Join(pkgdir, "opt", bin, "bin")
	usrLocalBinDir := filepath.Join(pkgdir, "usr", "local", "bin")
	docDir := filepath.Join(pkgdir, "usr", "share", "doc", p.cfg.PackageName)

	for _, dir := range []string{debcapDir, optBinDir, usrLocalBinDir, docDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	wrapper := bin + ".sh"

	if err := copyFile(binfile, filepath.Join(optBinDir, filepath.Base(binfile))); err != nil {
		return fmt.Errorf("stage binary: %w", err)
	}

	if err := copyFile(p.asset("scripts", wrapper), filepath.Join(optBinDir, wrapper)); err != nil {
		return fmt.Errorf("stage wrapper script: %w", err)
	}

	wrapperTarget := "/opt/" + bin + "/bin/" + wrapper
	if err := os.Symlink(wrapperTarget, filepath.Join(usrLocalBinDir, bin)); err != nil {
		return fmt.Errorf("link %s: %w", bin, err)
	}

	if err := copyFile(p.asset("README.md"), filepath.Join(pkgdir, "opt", bin, "README.md")); err != nil {
		return fmt.Errorf("stage README: %w", err)
	}

	if err := p.writeControlFile(filepath.Join(debcapDir, "control")); err != nil {
		return err
	}

	if err := copyFile(p.asset("LICENSE"), filepath.Join(docDir, "copyright")); err != nil {
		return fmt.Errorf("stage copyright: %w", err)
	}

	for _, changelog := range []string{"changelog", "changelog.Debian"} {
		staged := filepath.Join(docDir, changelog)

		if err := copyFile(p.asset(p.cfg.DockerContext, "debian", changelog), staged); err != nil {
			return fmt.Errorf("stage %s: %w", changelog, err)
		}

		if err := archive.GzipFile(staged); err != nil {
			return err
		}
	}

	if err := archive.UntarGz(ctx, annexArchive, filepath.Join(pkgdir, "opt", bin)); err != nil {
		return fmt.Errorf("extract annex standalone: %w", err)
	}

	return nil
}

// writeControlFile renders the package control template with the version
// record substituted.
func (p *Packager) writeControlFile(dest string) error {
	template, err := os.ReadFile(p.asset(p.cfg.DockerContext, "debian", "control"))
	if err != nil {
		return fmt.Errorf("read control template: %w", err)
	}

	replacer := strings.NewReplacer(
		"{version}", p.rec.Version,
		"{build}", p.rec.Build,
		"{commit}", p.rec.Commit,
	)

	return os.WriteFile(dest, []byte(replacer.Replace(string(template))), 0o644)
}

// debTempRoot keeps the staging directory under /tmp on macOS hosts:
// docker cannot mount the default /var/folders temp root.
func debTempRoot() string {
	if runtime.GOOS == "darwin" {
		return "/tmp"
	}

	return ""
}
