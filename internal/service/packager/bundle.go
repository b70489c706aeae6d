package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"

	"github.com/G-Node/gin-release/internal/archive"
	"github.com/G-Node/gin-release/internal/logger"
)

// MacBundle repackages the vendor git-annex application bundle with the
// gin binary inside it. The ordering is load-bearing: the plist rewrite
// happens after extraction and before archiving, and vendor files are
// renamed away before the project's own files take their place.
func (p *Packager) MacBundle(ctx context.Context, binfile, annexTar string) (result string, err error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	tmpdir, err := os.MkdirTemp("", "gin-macos-")
	if err != nil {
		return "", err
	}

	defer func() {
		_ = os.RemoveAll(tmpdir)
	}()

	if err = archive.UntarBz2(ctx, annexTar, tmpdir); err != nil {
		return "", err
	}

	pkgroot := filepath.Join(tmpdir, p.cfg.PackageName)
	if err = os.Mkdir(pkgroot, 0o755); err != nil {
		return "", err
	}

	approot := filepath.Join(pkgroot, p.cfg.PackageName+".app")
	if err = p.stageMacApp(tmpdir, pkgroot, approot, binfile); err != nil {
		return "", err
	}

	dest := p.archivePath(osarch(binfile), "bundle", "tar.gz")

	if err = replaceExisting(dest); err != nil {
		return "", err
	}

	logger.Info(ctx, "Creating macOS bundle")

	if err = archive.TarGz(ctx, dest, pkgroot, "."); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Created macOS bundle", "path", dest)

	return dest, nil
}

// stageMacApp mutates the extracted vendor bundle in place: renames it,
// swaps binaries, icon, metadata, license and README, and installs the
// launch script.
func (p *Packager) stageMacApp(tmpdir, pkgroot, approot, binfile string) error {
	if err := os.Rename(filepath.Join(tmpdir, "git-annex.app"), approot); err != nil {
		return fmt.Errorf("rename vendor app: %w", err)
	}

	vendorLicense := filepath.Join(pkgroot, "git-annex-LICENSE.txt")
	if err := os.Rename(filepath.Join(tmpdir, "LICENSE.txt"), vendorLicense); err != nil {
		return fmt.Errorf("move vendor license: %w", err)
	}

	macosDir := filepath.Join(approot, "Contents", "MacOS")
	bundleBinDir := filepath.Join(macosDir, "bundle")

	if err := copyFile(binfile, filepath.Join(bundleBinDir, filepath.Base(binfile))); err != nil {
		return fmt.Errorf("stage binary: %w", err)
	}

	if err := copyFile(p.asset("README.md"), filepath.Join(pkgroot, "GIN-README.md")); err != nil {
		return fmt.Errorf("stage GIN README: %w", err)
	}

	if err := os.Remove(filepath.Join(approot, "Contents", "Resources", "git-annex.icns")); err != nil {
		return fmt.Errorf("remove vendor icon: %w", err)
	}

	plistDest := filepath.Join(approot, "Contents", "Info.plist")
	if err := p.writeBundlePlist(plistDest); err != nil {
		return err
	}

	if err := copyFile(p.asset("LICENSE"), filepath.Join(pkgroot, "LICENSE.txt")); err != nil {
		return fmt.Errorf("stage license: %w", err)
	}

	// Vendor README moves aside before ours takes its name.
	vendorReadme := filepath.Join(macosDir, "git-annex-README")
	if err := os.Rename(filepath.Join(macosDir, "README"), vendorReadme); err != nil {
		return fmt.Errorf("move vendor README: %w", err)
	}

	if err := copyFile(p.asset("README.md"), filepath.Join(macosDir, "README")); err != nil {
		return fmt.Errorf("stage README: %w", err)
	}

	if err := copyFile(p.asset("scripts", "launch-macos.sh"), filepath.Join(macosDir, "launch")); err != nil {
		return fmt.Errorf("stage launch script: %w", err)
	}

	return nil
}

// writeBundlePlist renders the bundle metadata template with both version
// fields set to the release version, in the XML plist variant.
func (p *Packager) writeBundlePlist(dest string) error {
	template, err := os.ReadFile(p.asset("macapp", "gin-Info.plist"))
	if err != nil {
		return fmt.Errorf("read plist template: %w", err)
	}

	var info map[string]any
	if _, err = plist.Unmarshal(template, &info); err != nil {
		return fmt.Errorf("decode plist template: %w", err)
	}

	info["CFBundleVersion"] = p.rec.Version
	info["CFBundleShortVersionString"] = p.rec.Version

	rendered, err := plist.MarshalIndent(info, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("encode plist: %w", err)
	}

	return os.WriteFile(dest, rendered, 0o644)
}
