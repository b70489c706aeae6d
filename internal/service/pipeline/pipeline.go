package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/G-Node/gin-release/internal/config"
	"github.com/G-Node/gin-release/internal/fetch"
	"github.com/G-Node/gin-release/internal/logger"
	"github.com/G-Node/gin-release/internal/release"
	"github.com/G-Node/gin-release/internal/service/builder"
	"github.com/G-Node/gin-release/internal/service/packager"
)

// Options contains inputs for the pipeline entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML
	// (defaults to gin-release.yaml; a missing file means defaults).
	ConfigPath string
}

// artifact is one successfully produced archive, kept for the summary.
type artifact struct {
	label string
	path  string
}

var (
	// errWrongGitArchiveCount is returned when the release-listing lookup
	// did not yield exactly the 32- and 64-bit portable Git archives.
	errWrongGitArchiveCount = errors.New("wrong number of portable Git archives")
	// errNoMatch is returned when an expected artifact variant is missing.
	errNoMatch = errors.New("no matching artifact")
	// errMissingBinaries is returned when a target OS the packagers need
	// produced no binaries at all.
	errMissingBinaries = errors.New("no binaries built")
)

// Run executes the whole release pipeline:
// build -> fetch dependencies -> package each platform -> alias outputs.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "gin-release")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.DownloadsDir(), cfg.PkgDir()} {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	releaseGuard, err := acquireRunGuard(ctx, filepath.Join(cfg.DestDir, markerFilename))
	if err != nil {
		return err
	}

	defer releaseGuard()

	rec, err := release.Describe(ctx, cfg.VersionFile(), cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("derive version record: %w", err)
	}

	logger.Info(ctx, rec.String())

	binaries, err := builder.Build(ctx, cfg, rec)
	if err != nil {
		return err
	}

	groups := builder.GroupByOS(binaries)
	if err = builder.CheckCounts(cfg.Platforms, groups); err != nil {
		return err
	}

	deps := fetchDependencies(ctx, cfg)

	if len(deps.winGit) != 2 {
		return fmt.Errorf("%w: got %d, want 2", errWrongGitArchiveCount, len(deps.winGit))
	}

	logger.Info(ctx, "Ready to package")

	artifacts, err := packageAll(ctx, cfg, rec, groups, deps)
	if err != nil {
		return err
	}

	pkgr := packager.New(cfg, rec)
	for _, a := range artifacts {
		if aliasErr := pkgr.LinkLatest(ctx, a.path); aliasErr != nil {
			logger.Warnf(ctx, "Aliasing %s failed: %v", a.path, aliasErr)
		}
	}

	printSummary(ctx, artifacts)

	return nil
}

// dependencies holds the fetched third-party artifacts; empty strings
// mean the artifact is absent and the consuming packager is skipped.
type dependencies struct {
	annexSA  string
	winGit   []string
	winAnnex string
	macAnnex string
}

// fetchDependencies downloads all external artifacts with etag caching.
// Individual download failures are logged, not fatal.
func fetchDependencies(ctx context.Context, cfg *config.Config) *dependencies {
	cache, err := fetch.LoadETags(cfg.ETagFile())
	if err != nil {
		logger.Warnf(ctx, "Ignoring unreadable etag cache: %v", err)
		cache = fetch.NewETagCache(cfg.ETagFile())
	}

	fetcher := fetch.New(cfg.DownloadsDir(), cache, cfg.Timeout)
	deps := &dependencies{}

	deps.annexSA, err = fetcher.Download(ctx, cfg.AnnexSAURL, "")
	if err != nil {
		logger.ErrorKV(ctx, "Annex standalone download failed, skipping", "error", err)
		deps.annexSA = ""
	}

	deps.winGit, err = fetcher.LatestAssets(ctx, cfg.GitForWindowsAPI, cfg.GitForWindowsFilter)
	if err != nil {
		logger.ErrorKV(ctx, "Portable Git lookup failed", "error", err)
		deps.winGit = nil
	}

	if path, ok := fetcher.Prestaged(ctx, cfg.AnnexInstallerName); ok {
		deps.winAnnex = path
	}

	if path, ok := fetcher.Prestaged(ctx, cfg.MacAnnexName); ok {
		deps.macAnnex = path
	}

	if err = cache.Save(); err != nil {
		logger.Warnf(ctx, "Could not save etag cache: %v", err)
	}

	return deps
}

// packageAll runs every packager. Per-artifact failures are logged and
// that output is skipped; only malformed inputs abort.
func packageAll(
	ctx context.Context,
	cfg *config.Config,
	rec *release.Record,
	groups map[string][]string,
	deps *dependencies,
) ([]artifact, error) {
	for _, osName := range []string{"linux", "darwin", "windows"} {
		if len(groups[osName]) == 0 {
			return nil, fmt.Errorf("%w for %s", errMissingBinaries, osName)
		}
	}

	pkgr := packager.New(cfg, rec)
	artifacts := make([]artifact, 0, 6)

	collect := func(label, path string, err error) {
		if err != nil {
			logger.ErrorKV(ctx, "Packaging step failed", "artifact", label, "error", err)
			return
		}

		artifacts = append(artifacts, artifact{label: label, path: path})
	}

	linuxBin := groups["linux"][0]
	darwinBin := groups["darwin"][0]

	path, err := pkgr.PlainTarball(ctx, linuxBin)
	collect("Linux tarball", path, err)

	if deps.annexSA == "" {
		logger.Warn(ctx, "Skipping Debian package: annex standalone is absent")
	} else {
		path, err = pkgr.Debian(ctx, linuxBin, deps.annexSA)
		collect("Debian package", path, err)
	}

	path, err = pkgr.PlainTarball(ctx, darwinBin)
	collect("macOS tarball", path, err)

	if deps.macAnnex == "" {
		logger.Warn(ctx, "Skipping macOS bundle: pre-staged annex tarball is absent")
	} else {
		path, err = pkgr.MacBundle(ctx, darwinBin, deps.macAnnex)
		collect("macOS bundle", path, err)
	}

	if deps.winAnnex == "" {
		logger.Warn(ctx, "Skipping Windows bundles: annex installer is absent")
		return artifacts, nil
	}

	win32Bin, err := pickBySubstring(groups["windows"], "386")
	if err != nil {
		return nil, fmt.Errorf("32-bit Windows binary: %w", err)
	}

	win64Bin, err := pickBySubstring(groups["windows"], "amd64")
	if err != nil {
		return nil, fmt.Errorf("64-bit Windows binary: %w", err)
	}

	git32, err := pickBySubstring(deps.winGit, "32-bit")
	if err != nil {
		return nil, fmt.Errorf("32-bit portable Git: %w", err)
	}

	git64, err := pickBySubstring(deps.winGit, "64-bit")
	if err != nil {
		return nil, fmt.Errorf("64-bit portable Git: %w", err)
	}

	path, err = pkgr.Windows(ctx, win32Bin, git32, deps.winAnnex)
	collect("Windows 32-bit bundle", path, err)

	path, err = pkgr.Windows(ctx, win64Bin, git64, deps.winAnnex)
	collect("Windows 64-bit bundle", path, err)

	return artifacts, nil
}

// pickBySubstring returns the first item containing substr.
func pickBySubstring(items []string, substr string) (string, error) {
	for _, item := range items {
		if strings.Contains(item, substr) {
			return item, nil
		}
	}

	return "", fmt.Errorf("%w: %q", errNoMatch, substr)
}

// printSummary lists exactly the archives that were produced.
func printSummary(ctx context.Context, artifacts []artifact) {
	var b strings.Builder

	b.WriteString("------------------------------------------------\n")
	b.WriteString("The following archives and packages were created\n")
	b.WriteString("------------------------------------------------")

	for _, a := range artifacts {
		b.WriteString("\n")
		b.WriteString(a.label)
		b.WriteString(":\n> ")
		b.WriteString(a.path)
	}

	logger.Info(ctx, b.String())
}
