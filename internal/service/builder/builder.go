package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/G-Node/gin-release/internal/command"
	"github.com/G-Node/gin-release/internal/config"
	"github.com/G-Node/gin-release/internal/logger"
	"github.com/G-Node/gin-release/internal/release"
)

// errUnexpectedBinaryCount is returned when a target OS did not produce
// exactly as many binaries as configured.
var errUnexpectedBinaryCount = errors.New("unexpected binary count")

// Build cross-compiles one binary per configured target triple, burning
// the release record in via ldflags. Output goes to
// <dest>/<os>-<arch>/<binary>. Any compile failure aborts the run.
func Build(ctx context.Context, cfg *config.Config, rec *release.Record) ([]string, error) {
	logger.Infof(ctx, "Building %s for %s", cfg.BinaryName, strings.Join(cfg.Platforms, ", "))

	binaries := make([]string, 0, len(cfg.Platforms))

	for _, platform := range cfg.Platforms {
		outPath, err := buildOne(ctx, cfg, rec, platform)
		if err != nil {
			return nil, err
		}

		binaries = append(binaries, outPath)
	}

	logger.Infof(ctx, "Build succeeded, the following files were built:\n%s",
		strings.Join(binaries, "\n"))
	reportHostVersion(ctx, cfg.Timeout, binaries)

	return binaries, nil
}

// buildOne compiles a single target triple under the configured tool timeout.
func buildOne(ctx context.Context, cfg *config.Config, rec *release.Record, platform string) (string, error) {
	osName, arch, _ := strings.Cut(platform, "/")

	outDir := filepath.Join(cfg.DestDir, osName+"-"+arch)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", outDir, err)
	}

	outPath := filepath.Join(outDir, BinaryName(cfg.BinaryName, osName))

	// go build runs in the source dir, so the output path must not
	// depend on it.
	outAbs, err := filepath.Abs(outPath)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	spec := command.Spec{
		Name: "go",
		Args: []string{"build", "-o", outAbs, "-ldflags", rec.LDFlags(), "."},
		Dir:  cfg.SourceDir,
		Env:  []string{"GOOS=" + osName, "GOARCH=" + arch, "CGO_ENABLED=0"},
	}

	if _, err = command.RunChecked(ctx, spec); err != nil {
		return "", fmt.Errorf("build %s: %w", platform, err)
	}

	return outPath, nil
}

// BinaryName returns the binary filename for a target OS.
func BinaryName(base, osName string) string {
	if osName == "windows" {
		return base + ".exe"
	}

	return base
}

// GroupByOS buckets binaries by target OS, derived from their
// <os>-<arch> directory.
func GroupByOS(binaries []string) map[string][]string {
	groups := make(map[string][]string, 3)

	for _, binary := range binaries {
		osName, _, _ := strings.Cut(filepath.Base(filepath.Dir(binary)), "-")
		groups[osName] = append(groups[osName], binary)
	}

	return groups
}

// CheckCounts verifies that each target OS produced exactly as many
// binaries as the configured platforms require. Every mismatch is fatal.
func CheckCounts(platforms []string, groups map[string][]string) error {
	expected := make(map[string]int, 3)

	for _, platform := range platforms {
		osName, _, _ := strings.Cut(platform, "/")
		expected[osName]++
	}

	for osName, want := range expected {
		if got := len(groups[osName]); got != want {
			return fmt.Errorf("%w for %s: got %d, want %d", errUnexpectedBinaryCount, osName, got, want)
		}
	}

	return nil
}

// reportHostVersion runs the host platform's freshly built binary with
// --version and logs what it reports.
func reportHostVersion(ctx context.Context, timeout time.Duration, binaries []string) {
	hostTriple := runtime.GOOS + "-" + runtime.GOARCH

	for _, binary := range binaries {
		if filepath.Base(filepath.Dir(binary)) != hostTriple {
			continue
		}

		queryCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := command.RunChecked(queryCtx, command.Spec{Name: binary, Args: []string{"--version"}})
		cancel()

		if err != nil {
			logger.Warnf(ctx, "Could not query %s --version: %v", binary, err)
			continue
		}

		logger.Infof(ctx, "%s --version -> %s", binary, strings.TrimSpace(result.Stdout))
	}
}
