package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/G-Node/gin-release/internal/vcs"
)

// versionPattern matches the version line of the descriptor file.
var versionPattern = regexp.MustCompile(`version=(.*)`)

// errNoVersionLine is returned when the descriptor has no version= line.
var errNoVersionLine = errors.New("no version line in descriptor")

// Record is the immutable version triple stamped into binaries and packages.
type Record struct {
	// Version is the semantic version from the descriptor file.
	Version string
	// Build is the commit-count ordinal, zero-padded to six digits.
	Build string
	// Commit is the full hash of the released commit.
	Commit string
}

// Describe derives the release record from the version descriptor and the
// git history of the source checkout.
func Describe(ctx context.Context, versionFile, sourceDir string) (*Record, error) {
	version, err := ParseVersionFile(versionFile)
	if err != nil {
		return nil, err
	}

	count, err := vcs.CommitCount(ctx, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("commit count: %w", err)
	}

	commit, err := vcs.Commit(ctx, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("commit hash: %w", err)
	}

	return &Record{
		Version: version,
		Build:   fmt.Sprintf("%06d", count),
		Commit:  commit,
	}, nil
}

// ParseVersionFile extracts the semantic version from a descriptor file
// containing a version=X.Y.Z line.
func ParseVersionFile(path string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read version descriptor: %w", err)
	}

	match := versionPattern.FindSubmatch(contents)
	if match == nil {
		return "", fmt.Errorf("%s: %w", path, errNoVersionLine)
	}

	version := strings.TrimSpace(string(match[1]))
	if version == "" {
		return "", fmt.Errorf("%s: %w", path, errNoVersionLine)
	}

	return version, nil
}

// LDFlags renders the link-time variable assignments that burn the record
// into the gin binary.
func (r *Record) LDFlags() string {
	return fmt.Sprintf("-X main.gincliversion=%s -X main.build=%s -X main.commit=%s",
		r.Version, r.Build, r.Commit)
}

// String renders the record for log lines.
func (r *Record) String() string {
	return fmt.Sprintf("Version: %s Build: %s Commit: %s", r.Version, r.Build, r.Commit)
}

// ArchiveName composes a package filename: <pkg>-<version>-<osarch>[-variant].<ext>.
// The darwin OS name is spelled macos in artifact names.
func ArchiveName(pkg, version, osarch, variant, ext string) string {
	osarch = strings.Replace(osarch, "darwin", "macos", 1)

	name := fmt.Sprintf("%s-%s-%s", pkg, version, osarch)
	if variant != "" {
		name += "-" + variant
	}

	return name + "." + ext
}

// LatestName returns the path with the version part replaced by "latest".
func LatestName(path, version string) string {
	dir, base := filepath.Split(path)
	return dir + strings.Replace(base, version, "latest", 1)
}
