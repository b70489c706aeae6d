package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the release pipeline settings.
type Config struct {
	// PackageName is the distribution name used in archive filenames (e.g. gin-cli).
	PackageName string `yaml:"package_name"`
	// BinaryName is the name of the compiled binary without extension (e.g. gin).
	BinaryName string `yaml:"binary_name"`
	// SourceDir is the root of the source checkout to build and query VCS history in.
	SourceDir string `yaml:"source_dir"`
	// DestDir is the output directory holding binaries, downloads and packages.
	DestDir string `yaml:"dest_dir"`
	// Platforms lists target triples as os/arch pairs.
	Platforms []string `yaml:"platforms"`
	// AnnexSAURL is the download URL for the git-annex standalone tarball (Linux).
	AnnexSAURL string `yaml:"annex_standalone_url"`
	// GitForWindowsAPI is the release-listing API URL for portable Git archives.
	GitForWindowsAPI string `yaml:"git_for_windows_api"`
	// GitForWindowsFilter is the asset-name substring selecting portable Git archives.
	GitForWindowsFilter string `yaml:"git_for_windows_filter"`
	// AnnexInstallerName is the pre-staged Windows git-annex installer filename.
	AnnexInstallerName string `yaml:"annex_installer_name"`
	// MacAnnexName is the pre-staged macOS git-annex tarball filename.
	MacAnnexName string `yaml:"mac_annex_name"`
	// DockerImage is the image tag for the Debian build container.
	DockerImage string `yaml:"docker_image"`
	// ContainerPrefix is the name prefix for Debian build containers.
	ContainerPrefix string `yaml:"container_prefix"`
	// DockerContext is the docker build context directory for the Debian image.
	DockerContext string `yaml:"docker_context"`
	// AssetsDir is the directory holding release collateral (scripts, debdock, macapp).
	AssetsDir string `yaml:"assets_dir"`
	// Timeout bounds each download, each compile, and each packaging step's
	// external tooling.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for pipeline settings.
	DefaultConfigFilename = "gin-release.yaml"

	// DefaultTimeout bounds downloads and external-tool invocations.
	DefaultTimeout = 15 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadPlatform is returned for target triples not shaped like os/arch.
	errBadPlatform = errors.New("platform must be an os/arch pair")
)

// defaultPlatforms are the target triples gin-cli releases are built for.
func defaultPlatforms() []string {
	return []string{"linux/amd64", "windows/386", "windows/amd64", "darwin/amd64"}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Settings file is optional, defaults cover the standard release.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset fields and checks formats.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.PackageName == "" {
		cfg.PackageName = "gin-cli"
	}

	if cfg.BinaryName == "" {
		cfg.BinaryName = "gin"
	}

	if cfg.SourceDir == "" {
		cfg.SourceDir = "."
	}

	if cfg.DestDir == "" {
		cfg.DestDir = "dist"
	}

	if len(cfg.Platforms) == 0 {
		cfg.Platforms = defaultPlatforms()
	}

	for _, platform := range cfg.Platforms {
		osName, arch, found := strings.Cut(platform, "/")
		if !found || osName == "" || arch == "" {
			return fmt.Errorf("%q: %w", platform, errBadPlatform)
		}
	}

	if cfg.AnnexSAURL == "" {
		cfg.AnnexSAURL = "https://downloads.kitenet.net/git-annex/linux/current/" +
			"git-annex-standalone-amd64.tar.gz"
	}

	if cfg.GitForWindowsAPI == "" {
		cfg.GitForWindowsAPI = "https://api.github.com/repos/git-for-windows/git/releases/latest"
	}

	if cfg.GitForWindowsFilter == "" {
		cfg.GitForWindowsFilter = "PortableGit"
	}

	if cfg.AnnexInstallerName == "" {
		cfg.AnnexInstallerName = "git-annex-installer.exe"
	}

	if cfg.MacAnnexName == "" {
		cfg.MacAnnexName = "git-annex-latest-macos.tar.bz2"
	}

	if cfg.DockerImage == "" {
		cfg.DockerImage = "gin-deb"
	}

	if cfg.ContainerPrefix == "" {
		cfg.ContainerPrefix = "gin-deb-build"
	}

	if cfg.DockerContext == "" {
		cfg.DockerContext = "debdock"
	}

	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "."
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	for _, raw := range []string{cfg.AnnexSAURL, cfg.GitForWindowsAPI} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid download URL: %w", err)
		}
	}

	return nil
}

// DownloadsDir returns the directory fetched artifacts are stored in.
func (c *Config) DownloadsDir() string {
	return filepath.Join(c.DestDir, "downloads")
}

// PkgDir returns the directory final archives are written to.
func (c *Config) PkgDir() string {
	return filepath.Join(c.DestDir, "pkg")
}

// ETagFile returns the path of the persisted etag cache.
func (c *Config) ETagFile() string {
	return filepath.Join(c.DestDir, "etags")
}

// VersionFile returns the path of the version descriptor in the source tree.
func (c *Config) VersionFile() string {
	return filepath.Join(c.SourceDir, "version")
}
