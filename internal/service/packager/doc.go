// Package packager assembles the platform distributables: Linux tarball
// and Debian package, macOS tarball and application bundle, Windows zip
// bundles, plus the version-independent "latest" aliases.
//
// Each output is independent; a failure skips only that artifact. Every
// packager stages into its own temporary directory, removed on all exit
// paths.
package packager
