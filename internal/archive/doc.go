// Package archive creates and extracts the archive formats the release
// pipeline deals in.
//
// tar and 7z operations shell out to the external tools with explicit
// base-directory arguments (-C, -o). Zip creation is done in-process so
// relative member paths never require a working-directory change.
package archive
