// Package builder cross-compiles the gin binary for every configured
// target triple with the release record injected at link time.
package builder
