// Package version exposes build metadata injected at link time and a
// cobra subcommand that prints it.
package version
