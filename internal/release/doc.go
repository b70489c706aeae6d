// Package release derives the version record for a run and names the
// artifacts produced from it.
//
// The record is read once at build time (descriptor file plus git
// history) and threaded through the pipeline as an immutable value.
package release
