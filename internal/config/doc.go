// Package config defines the release pipeline settings and provides
// helpers to load, validate and save them in YAML format.
//
// Every field has a default matching the standard gin-cli release, so a
// missing settings file is not an error.
package config
