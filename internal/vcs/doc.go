// Package vcs queries git history for the source checkout being released.
package vcs
