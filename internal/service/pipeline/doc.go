// Package pipeline orchestrates the release run:
// build -> fetch dependencies -> package each platform -> alias outputs.
//
// Compiler failures and artifact-count violations abort the run;
// individual download or packaging failures only skip their artifact.
package pipeline
