// Package command wraps exec.CommandContext with typed results.
//
// Every external tool the pipeline drives (go, git, tar, 7z, docker) is
// invoked through Run or RunChecked, so callers inspect exit status and
// captured output instead of ad hoc error checks.
package command
