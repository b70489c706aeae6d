package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/G-Node/gin-release/internal/logger"
)

// errNonZeroExit reports an external tool that ran but failed.
var errNonZeroExit = errors.New("command exited with non-zero status")

// Spec describes a single external-tool invocation.
type Spec struct {
	// Name is the executable to run, resolved via PATH.
	Name string
	// Args are the command arguments.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env are extra environment entries appended to the current environment.
	Env []string
}

// Result captures the outcome of an external-tool invocation.
type Result struct {
	// Spec is the invocation that produced this result.
	Spec Spec
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
	// ExitCode is the tool's exit status (0 on success).
	ExitCode int
}

// Err returns nil for a zero exit status and a diagnostic error otherwise.
func (r *Result) Err() error {
	if r.ExitCode == 0 {
		return nil
	}

	diag := strings.TrimSpace(r.Stderr)
	if diag == "" {
		diag = strings.TrimSpace(r.Stdout)
	}

	if diag == "" {
		return fmt.Errorf("%s: %w (exit %d)", r.Spec.Name, errNonZeroExit, r.ExitCode)
	}

	return fmt.Errorf("%s: %w (exit %d): %s", r.Spec.Name, errNonZeroExit, r.ExitCode, diag)
}

// String renders the invocation for log lines.
func (s Spec) String() string {
	return s.Name + " " + strings.Join(s.Args, " ")
}

// Run executes the spec and returns its typed result.
// The returned error is non-nil only when the tool could not be started or
// the context was cancelled; a tool that ran and failed is reported via
// Result.ExitCode and Result.Err.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	logger.Debugf(ctx, "> %s", spec)

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir

	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// ProcessState is nil when the tool never started.
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	result := &Result{
		Spec:     spec,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return result, fmt.Errorf("run %s: %w", spec.Name, err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("run %s: %w", spec.Name, ctxErr)
	}

	return result, nil
}

// RunChecked executes the spec and folds a non-zero exit status into the error.
func RunChecked(ctx context.Context, spec Spec) (*Result, error) {
	result, err := Run(ctx, spec)
	if err != nil {
		return result, err
	}

	return result, result.Err()
}
