package vcs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/G-Node/gin-release/internal/command"
)

// queryTimeout bounds a single git history query.
const queryTimeout = 10 * time.Second

// errEmptyOutput is returned when git produces no usable output.
var errEmptyOutput = errors.New("empty git output")

// CommitCount returns the number of commits reachable from HEAD in dir.
// It serves as a monotonic build ordinal.
func CommitCount(ctx context.Context, dir string) (int, error) {
	out, err := git(ctx, dir, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parse commit count %q: %w", out, err)
	}

	return count, nil
}

// Commit returns the full hash of HEAD in dir.
func Commit(ctx context.Context, dir string) (string, error) {
	return git(ctx, dir, "rev-parse", "HEAD")
}

// git runs a git subcommand in dir and returns its trimmed stdout.
func git(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := command.RunChecked(ctx, command.Spec{
		Name: "git",
		Args: args,
		Dir:  dir,
	})
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), errEmptyOutput)
	}

	return out, nil
}
