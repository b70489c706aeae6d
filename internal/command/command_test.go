package command

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireTool skips the test when the named tool is not installed.
func requireTool(t *testing.T, name string) {
	t.Helper()

	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// TestRunCapturesOutput checks stdout capture and a zero exit status.
func TestRunCapturesOutput(t *testing.T) {
	t.Parallel()
	requireTool(t, "sh")

	result, err := Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo hello"},
	})
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "hello\n", result.Stdout)
	require.NoError(t, result.Err())
}

// TestRunNonZeroExit ensures a failing tool is reported via the result, not the run error.
func TestRunNonZeroExit(t *testing.T) {
	t.Parallel()
	requireTool(t, "sh")

	result, err := Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.ExitCode)
	require.ErrorContains(t, result.Err(), "broken")

	_, err = RunChecked(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "exit 1"},
	})
	require.Error(t, err)
}

// TestRunCanceledContext surfaces context cancellation as a run error.
func TestRunCanceledContext(t *testing.T) {
	t.Parallel()
	requireTool(t, "sh")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Spec{Name: "sh", Args: []string{"-c", "echo hello"}})
	require.ErrorIs(t, err, context.Canceled)
}

// TestRunMissingTool ensures a tool that cannot start yields a run error.
func TestRunMissingTool(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Spec{Name: "definitely-not-a-real-tool"})
	require.Error(t, err)
}
