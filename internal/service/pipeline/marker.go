package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"

	"github.com/G-Node/gin-release/internal/logger"
)

// markerFilename marks a release run in progress to avoid parallel
// execution against the same output directory.
const markerFilename = "release-marker.bin"

// errAlreadyRunning indicates another release run holds the marker.
var errAlreadyRunning = errors.New("another release run is in progress")

// acquireRunGuard creates the run marker and returns its release
// function. A marker left behind by a crashed run is removed when no
// other release process is alive.
func acquireRunGuard(ctx context.Context, path string) (func(), error) {
	if _, err := os.Stat(path); err == nil {
		if otherReleaseRunning() {
			return nil, errAlreadyRunning
		}

		logger.Warn(ctx, "Removing stale release marker")

		if err = os.Remove(path); err != nil {
			return nil, err
		}
	}

	marker, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if err = marker.Close(); err != nil {
		return nil, err
	}

	return func() {
		_ = os.Remove(path)
	}, nil
}

// otherReleaseRunning reports whether a second process with our
// executable name is alive.
func otherReleaseRunning() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	name := filepath.Base(exe)

	processes, err := ps.Processes()
	if err != nil {
		return false
	}

	self := os.Getpid()

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if process.Executable() == name {
			return true
		}
	}

	return false
}
