package packager

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/G-Node/gin-release/internal/command"
	"github.com/G-Node/gin-release/internal/logger"
)

// containerSlot is a scoped handle on a named build container. Cleanup
// runs unconditionally before the build and again on every exit path, so
// no stale container blocks a re-run. The unique name suffix keeps
// concurrent builds from colliding.
type containerSlot struct {
	name  string
	image string
}

// newContainerSlot reserves a uniquely named slot for an image.
func newContainerSlot(prefix, image string) *containerSlot {
	return &containerSlot{
		name:  prefix + "-" + uuid.NewString()[:8],
		image: image,
	}
}

// cleanup kills and removes the container. Failures are expected when no
// container exists and are not escalated.
func (s *containerSlot) cleanup(ctx context.Context) {
	logger.Debugf(ctx, "Cleaning up container %s", s.name)

	for _, args := range [][]string{
		{"kill", s.name},
		{"container", "rm", s.name},
	} {
		result, err := command.Run(ctx, command.Spec{Name: "docker", Args: args})
		if err != nil {
			logger.Debugf(ctx, "docker %s: %v", args[0], err)
			continue
		}

		if resErr := result.Err(); resErr != nil {
			logger.Debugf(ctx, "docker %s: %v", args[0], resErr)
		}
	}
}

// build creates the image from the given docker context directory.
func (s *containerSlot) build(ctx context.Context, contextDir string) error {
	spec := command.Spec{
		Name: "docker",
		Args: []string{"build", "-t", s.image, contextDir},
	}

	if _, err := command.RunChecked(ctx, spec); err != nil {
		return fmt.Errorf("build image %s: %w", s.image, err)
	}

	return nil
}

// run starts the container with hostDir mounted at mountPoint and waits
// for it to finish.
func (s *containerSlot) run(ctx context.Context, hostDir, mountPoint string) error {
	spec := command.Spec{
		Name: "docker",
		Args: []string{
			"run", "--rm",
			"-v", hostDir + ":" + mountPoint,
			"--name", s.name,
			s.image,
		},
	}

	if _, err := command.RunChecked(ctx, spec); err != nil {
		return fmt.Errorf("run container %s: %w", s.name, err)
	}

	return nil
}
