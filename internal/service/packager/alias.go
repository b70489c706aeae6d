package packager

import (
	"context"
	"fmt"
	"os"

	"github.com/G-Node/gin-release/internal/logger"
	"github.com/G-Node/gin-release/internal/release"
)

// LinkLatest hard-links an artifact to its version-independent alias,
// replacing any previous alias. Re-running for the same version is safe.
func (p *Packager) LinkLatest(ctx context.Context, path string) error {
	latest := release.LatestName(path, p.rec.Version)
	logger.Infof(ctx, "Linking %s to %s", path, latest)

	if _, err := os.Lstat(latest); err == nil {
		if err = os.Remove(latest); err != nil {
			return fmt.Errorf("remove stale alias: %w", err)
		}
	}

	if err := os.Link(path, latest); err != nil {
		return fmt.Errorf("alias %s: %w", path, err)
	}

	return nil
}
