package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/G-Node/gin-release/internal/logger"
)

// releaseListing is the relevant slice of a release-listing API payload.
type releaseListing struct {
	Assets []releaseAsset `json:"assets"`
}

// releaseAsset is one downloadable file attached to a release.
type releaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// LatestAssets queries a release-listing API, downloads every asset whose
// name contains substr, and returns the local paths. Callers are
// responsible for verifying the expected asset count.
func (f *Fetcher) LatestAssets(ctx context.Context, apiURL, substr string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", apiURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s: %w", apiURL, resp.Status, errBadHTTPStatus)
	}

	var listing releaseListing
	if err = json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode release listing: %w", err)
	}

	downloaded := make([]string, 0, 2)

	for _, asset := range listing.Assets {
		if !strings.Contains(asset.Name, substr) {
			continue
		}

		local, err := f.Download(ctx, asset.BrowserDownloadURL, asset.Name)
		if err != nil {
			logger.ErrorKV(ctx, "Asset download failed", "asset", asset.Name, "error", err)
			continue
		}

		downloaded = append(downloaded, local)
	}

	return downloaded, nil
}
