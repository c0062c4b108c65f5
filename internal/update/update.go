// Package update checks the published version manifest for newer releases.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nixdorfer/dialogue/pkg/types"
)

// Client fetches the update manifest.
type Client struct {
	httpClient  *http.Client
	manifestURL string
}

// NewClient creates an update client for the given manifest URL.
func NewClient(manifestURL string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		manifestURL: manifestURL,
	}
}

// Check fetches the manifest and compares its newest entry against
// currentVersion. Transient fetch failures are retried with exponential
// backoff before giving up.
func (c *Client) Check(ctx context.Context, currentVersion string) (*types.UpdateCheck, error) {
	var versions []types.VersionInfo

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("manifest returned status %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(&versions)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("failed to fetch update manifest: %w", err)
	}

	if len(versions) == 0 {
		return nil, errors.New("update manifest is empty")
	}

	// The manifest is ordered oldest to newest.
	latest := versions[len(versions)-1]

	return &types.UpdateCheck{
		HasUpdate:      NewerVersion(currentVersion, latest.Version),
		CurrentVersion: currentVersion,
		LatestVersion:  latest.Version,
		Notes:          latest.Note,
		DownloadURL:    latest.URL,
	}, nil
}

// NewerVersion reports whether latest is strictly newer than current.
// Versions compare as semantic triples, component-wise; missing or
// unparseable components count as zero.
func NewerVersion(current, latest string) bool {
	curr := parseVersion(current)
	lat := parseVersion(latest)

	for i := 0; i < 3; i++ {
		if lat[i] > curr[i] {
			return true
		}
		if curr[i] > lat[i] {
			return false
		}
	}
	return false
}

func parseVersion(v string) [3]int {
	var out [3]int
	for i, part := range strings.Split(strings.TrimPrefix(v, "v"), ".") {
		if i >= 3 {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out[i] = n
	}
	return out
}
