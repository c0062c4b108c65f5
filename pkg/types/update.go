package types

// VersionInfo is one entry of the published update manifest.
// The manifest is a JSON array ordered oldest to newest.
type VersionInfo struct {
	Version string   `json:"version"`
	Note    []string `json:"note"`
	URL     string   `json:"url"`
}

// UpdateCheck is the result of comparing the running version against the
// newest manifest entry.
type UpdateCheck struct {
	HasUpdate      bool     `json:"has_update"`
	CurrentVersion string   `json:"current_version"`
	LatestVersion  string   `json:"latest_version"`
	Notes          []string `json:"notes"`
	DownloadURL    string   `json:"download_url"`
}
