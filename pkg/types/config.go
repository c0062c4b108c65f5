package types

// Config holds the client configuration. Every field has a default matching
// the production gateway; config files and environment variables override.
type Config struct {
	// GatewayURL is the WebSocket endpoint the session core dials.
	GatewayURL string `json:"gateway_url,omitempty"`
	// Origin is sent on the upgrade request and on usage fetches.
	Origin string `json:"origin,omitempty"`
	// UserAgent is the User-Agent header for all gateway traffic.
	UserAgent string `json:"user_agent,omitempty"`
	// UsageURL is the usage-status endpoint.
	UsageURL string `json:"usage_url,omitempty"`
	// UpdateManifestURL is the published version manifest.
	UpdateManifestURL string `json:"update_manifest_url,omitempty"`
	// LogLevel is DEBUG|INFO|WARN|ERROR|FATAL.
	LogLevel string `json:"log_level,omitempty"`
}
