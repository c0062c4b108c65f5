package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"

	"github.com/nixdorfer/dialogue/pkg/types"
)

// Defaults matching the production gateway. Everything is overridable
// through config files and environment variables.
const (
	DefaultGatewayURL = "wss://claude.nixdorfer.com/data/websocket/create"
	DefaultOrigin     = "https://claude.nixdorfer.com"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultUsageURL   = "https://claude.nixdorfer.com/api/usage"
	DefaultManifest   = "https://raw.githubusercontent.com/Nixdorfer/ClaudeServer/main/info.json"
)

// Load loads configuration from multiple sources (priority order):
// 1. Built-in defaults
// 2. dialogue.json / dialogue.jsonc in the config directory
// 3. .env in the working directory (loaded into the environment)
// 4. DIALOGUE_* environment variables (highest priority)
func Load(directory string) (*types.Config, error) {
	config := &types.Config{
		GatewayURL:        DefaultGatewayURL,
		Origin:            DefaultOrigin,
		UserAgent:         DefaultUserAgent,
		UsageURL:          DefaultUsageURL,
		UpdateManifestURL: DefaultManifest,
		LogLevel:          "INFO",
	}

	configDir := GetPaths().Config
	loadConfigFile(filepath.Join(configDir, "dialogue.json"), config)
	loadConfigFile(filepath.Join(configDir, "dialogue.jsonc"), config)

	if directory != "" {
		// Best effort; a missing .env is the normal case.
		_ = godotenv.Load(filepath.Join(directory, ".env"))
	}

	applyEnvOverrides(config)

	return config, nil
}

// loadConfigFile merges a single JSON(C) config file into config.
// A missing or malformed file is skipped.
func loadConfigFile(path string, config *types.Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	data = jsonc.ToJSON(data)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return
	}

	mergeConfig(config, &fileConfig)
}

// mergeConfig overlays non-empty fields of src onto dst.
func mergeConfig(dst, src *types.Config) {
	if src.GatewayURL != "" {
		dst.GatewayURL = src.GatewayURL
	}
	if src.Origin != "" {
		dst.Origin = src.Origin
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
	if src.UsageURL != "" {
		dst.UsageURL = src.UsageURL
	}
	if src.UpdateManifestURL != "" {
		dst.UpdateManifestURL = src.UpdateManifestURL
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// applyEnvOverrides applies DIALOGUE_* environment variables.
func applyEnvOverrides(config *types.Config) {
	if v := os.Getenv("DIALOGUE_GATEWAY_URL"); v != "" {
		config.GatewayURL = v
	}
	if v := os.Getenv("DIALOGUE_ORIGIN"); v != "" {
		config.Origin = v
	}
	if v := os.Getenv("DIALOGUE_USER_AGENT"); v != "" {
		config.UserAgent = v
	}
	if v := os.Getenv("DIALOGUE_USAGE_URL"); v != "" {
		config.UsageURL = v
	}
	if v := os.Getenv("DIALOGUE_UPDATE_MANIFEST_URL"); v != "" {
		config.UpdateManifestURL = v
	}
	if v := os.Getenv("DIALOGUE_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}
