package types

import "runtime"

// Platform identifies the build target reported to the gateway in the
// X-Platform header.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
)

// CurrentPlatform resolves the platform for this build. Anything that is
// not windows or darwin reports as linux, matching the gateway's enum.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformLinux
	}
}
