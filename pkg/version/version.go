package version

// Version is the current hubscout version.
const Version = "0.3.0"

// BuildVersion returns the version string for display.
func BuildVersion() string {
	return "hubscout version " + Version
}
