// Package misc keeps build time program identification.
package misc

// Set by the linker: -X ghostkit/misc.version=... -X ghostkit/misc.gitHash=...
var (
	appName = "gkc"
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns the name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
