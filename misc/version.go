// Package misc keeps build information stamped by the linker.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// set with -ldflags "-X factbatch/misc.version=... -X factbatch/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name without extension.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}
