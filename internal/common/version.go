package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Build metadata, injected via -ldflags at release time
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

var versionOnce sync.Once

// GetVersion returns the release version. A .version file next to the
// binary overrides the compiled-in value, checked once per process.
func GetVersion() string {
	versionOnce.Do(func() {
		exePath, err := os.Executable()
		if err != nil {
			return
		}

		data, err := os.ReadFile(filepath.Join(filepath.Dir(exePath), ".version"))
		if err != nil {
			return
		}

		if v := strings.TrimSpace(string(data)); v != "" {
			Version = v
		}
	})
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", GetVersion(), Build, GitCommit)
}
