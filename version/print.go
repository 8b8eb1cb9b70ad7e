package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Set with -ldflags "-X github.com/pkevan/wp-chargify/version.Short=..." at
// release time.
var (
	Short     = "0.1.0-dev"
	GitCommit = ""
	GitDirty  = false
)

// String returns the version with the build details on following lines.
func String() string {
	var ret strings.Builder
	ret.WriteString(Short)
	ret.WriteByte('\n')
	if GitCommit != "" {
		var dirty string
		if GitDirty {
			dirty = "-dirty"
		}
		fmt.Fprintf(&ret, "  wpchargify commit: %s%s\n", GitCommit, dirty)
	}
	fmt.Fprintf(&ret, "  go version: %s\n", runtime.Version())
	return strings.TrimSpace(ret.String())
}

// UserAgent is sent with every request to Chargify.
func UserAgent() string {
	return "wpchargify/" + Short + " (" + runtime.GOOS + "; " + runtime.Version() + ")"
}
