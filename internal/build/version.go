package build

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	// AppMajor is the major version of the application.
	AppMajor uint = 0

	// AppMinor is the minor version of the application.
	AppMinor uint = 1

	// AppPatch is the patch version of the application.
	AppPatch uint = 0
)

var (
	// Commit is set at link time with
	// -ldflags "-X github.com/roasbeef/wiki-mcp/internal/build.Commit=...".
	Commit string

	// RawTags is a comma separated list of build tags, set at link time.
	RawTags string

	// CommitHash is the VCS revision embedded by the Go toolchain.
	CommitHash string

	// GoVersion is the toolchain version the binary was built with.
	GoVersion string
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			CommitHash = setting.Value
		}
	}
}

// Version returns the semantic version of the application.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", AppMajor, AppMinor, AppPatch)
}

// Tags returns the build tags the binary was built with.
func Tags() []string {
	if RawTags == "" {
		return nil
	}

	return strings.Split(RawTags, ",")
}
