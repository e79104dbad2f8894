package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roasbeef/wiki-mcp/internal/build"
	"github.com/roasbeef/wiki-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long: `Display the server version as reported to MCP hosts, plus the
commit and toolchain the binary was built from.`,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false,
		"print the build information as JSON")
}

// versionInfo is the build information printed by the version command.
type versionInfo struct {
	Server    string   `json:"server"`
	Version   string   `json:"version"`
	Commit    string   `json:"commit,omitempty"`
	GoVersion string   `json:"go_version,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

func currentVersion() versionInfo {
	commit := build.Commit
	if commit == "" {
		commit = build.CommitHash
	}

	return versionInfo{
		Server:    mcp.ServerName,
		Version:   build.Version(),
		Commit:    commit,
		GoVersion: build.GoVersion,
		Tags:      build.Tags(),
	}
}

// runVersion prints the build information, as one line or as JSON.
func runVersion(cmd *cobra.Command, _ []string) error {
	info := currentVersion()
	w := cmd.OutOrStdout()

	if versionJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(info)
	}

	fields := []string{info.Server + " version " + info.Version}
	if info.Commit != "" {
		fields = append(fields, "commit="+info.Commit)
	}
	if info.GoVersion != "" {
		fields = append(fields, "go="+info.GoVersion)
	}
	if len(info.Tags) > 0 {
		fields = append(fields, "tags="+strings.Join(info.Tags, ","))
	}

	_, err := fmt.Fprintln(w, strings.Join(fields, " "))

	return err
}
