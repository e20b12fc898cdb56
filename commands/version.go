package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

const VERSION = "v0.1.0"

// VersionCmd is an initialized Version command for the main() command list
var VersionCmd = Version{}

// Version is a CLI command implementation that displays the CLI version information.
type Version struct {
}

// Returns 'version'
func (c *Version) Name() string {
	return "version"
}

// Description returns the 'version' command short form help
func (c *Version) Description() string {
	return "Displays the current version"
}

// Usage returns the string describing the additional options for the 'version' command
func (c *Version) Usage() string {
	return ""
}

func (c *Version) Configure(cmd *cobra.Command) {
	cmd.Use = c.Name()
	cmd.Long = "Displays the rowquery-sheets version in the format v<major>.<minor>.<build> e.g. v1.00.10"
}

// Execute prints the current version
func (c *Version) Execute(cmd *cobra.Command, options *Options) error {
	fmt.Fprintln(cmd.OutOrStdout(), VERSION)

	return nil
}
