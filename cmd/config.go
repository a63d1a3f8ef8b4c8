package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hush configuration",
	Long: `Provides commands for creating and inspecting the hush configuration.

Settings are read from the config file and can be overridden with HUSH_*
environment variables (HUSH_MASTER_KEY, HUSH_FIELD_KEY, HUSH_SCHEME,
HUSH_DATABASE, HUSH_KEY_BITS, HUSH_WORKERS, HUSH_DEV_MODE).

Examples:
  # Create a config file, prompting for secrets
  hush config init

  # Show the effective configuration with secrets masked
  hush config show`,
	PersistentPreRun: setupLogger,
}

func init() {
	addCommonFlags(ConfigCmd)
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

func resetConfigCommandState() {
	resetConfigInitState()
	resetConfigShowState()
}
