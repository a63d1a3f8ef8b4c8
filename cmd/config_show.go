package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the configuration after environment overrides and development
defaults are applied. Secrets are masked.

Examples:
  hush config show
  hush config show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		config, err := loadConfig()
		if err != nil {
			fmt.Println(failureMessage("Failed to load configuration", err))
			return nil
		}
		shown := config.Redacted()

		if configShowJSON {
			return printJSON(shown)
		}

		path := resolvedConfigPath()
		source := "(defaults and environment only)"
		if _, err := os.Stat(path); err == nil {
			source = "(" + path + ")"
		}
		fmt.Println(color.CyanString("Configuration") + " " + ui.Muted.Sprint(source))
		fmt.Println()
		if err := toml.NewEncoder(os.Stdout).Encode(shown); err != nil {
			return Logger.ErrorfAndReturn("Failed to encode config: %v", err)
		}

		if err := config.Validate(); err != nil {
			fmt.Println()
			fmt.Println(failureMessage("Configuration is not usable", err))
		} else if config.UsingDevSecrets() {
			fmt.Println()
			fmt.Println(ui.Caution() + " Development secrets are in use")
		}
		return nil
	},
}
