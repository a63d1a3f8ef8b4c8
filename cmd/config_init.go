package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/hush/internal/configs"
	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/utils"

	"github.com/spf13/cobra"
)

var (
	initForce    bool
	initDevMode  bool
	initScheme   string
	initDatabase string
	initKeyBits  int
)

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&initDevMode, "dev", false, "use development secrets instead of prompting")
	configInitCmd.Flags().StringVar(&initScheme, "scheme", configs.SchemeDirect, "message scheme: direct or hybrid")
	configInitCmd.Flags().StringVar(&initDatabase, "database", "", "database path (default "+configs.HushSettings.DatabasePath+")")
	configInitCmd.Flags().IntVar(&initKeyBits, "key-bits", configs.MinKeyBits, "RSA modulus size for new key pairs")
}

func resetConfigInitState() {
	initForce = false
	initDevMode = false
	initScheme = configs.SchemeDirect
	initDatabase = ""
	initKeyBits = configs.MinKeyBits
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file",
	Long: `Creates a config file with the master and field secrets.

The master secret protects every private key and the field secret protects
personal fields. Both are prompted for without echo. Losing either makes the
data it protects unrecoverable.

With --dev, development secrets are used instead. They are public and must
never protect real data.

Examples:
  hush config init
  hush config init --scheme hybrid --database ~/hush/hush.db
  hush config init --dev`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")
		path := resolvedConfigPath()

		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Println(ui.Caution() + " Config already exists at " + ui.Path.Sprint(path))
			fmt.Println(ui.Hint() + " Use " + ui.Flag.Sprint("--force") + " to overwrite it")
			return nil
		}

		config := configs.Default()
		config.Crypto.Scheme = configs.NormalizeScheme(initScheme)
		config.Crypto.KeyBits = initKeyBits
		if initDatabase != "" {
			config.Storage.Database = initDatabase
		}

		if initDevMode {
			config.Runtime.DevMode = true
		} else {
			if !utils.IsTerminal() {
				fmt.Println(ui.Fail() + " Secrets can only be entered interactively")
				fmt.Println(ui.Hint() + " Set " + ui.Code.Sprint(configs.EnvMasterKey) + " and " + ui.Code.Sprint(configs.EnvFieldKey) + " instead, or use " + ui.Flag.Sprint("--dev"))
				return nil
			}

			master, err := utils.ReadSecret("Master secret: ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to read master secret: %v", err)
			}
			field, err := utils.ReadSecret("Field secret: ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to read field secret: %v", err)
			}
			config.Crypto.MasterKey = master
			config.Crypto.FieldKey = field
		}

		// Validate what the file will produce, including dev defaults.
		effective := *config
		if effective.Runtime.DevMode {
			effective.Crypto.MasterKey = configs.DevMasterKey
			effective.Crypto.FieldKey = configs.DevFieldKey
		}
		if err := effective.Validate(); err != nil {
			fmt.Println(failureMessage("Configuration is not valid", err))
			return nil
		}

		Logger.Debugf("Writing config to %s", path)
		if err := configs.Save(path, config); err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		fmt.Println(ui.Pass() + " Config written to " + ui.Path.Sprint(path))
		if initDevMode {
			fmt.Println(ui.Caution() + " Development secrets are in use; do not store real data")
		}
		fmt.Println(ui.Hint() + " Run " + ui.Code.Sprint("hush users register <username>") + " to add a user")
		return nil
	},
}
