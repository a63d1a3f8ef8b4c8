package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileJSON bool

func init() {
	usersProfileCmd.Flags().BoolVar(&profileJSON, "json", false, "output in JSON format")
}

func resetUsersProfileState() {
	profileJSON = false
}

var usersProfileCmd = &cobra.Command{
	Use:   "profile <user>",
	Short: "Show a user's decrypted profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting profile command")

		env, err := openEnv(cmd.Context())
		if err != nil {
			fmt.Println(failureMessage("Failed to open hush", err))
			return nil
		}
		defer env.Close()

		profile, err := env.GetProfile(cmd.Context(), args[0])
		if err != nil {
			fmt.Println(failureMessage("Failed to load profile", err))
			return nil
		}

		if profileJSON {
			return printJSON(profile)
		}
		printProfile(profile)
		return nil
	},
}
