package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/spf13/cobra"
)

var listJSON bool

func init() {
	usersListCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
}

func resetUsersListState() {
	listJSON = false
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		env, err := openEnv(cmd.Context())
		if err != nil {
			fmt.Println(failureMessage("Failed to open hush", err))
			return nil
		}
		defer env.Close()

		profiles, err := env.ListProfiles(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to list users: %v", err)
		}

		if listJSON {
			return printJSON(profiles)
		}
		if len(profiles) == 0 {
			fmt.Println(ui.Caution() + " No users registered")
			fmt.Println(ui.Hint() + " Run " + ui.Code.Sprint("hush users register <username>") + " to add one")
			return nil
		}
		printProfileTable(profiles)
		return nil
	},
}
