package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	searchOpts workflows.SearchOptions
	searchJSON bool
)

func init() {
	usersSearchCmd.Flags().StringVar(&searchOpts.District, "district", "", "only users in this district")
	usersSearchCmd.Flags().IntVar(&searchOpts.MinAge, "min-age", 0, "minimum age")
	usersSearchCmd.Flags().IntVar(&searchOpts.MaxAge, "max-age", 0, "maximum age")
	usersSearchCmd.Flags().StringVar(&searchOpts.Exclude, "as", "", "searching user, left out of the results")
	usersSearchCmd.Flags().BoolVar(&searchJSON, "json", false, "output in JSON format")
}

func resetUsersSearchState() {
	searchOpts = workflows.SearchOptions{}
	searchJSON = false
}

var usersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search users by name, email, district or age",
	Long: `Searches users. The query matches part of the username or email.

Personal fields are stored encrypted, so every profile is decrypted to
compare it.

Examples:
  hush users search nim
  hush users search --district Colombo --min-age 18 --max-age 30 --as kamala`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting search command")

		opts := searchOpts
		if len(args) == 1 {
			opts.Query = args[0]
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			fmt.Println(failureMessage("Failed to open hush", err))
			return nil
		}
		defer env.Close()

		profiles, err := env.Search(cmd.Context(), opts)
		if err != nil {
			fmt.Println(failureMessage("Search failed", err))
			return nil
		}

		if searchJSON {
			return printJSON(profiles)
		}
		if len(profiles) == 0 {
			fmt.Println(ui.Caution() + " No matching users")
			return nil
		}
		printProfileTable(profiles)
		fmt.Println()
		fmt.Println(ui.Muted.Sprint(fmt.Sprintf("%d match(es)", len(profiles))))
		return nil
	},
}
