package cmd

import (
	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
)

var registerOpts workflows.RegisterOptions

func init() {
	usersRegisterCmd.Flags().StringVar(&registerOpts.Email, "email", "", "email address")
	usersRegisterCmd.Flags().StringVar(&registerOpts.MobileNumber, "mobile", "", "mobile number")
	usersRegisterCmd.Flags().StringVar(&registerOpts.District, "district", "", "district")
	usersRegisterCmd.Flags().StringVar(&registerOpts.Birthdate, "birthdate", "", "birthdate (YYYY-MM-DD)")
}

func resetUsersRegisterState() {
	registerOpts = workflows.RegisterOptions{}
}

var usersRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a user and issue their key pair",
	Long: `Registers a user, generates and verifies their RSA key pair, and stores
their personal fields encrypted.

Examples:
  hush users register nimal --email nimal@example.lk --district Colombo
  hush users register kamala --birthdate 2000-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting register command")
		spinner, cleanup := startSpinner("Registering user...")
		defer cleanup()

		env, err := openEnv(cmd.Context())
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to open hush", err)
			return nil
		}
		defer env.Close()

		opts := registerOpts
		opts.Username = args[0]
		result, err := env.Register(cmd.Context(), opts)
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to register "+ui.Highlight.Sprint(opts.Username), err)
			return nil
		}
		Logger.Infof("Registered %s as %s", result.Username, result.PrincipalID)

		spinner.FinalMSG = ui.Pass() + " Registered " + ui.Highlight.Sprint(result.Username) + "\n" +
			"  ID:          " + result.PrincipalID + "\n" +
			"  Fingerprint: " + result.Fingerprint
		return nil
	},
}
