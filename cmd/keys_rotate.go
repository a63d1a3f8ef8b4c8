package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/spf13/cobra"
)

var rotateForce bool

func init() {
	keysRotateCmd.Flags().BoolVar(&rotateForce, "force", false, "skip confirmation prompt")
}

var keysRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Replace a user's key pair",
	Long: `Generates a new key pair for a user and replaces the current one.

Messages already encrypted to the old key are not re-encrypted. After
rotation they show as undecryptable for this user.

Examples:
  # Rotate with a confirmation prompt
  hush keys rotate --as nimal

  # Rotate without confirmation
  hush keys rotate --as nimal --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate command")
		ref, err := requireActor()
		if err != nil {
			fmt.Println(failureMessage("No user given", err))
			return nil
		}

		spinner, cleanup := startSpinner("Rotating key pair...")
		defer cleanup()

		env, err := openEnv(cmd.Context())
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to open hush", err)
			return nil
		}
		defer env.Close()

		if !rotateForce {
			question := ui.Warning.Sprint("Warning:") + " messages encrypted to the current key will become unreadable for " +
				ui.Highlight.Sprint(ref) + ". Continue?"
			if !confirm(spinner, question) {
				spinner.FinalMSG = ui.Caution() + " Key rotation cancelled."
				return nil
			}
		}

		result, err := env.RotateKeys(cmd.Context(), ref)
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to rotate keys for "+ui.Highlight.Sprint(ref), err)
			return nil
		}
		Logger.Infof("Rotated keys for %s", result.PrincipalID)

		spinner.FinalMSG = ui.Pass() + " Key pair rotated for " + ui.Highlight.Sprint(result.Username) + "\n" +
			"  Old: " + result.OldFingerprint + "\n" +
			"  New: " + result.NewFingerprint
		return nil
	},
}
