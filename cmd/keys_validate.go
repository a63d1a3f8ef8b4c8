package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/spf13/cobra"
)

var keysValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify a user's stored key pair",
	Long: `Checks that a user's key record is complete, that the public key parses,
that the stored fingerprint matches it, and that the wrapped private key
decrypts what the public key encrypts.

Examples:
  hush keys validate --as nimal`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys validate command")
		ref, err := requireActor()
		if err != nil {
			fmt.Println(failureMessage("No user given", err))
			return nil
		}

		spinner, cleanup := startSpinner("Validating key pair...")
		defer cleanup()

		env, err := openEnv(cmd.Context())
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to open hush", err)
			return nil
		}
		defer env.Close()

		result, err := env.ValidateKeys(cmd.Context(), ref)
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to validate keys for "+ui.Highlight.Sprint(ref), err)
			return nil
		}

		if keysJSON {
			spinner.FinalMSG = ""
			return printJSON(result)
		}

		msg := "  " + ui.Check(result.Complete, "Key record complete") + "\n" +
			"  " + ui.Check(result.PublicKeyValid, "Public key parses") + "\n" +
			"  " + ui.Check(result.FingerprintMatches, "Fingerprint matches") + "\n" +
			"  " + ui.Check(result.PairIntegrityHolds, "Private key decrypts public key ciphertext") + "\n\n"

		if result.Valid() {
			msg += ui.Pass() + " Key pair for " + ui.Highlight.Sprint(result.Username) + " is valid"
		} else {
			msg += ui.Fail() + " Key pair for " + ui.Highlight.Sprint(result.Username) + " is not usable\n" +
				ui.Hint() + " Run " + ui.Code.Sprint("hush keys rotate --as "+result.Username) + " to replace it"
		}
		spinner.FinalMSG = msg
		return nil
	},
}
