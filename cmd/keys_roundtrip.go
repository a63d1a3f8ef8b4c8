package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/spf13/cobra"
)

var testPayload string

func init() {
	keysTestCmd.Flags().StringVar(&testPayload, "payload", "", "text to encrypt (default a fixed test message)")
}

var keysTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Encrypt and decrypt a test message with a user's keys",
	Long: `Encrypts a payload to a user's public key with the configured scheme and
decrypts it with their private key.

Examples:
  hush keys test --as nimal
  hush keys test --as nimal --payload "a longer message"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys test command")
		ref, err := requireActor()
		if err != nil {
			fmt.Println(failureMessage("No user given", err))
			return nil
		}

		spinner, cleanup := startSpinner("Testing encryption...")
		defer cleanup()

		env, err := openEnv(cmd.Context())
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to open hush", err)
			return nil
		}
		defer env.Close()

		result, err := env.TestEncryption(cmd.Context(), ref, testPayload)
		if err != nil {
			spinner.FinalMSG = failureMessage("Encryption test failed", err)
			return nil
		}

		details := fmt.Sprintf("  Scheme:     %s\n  Plaintext:  %q\n  Ciphertext: %d characters\n  Decrypted:  %q\n",
			result.Scheme, result.Plaintext, result.CiphertextLength, result.Decrypted)
		if result.Success {
			spinner.FinalMSG = details + "\n" + ui.Pass() + " Round trip succeeded"
		} else {
			spinner.FinalMSG = details + "\n" + ui.Fail() + " Decrypted text does not match"
		}
		return nil
	},
}
