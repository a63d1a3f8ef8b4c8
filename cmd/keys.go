package cmd

import (
	"github.com/spf13/cobra"
)

// KeysCmd is the top-level keys command.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Inspect, verify and rotate key pairs",
	Long: `Provides commands for managing users' RSA key pairs.

Private keys never leave the database unwrapped; they are sealed under the
master secret and only opened in memory to decrypt.`,
	PersistentPreRun: setupLogger,
}

var keysJSON bool

func init() {
	addCommonFlags(KeysCmd)
	addActorFlag(KeysCmd)
	KeysCmd.AddCommand(keysInfoCmd)
	KeysCmd.AddCommand(keysValidateCmd)
	KeysCmd.AddCommand(keysRotateCmd)
	KeysCmd.AddCommand(keysTestCmd)
	KeysCmd.AddCommand(keysBackfillCmd)

	keysInfoCmd.Flags().BoolVar(&keysJSON, "json", false, "output in JSON format")
	keysValidateCmd.Flags().BoolVar(&keysJSON, "json", false, "output in JSON format")
}

func resetKeysCommandState() {
	keysJSON = false
	rotateForce = false
	testPayload = ""
	backfillDryRun = false
}
