package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var keysInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a user's public key details",
	Long: `Shows the algorithm, size and fingerprint of a user's public key, and the
longest message the direct scheme can encrypt for them.

Examples:
  hush keys info --as nimal`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys info command")
		ref, err := requireActor()
		if err != nil {
			fmt.Println(failureMessage("No user given", err))
			return nil
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			fmt.Println(failureMessage("Failed to open hush", err))
			return nil
		}
		defer env.Close()

		info, err := env.KeyInfo(cmd.Context(), ref)
		if err != nil {
			fmt.Println(failureMessage("Failed to read keys for "+ui.Highlight.Sprint(ref), err))
			return nil
		}

		if keysJSON {
			return printJSON(info)
		}
		fmt.Println(color.CyanString("Public key") + " for " + ui.Highlight.Sprint(info.Username))
		fmt.Println()
		fmt.Printf("  %-20s %s-%d\n", "Algorithm:", info.Algorithm, info.KeySize)
		fmt.Printf("  %-20s %s\n", "Format:", info.Format)
		fmt.Printf("  %-20s %s\n", "Fingerprint:", info.Fingerprint)
		fmt.Printf("  %-20s %d bytes\n", "Direct payload:", info.MaxDirectPayload)
		fmt.Printf("  %-20s %s\n", "Scheme:", info.Scheme)
		return nil
	},
}
