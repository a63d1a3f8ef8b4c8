package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/utils"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
)

var messagesSendCmd = &cobra.Command{
	Use:   "send <recipient> [message]",
	Short: "Send an encrypted message",
	Long: `Encrypts a message for the recipient and the sender and stores it.

The message is read from stdin when it is not given as an argument.

Examples:
  hush messages send kamal "See you at six" --as nimal
  echo "See you at six" | hush messages send kamal --as nimal`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting send command")
		from, err := requireActor()
		if err != nil {
			fmt.Println(failureMessage("No sender given", err))
			return nil
		}

		var content string
		if len(args) == 2 {
			content = args[1]
		} else {
			content, err = utils.ReadStdin()
			if err != nil {
				fmt.Println(failureMessage("No message given", err))
				return nil
			}
		}

		spinner, cleanup := startSpinner("Encrypting message...")
		defer cleanup()

		env, err := openEnv(cmd.Context())
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to open hush", err)
			return nil
		}
		defer env.Close()

		result, err := env.Send(cmd.Context(), workflows.SendOptions{From: from, To: args[0], Content: content})
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to send message to "+ui.Highlight.Sprint(args[0]), err)
			return nil
		}

		spinner.FinalMSG = ui.Pass() + " Message sent to " + ui.Highlight.Sprint(args[0]) + " " +
			ui.Muted.Sprint(result.MessageID+", "+result.AlgorithmTag)
		return nil
	},
}
