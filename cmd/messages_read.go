package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/messaging"
	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/spf13/cobra"
)

var messagesReadCmd = &cobra.Command{
	Use:   "read <message-id>",
	Short: "Mark a received message as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting read command")
		reader, err := requireActor()
		if err != nil {
			fmt.Println(failureMessage("No reader given", err))
			return nil
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			fmt.Println(failureMessage("Failed to open hush", err))
			return nil
		}
		defer env.Close()

		result, err := env.MarkRead(cmd.Context(), reader, args[0])
		if err != nil {
			fmt.Println(failureMessage("Failed to mark message read", err))
			return nil
		}

		if result.State == messaging.AlreadyRead {
			fmt.Println(ui.Hint() + " Message " + ui.Muted.Sprint(result.MessageID) + " was already read")
			return nil
		}
		fmt.Println(ui.Pass() + " Marked " + ui.Muted.Sprint(result.MessageID) + " as read")
		return nil
	},
}
