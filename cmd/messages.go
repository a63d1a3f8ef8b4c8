package cmd

import (
	"github.com/spf13/cobra"
)

// MessagesCmd is the top-level messages command.
var MessagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Send and read encrypted messages",
	Long: `Provides commands for exchanging end-to-end encrypted messages.

Every message is encrypted twice, once for the recipient and once for the
sender, so both can read it back. With the direct scheme a message is
limited by the RSA key size; the hybrid scheme has no such limit.`,
	PersistentPreRun: setupLogger,
}

var messagesJSON bool

func init() {
	addCommonFlags(MessagesCmd)
	addActorFlag(MessagesCmd)
	MessagesCmd.AddCommand(messagesSendCmd)
	MessagesCmd.AddCommand(messagesConversationCmd)
	MessagesCmd.AddCommand(messagesConversationsCmd)
	MessagesCmd.AddCommand(messagesReadCmd)

	messagesConversationCmd.Flags().BoolVar(&messagesJSON, "json", false, "output in JSON format")
	messagesConversationsCmd.Flags().BoolVar(&messagesJSON, "json", false, "output in JSON format")
}

func resetMessagesCommandState() {
	messagesJSON = false
}
