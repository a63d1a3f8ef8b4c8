package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/messaging"
	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var messagesConversationCmd = &cobra.Command{
	Use:   "conversation <peer>",
	Short: "Show the conversation with another user",
	Long: `Decrypts and prints every message exchanged with a peer, oldest first.

Messages that cannot be decrypted, for example because they were encrypted to
a key that has since been rotated, are shown as a placeholder.

Examples:
  hush messages conversation kamal --as nimal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting conversation command")
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

		conv, err := env.Conversation(cmd.Context(), reader, args[0])
		if err != nil {
			fmt.Println(failureMessage("Failed to load conversation", err))
			return nil
		}

		if messagesJSON {
			return printJSON(conv)
		}
		if len(conv.Messages) == 0 {
			fmt.Println(ui.Muted.Sprint("No messages with " + conv.PeerUsername))
			return nil
		}

		for _, m := range conv.Messages {
			printMessage(m, conv.ReaderID, conv.PeerUsername)
		}
		if conv.Undecryptable > 0 {
			fmt.Printf("\n%s %d message(s) could not be decrypted\n", ui.Caution(), conv.Undecryptable)
		}
		if conv.IntegrityWarnings > 0 {
			fmt.Printf("%s %d message(s) do not match their recorded digest\n", ui.Caution(), conv.IntegrityWarnings)
		}
		return nil
	},
}

func printMessage(m *messaging.ReadResult, readerID, peerName string) {
	who := color.CyanString(peerName)
	if m.SenderID == readerID {
		who = color.GreenString("you")
	}

	text := ui.Body.Sprint(m.Text())
	if m.Undecryptable {
		text = ui.Muted.Sprint(m.Text())
	}

	var flags string
	if m.RecipientID == readerID && !m.IsRead {
		flags += " " + ui.Info.Sprint("new")
	}
	if m.IntegrityWarning {
		flags += " " + ui.Warning.Sprint("unverified")
	}

	fmt.Printf("%s %s%s %s\n  %s\n",
		ui.Muted.Sprint(m.SentAt.Local().Format("2006-01-02 15:04")), who, flags, ui.Muted.Sprint(m.MessageID), text)
}
