package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/utils"

	"github.com/spf13/cobra"
)

var messagesConversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List conversations, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting conversations command")
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

		entries, err := env.Conversations(cmd.Context(), reader)
		if err != nil {
			fmt.Println(failureMessage("Failed to list conversations", err))
			return nil
		}

		if messagesJSON {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println(ui.Muted.Sprint("No conversations yet"))
			return nil
		}

		for _, e := range entries {
			name := e.PartnerUsername
			if name == "" {
				name = e.PartnerID
			}
			unread := ""
			if e.UnreadCount > 0 {
				unread = " " + ui.Info.Sprint(fmt.Sprintf("%d unread", e.UnreadCount))
			}
			fmt.Printf("%-20s %s%s\n  %s\n",
				ui.Highlight.Sprint(name),
				ui.Muted.Sprint(fmt.Sprintf("%d message(s), last %s", e.MessageCount, e.LastMessage.SentAt.Local().Format("2006-01-02 15:04"))),
				unread,
				utils.Truncate(e.LastMessage.Text(), 60))
		}
		return nil
	},
}
