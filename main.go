package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/hush/cmd"
	"github.com/PolarWolf314/hush/internal/ui"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hush",
	Short: "hush - end-to-end encrypted messaging with encrypted user profiles.",
	Long: `hush keeps user profiles and messages encrypted at rest.

Every user gets an RSA key pair whose private half is sealed under a master
secret. Messages are encrypted for both participants, and personal fields are
encrypted under a separate field secret.

Usage:
  hush <command> [flags]

Available Commands:
  config     Create and inspect configuration
  users      Register and look up users
  keys       Inspect, verify and rotate key pairs
  messages   Send and read encrypted messages
  doctor     Run health checks
  log        View the audit log

Run 'hush help <command>' for more details on a specific command.
`,
	Run: func(c *cobra.Command, args []string) {
		cmd.PrintBanner()
		fmt.Println("Welcome to hush! Run " + ui.Code.Sprint("hush --help") + " to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.Commands()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
