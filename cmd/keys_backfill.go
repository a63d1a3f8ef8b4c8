package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
)

var backfillDryRun bool

func init() {
	keysBackfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "list users without keys and make no changes")
}

var keysBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate keys for users that have none",
	Long: `Generates key pairs for every user without a complete key record. Key
generation runs on up to runtime.workers goroutines.

Examples:
  hush keys backfill --dry-run
  hush keys backfill`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting backfill command")
		spinner, cleanup := startSpinner("Generating missing keys...")
		defer cleanup()

		env, err := openEnv(cmd.Context())
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to open hush", err)
			return nil
		}
		defer env.Close()

		result, err := env.Backfill(cmd.Context(), workflows.BackfillOptions{DryRun: backfillDryRun})
		if err != nil {
			spinner.FinalMSG = failureMessage("Backfill failed", err)
			return nil
		}

		if len(result.Pending) == 0 {
			spinner.FinalMSG = ui.Pass() + " Every user has a key pair"
			return nil
		}
		if backfillDryRun {
			spinner.FinalMSG = ui.Warning.Sprint("[dry-run]") + fmt.Sprintf(" %d user(s) need keys:\n", len(result.Pending)) +
				"  " + strings.Join(result.Pending, "\n  ")
			return nil
		}

		msg := ui.Pass() + fmt.Sprintf(" Generated keys for %d of %d user(s)", len(result.Generated), len(result.Pending))
		for _, f := range result.Failed {
			msg += "\n  " + ui.Fail() + " " + f.PrincipalID + ": " + f.Err.Error()
		}
		spinner.FinalMSG = msg
		return nil
	},
}
