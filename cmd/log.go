package cmd

import (
	"errors"
	"fmt"

	"github.com/PolarWolf314/hush/internal/audit"
	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	addCommonFlags(LogCmd)
	LogCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	LogCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	LogCmd.Flags().StringVar(&logUser, "user", "", "filter by user (id or username)")
	LogCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	LogCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	LogCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	LogCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	LogCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

// LogCmd shows the audit log.
var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of registrations, key rotations, backfills, sent
messages and first reads. Message content is never logged.

Examples:
  hush log                             # View full log
  hush log -n 10                       # Last 10 entries
  hush log --reverse                   # Most recent first
  hush log --user nimal                # Entries by or about a user
  hush log --operation send,read       # Filter by operation
  hush log --since 2024-01-01          # Filter by date
  hush log --json                      # JSON output`,
	Args:             cobra.NoArgs,
	PersistentPreRun: setupLogger,
	RunE:             runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	env, err := openEnv(cmd.Context())
	if err != nil {
		fmt.Println(failureMessage("Failed to open hush", err))
		return nil
	}
	defer env.Close()

	result, err := env.Log(cmd.Context(), workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Principal:  logUser,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		if errors.Is(err, herrors.ErrInvalidDateFormat) {
			fmt.Println(ui.Fail() + " " + err.Error())
			return nil
		}
		return Logger.ErrorfAndReturn("Failed to read audit log: %v", err)
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if logJSON {
		entries := result.Entries
		if entries == nil {
			entries = []audit.Entry{}
		}
		return printJSON(entries)
	}

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	for _, e := range result.Entries {
		actor := displayName(e.Actor, result.Usernames)
		details := workflows.FormatDetails(e, result.Usernames)
		datetime := workflows.FormatDateTime(e.Timestamp)
		if logOneline {
			if len(datetime) > 10 {
				datetime = datetime[:10]
			}
			fmt.Printf("%s %s %s %s\n", datetime, actor, e.Operation, details)
			continue
		}
		fmt.Printf("%-19s  %-20s  %-9s  %s\n", datetime, actor, e.Operation, details)
	}
	return nil
}

func displayName(id string, names map[string]string) string {
	if id == "" {
		return "-"
	}
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
