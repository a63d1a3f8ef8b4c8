package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	doctorJSONOutput bool
	// doctorExitFunc is the function called to exit with a specific code.
	// Can be overridden for testing.
	doctorExitFunc = os.Exit
)

func init() {
	addCommonFlags(DoctorCmd)
	DoctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
}

func resetDoctorCommandState() {
	doctorJSONOutput = false
	doctorExitFunc = os.Exit
}

// SetDoctorExitFunc sets the exit function for testing purposes.
func SetDoctorExitFunc(f func(int)) {
	doctorExitFunc = f
}

// DoctorCmd runs health checks.
var DoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the hush installation",
	Long: `Runs a series of health checks and reports issues.

The doctor command checks:
  - Config file presence and unrecognised keys
  - Configuration validity
  - Development secrets in use
  - Database reachability
  - Every user's key pair
  - Personal field decryption

Exit codes:
  0 - All checks passed
  1 - Warnings found (non-critical issues)
  2 - Errors found (critical issues)

Use --json for machine-readable output.`,
	Args:             cobra.NoArgs,
	PersistentPreRun: setupLogger,
	RunE:             runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")

	spinner, cleanup := startSpinner("Running health checks...")

	config, err := loadConfig()
	if err != nil {
		// Doctor reports an unloadable config as a failed check.
		Logger.Debugf("Config could not be loaded: %v", err)
		config = nil
	}

	result, err := workflows.Doctor(cmd.Context(), workflows.DoctorOptions{
		ConfigPath: resolvedConfigPath(),
		Config:     config,
		Logger:     Logger,
	})
	if err != nil {
		spinner.FinalMSG = ui.Fail() + " Failed to run health checks: " + err.Error()
		cleanup()
		return err
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
	}

	spinner.FinalMSG = ""
	if doctorJSONOutput {
		cleanup()
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		switch {
		case result.Summary.Errors > 0:
			spinner.FinalMSG = ui.Fail() + " Health checks completed with errors"
		case result.Summary.Warnings > 0:
			spinner.FinalMSG = ui.Caution() + " Health checks completed with warnings"
		default:
			spinner.FinalMSG = ui.Pass() + " Health checks completed"
		}
		spinner.Stop()
		printDoctorResults(result)
		cleanup()
	}

	// Exit after the spinner has printed its final message.
	switch {
	case result.Summary.Errors > 0:
		doctorExitFunc(2)
	case result.Summary.Warnings > 0:
		doctorExitFunc(1)
	}
	return nil
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.Pass()
		case workflows.CheckWarning:
			statusIcon = ui.Caution()
		case workflows.CheckError:
			statusIcon = ui.Fail()
		}
		fmt.Printf("%s %-16s %s\n", statusIcon, check.Name, check.Message)
	}

	fmt.Println()
	fmt.Printf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Printf(", %s", ui.Warning.Sprint(fmt.Sprintf("%d warning(s)", result.Summary.Warnings)))
	}
	if result.Summary.Errors > 0 {
		fmt.Printf(", %s", ui.Error.Sprint(fmt.Sprintf("%d error(s)", result.Summary.Errors)))
	}
	fmt.Println()

	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  %s %s\n", ui.Hint(), suggestion)
		}
	}
	fmt.Println()
}
