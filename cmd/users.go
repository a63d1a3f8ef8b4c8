package cmd

import (
	"fmt"

	"github.com/PolarWolf314/hush/internal/ui"
	"github.com/PolarWolf314/hush/internal/utils"
	"github.com/PolarWolf314/hush/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// UsersCmd is the top-level users command.
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Register and look up users",
	Long: `Provides commands for registering users and reading their profiles.

Every user gets an RSA key pair at registration. Email, mobile number and
district are stored encrypted and are decrypted when shown.`,
	PersistentPreRun: setupLogger,
}

func init() {
	addCommonFlags(UsersCmd)
	UsersCmd.AddCommand(usersRegisterCmd)
	UsersCmd.AddCommand(usersProfileCmd)
	UsersCmd.AddCommand(usersListCmd)
	UsersCmd.AddCommand(usersSearchCmd)
}

func resetUsersCommandState() {
	resetUsersRegisterState()
	resetUsersProfileState()
	resetUsersListState()
	resetUsersSearchState()
}

// printProfile prints a profile in human-readable format.
func printProfile(p *workflows.Profile) {
	fmt.Println(color.CyanString(p.Username) + " " + ui.Muted.Sprint(p.PrincipalID))
	field := func(label, value string) {
		if value != "" {
			fmt.Printf("  %-14s %s\n", label+":", value)
		}
	}
	field("Email", p.Email)
	field("Mobile", p.MobileNumber)
	field("District", p.District)
	if p.Birthdate != "" {
		field("Birthdate", fmt.Sprintf("%s (age %d)", p.Birthdate, p.Age))
	}
	if p.HasKeys {
		field("Fingerprint", ui.Fingerprint(p.Fingerprint))
	} else {
		field("Fingerprint", ui.Warning.Sprint("no keys"))
	}
	field("Registered", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	if len(p.Redacted) > 0 {
		fmt.Printf("  %s %v could not be decrypted\n", ui.Caution(), p.Redacted)
	}
}

// printProfileTable prints one line per profile.
func printProfileTable(profiles []*workflows.Profile) {
	fmt.Printf("%-20s %-28s %-14s %s\n", "USERNAME", "EMAIL", "DISTRICT", "KEY")
	for _, p := range profiles {
		key := utils.ShortFingerprint(p.Fingerprint)
		if !p.HasKeys {
			key = ui.Warning.Sprint("none")
		}
		fmt.Printf("%-20s %-28s %-14s %s\n",
			utils.Truncate(p.Username, 20),
			utils.Truncate(p.Email, 28),
			utils.Truncate(p.District, 14),
			key)
	}
}
