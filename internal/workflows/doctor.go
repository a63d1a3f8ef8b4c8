package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/hush/internal/configs"
	logger "github.com/PolarWolf314/hush/internal/logging"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// ConfigPath is the config file that was loaded.
	ConfigPath string

	// Config is the effective configuration, possibly invalid.
	Config *configs.Config

	Logger logger.Logger
}

// Doctor runs health checks over the configuration and every stored key
// record. Checks that need the database are skipped when the configuration
// is unusable.
//
// The doctor workflow checks:
//   - Config file presence and unknown keys
//   - Config validity (secrets, key size, scheme)
//   - Development secrets in use
//   - Database reachability
//   - Completeness and integrity of every principal's key pair
//   - Decryptability of personal fields under the current field key
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	results := []CheckResult{
		checkConfigFile(opts.ConfigPath, opts.Config),
		checkConfigValid(opts.Config),
	}

	if results[1].Status == CheckPass {
		results = append(results, checkDevSecrets(opts.Config))

		env, err := Open(ctx, opts.Config, opts.Logger)
		if err != nil {
			results = append(results, CheckResult{
				Name:       "Database",
				Status:     CheckError,
				Message:    fmt.Sprintf("Cannot open database: %v", err),
				Suggestion: "Check storage.database in the config or set HUSH_DATABASE",
			})
		} else {
			defer env.Close()
			results = append(results,
				env.checkDatabase(ctx),
				env.checkKeyRecords(ctx),
				env.checkFieldDecryption(ctx),
			)
		}
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

func checkConfigFile(path string, config *configs.Config) CheckResult {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:       "Config file",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%s not found; using defaults and environment", path),
			Suggestion: "Run 'hush config init' to create a config file",
		}
	}
	if config != nil && len(config.Unknown) > 0 {
		return CheckResult{
			Name:       "Config file",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Unrecognised keys: %s", strings.Join(config.Unknown, ", ")),
			Suggestion: "Remove or correct the unrecognised keys in the config file",
		}
	}
	return CheckResult{
		Name:    "Config file",
		Status:  CheckPass,
		Message: fmt.Sprintf("Loaded %s", path),
	}
}

func checkConfigValid(config *configs.Config) CheckResult {
	if config == nil {
		return CheckResult{
			Name:    "Configuration",
			Status:  CheckError,
			Message: "Configuration could not be loaded",
		}
	}
	if err := config.Validate(); err != nil {
		return CheckResult{
			Name:       "Configuration",
			Status:     CheckError,
			Message:    err.Error(),
			Suggestion: "Set HUSH_MASTER_KEY and HUSH_FIELD_KEY or run 'hush config init'",
		}
	}
	return CheckResult{
		Name:    "Configuration",
		Status:  CheckPass,
		Message: fmt.Sprintf("%d-bit keys, %s scheme", config.Crypto.KeyBits, config.Crypto.Scheme),
	}
}

func checkDevSecrets(config *configs.Config) CheckResult {
	if config.UsingDevSecrets() {
		return CheckResult{
			Name:       "Secrets",
			Status:     CheckWarning,
			Message:    "Development secrets are in use",
			Suggestion: "Configure real secrets and disable dev_mode before storing real data",
		}
	}
	return CheckResult{
		Name:    "Secrets",
		Status:  CheckPass,
		Message: "Master and field secrets are configured",
	}
}

func (e *Env) checkDatabase(ctx context.Context) CheckResult {
	if err := e.Store.Ping(ctx); err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  CheckError,
			Message: fmt.Sprintf("Database unreachable: %v", err),
		}
	}
	count, err := e.Store.CountMessages(ctx)
	if err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  CheckError,
			Message: fmt.Sprintf("Cannot query messages: %v", err),
		}
	}
	return CheckResult{
		Name:    "Database",
		Status:  CheckPass,
		Message: fmt.Sprintf("%s (%d messages)", e.Store.Path(), count),
	}
}

func (e *Env) checkKeyRecords(ctx context.Context) CheckResult {
	principals, err := e.Store.ListPrincipals(ctx)
	if err != nil {
		return CheckResult{
			Name:    "Key pairs",
			Status:  CheckError,
			Message: fmt.Sprintf("Cannot list principals: %v", err),
		}
	}

	var incomplete, broken []string
	for _, p := range principals {
		result := e.validateRecord(p.ID, p.Username, &p.Keys)
		switch {
		case !result.Complete:
			incomplete = append(incomplete, p.Username)
		case !result.Valid():
			broken = append(broken, p.Username)
		}
	}

	if len(broken) > 0 {
		return CheckResult{
			Name:       "Key pairs",
			Status:     CheckError,
			Message:    fmt.Sprintf("Key pairs failing verification: %s", strings.Join(broken, ", ")),
			Suggestion: "Check the master key is unchanged, or rotate the affected keys with 'hush keys rotate --as <user>'",
		}
	}
	if len(incomplete) > 0 {
		return CheckResult{
			Name:       "Key pairs",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Principals without keys: %s", strings.Join(incomplete, ", ")),
			Suggestion: "Run 'hush keys backfill' to generate missing keys",
		}
	}
	return CheckResult{
		Name:    "Key pairs",
		Status:  CheckPass,
		Message: fmt.Sprintf("All %d key pairs verified", len(principals)),
	}
}

func (e *Env) checkFieldDecryption(ctx context.Context) CheckResult {
	profiles, err := e.ListProfiles(ctx)
	if err != nil {
		return CheckResult{
			Name:    "Personal fields",
			Status:  CheckError,
			Message: fmt.Sprintf("Cannot list principals: %v", err),
		}
	}

	var redacted []string
	for _, prof := range profiles {
		if len(prof.Redacted) > 0 {
			redacted = append(redacted, prof.Username)
		}
	}
	if len(redacted) > 0 {
		return CheckResult{
			Name:       "Personal fields",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Fields cannot be decrypted for: %s", strings.Join(redacted, ", ")),
			Suggestion: "Check the field key matches the one used when these principals registered",
		}
	}
	return CheckResult{
		Name:    "Personal fields",
		Status:  CheckPass,
		Message: "All personal fields decrypt",
	}
}

// calculateDoctorSummary counts checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
