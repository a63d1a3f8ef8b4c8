package workflows

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/hush/internal/configs"
	logger "github.com/PolarWolf314/hush/internal/logging"
	"github.com/PolarWolf314/hush/internal/store"
)

func findCheck(t *testing.T, result *DoctorResult, name string) CheckResult {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("No %q check in %+v", name, result.Checks)
	return CheckResult{}
}

func runDoctor(t *testing.T, config *configs.Config, configPath string) *DoctorResult {
	t.Helper()
	result, err := Doctor(context.Background(), DoctorOptions{
		ConfigPath: configPath,
		Config:     config,
		Logger:     logger.Logger{Out: io.Discard, Err: io.Discard},
	})
	if err != nil {
		t.Fatalf("Doctor failed: %v", err)
	}
	return result
}

func TestDoctor_Healthy(t *testing.T) {
	dir := t.TempDir()
	withAuditDir(t, dir)
	config := testConfig(dir)
	configPath := filepath.Join(dir, "config.toml")
	if err := configs.Save(configPath, config); err != nil {
		t.Fatal(err)
	}

	env, err := Open(context.Background(), config, logger.Logger{Out: io.Discard, Err: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	mustRegister(t, env, RegisterOptions{Username: "nimal", Email: "nimal@example.lk"})
	env.Close()

	result := runDoctor(t, config, configPath)
	if result.Summary.Errors != 0 || result.Summary.Warnings != 0 {
		t.Errorf("Expected a clean bill of health, got %+v", result.Checks)
	}
	if result.Summary.Passed != len(result.Checks) || len(result.Checks) != 6 {
		t.Errorf("Unexpected checks %+v", result.Checks)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("Unexpected suggestions %v", result.Suggestions)
	}
}

func TestDoctor_InvalidConfigSkipsDatabase(t *testing.T) {
	dir := t.TempDir()
	config := testConfig(dir)
	config.Crypto.FieldKey = config.Crypto.MasterKey

	result := runDoctor(t, config, filepath.Join(dir, "missing.toml"))
	if len(result.Checks) != 2 {
		t.Fatalf("Expected only config checks, got %+v", result.Checks)
	}
	if findCheck(t, result, "Config file").Status != CheckWarning {
		t.Error("Missing config file not reported")
	}
	if findCheck(t, result, "Configuration").Status != CheckError {
		t.Error("Invalid configuration not reported")
	}
	if result.Summary.Errors != 1 || result.Summary.Warnings != 1 {
		t.Errorf("Summary = %+v", result.Summary)
	}
	if len(result.Suggestions) != 2 {
		t.Errorf("Expected 2 suggestions, got %v", result.Suggestions)
	}
}

func TestDoctor_FindsKeyProblems(t *testing.T) {
	dir := t.TempDir()
	withAuditDir(t, dir)
	config := testConfig(dir)
	ctx := context.Background()

	env, err := Open(ctx, config, logger.Logger{Out: io.Discard, Err: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Store.CreatePrincipal(ctx, &store.Principal{ID: "legacy", Username: "legacy"}); err != nil {
		t.Fatal(err)
	}
	env.Close()

	result := runDoctor(t, config, filepath.Join(dir, "missing.toml"))
	if check := findCheck(t, result, "Key pairs"); check.Status != CheckWarning {
		t.Errorf("Principal without keys gave %+v", check)
	}

	// Keys wrapped under a different master key fail the pair check.
	other := testConfig(dir)
	other.Crypto.MasterKey = "another-master"
	env, err = Open(ctx, other, logger.Logger{Out: io.Discard, Err: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	mustRegister(t, env, RegisterOptions{Username: "nimal"})
	env.Close()

	result = runDoctor(t, config, filepath.Join(dir, "missing.toml"))
	if check := findCheck(t, result, "Key pairs"); check.Status != CheckError {
		t.Errorf("Foreign master key gave %+v", check)
	}
}

func TestDoctor_DevSecrets(t *testing.T) {
	dir := t.TempDir()
	withAuditDir(t, dir)
	config := testConfig(dir)
	config.Runtime.DevMode = true
	config.Crypto.MasterKey = configs.DevMasterKey
	config.Crypto.FieldKey = configs.DevFieldKey

	result := runDoctor(t, config, filepath.Join(dir, "missing.toml"))
	if check := findCheck(t, result, "Secrets"); check.Status != CheckWarning {
		t.Errorf("Dev secrets gave %+v", check)
	}
}

func TestCalculateDoctorSummary(t *testing.T) {
	summary := calculateDoctorSummary([]CheckResult{
		{Status: CheckPass},
		{Status: CheckPass},
		{Status: CheckWarning},
		{Status: CheckError},
	})
	if summary != (DoctorSummary{Passed: 2, Warnings: 1, Errors: 1}) {
		t.Errorf("Summary = %+v", summary)
	}
	if CheckWarning.String() != "warning" || CheckStatus(9).String() != "unknown" {
		t.Error("Unexpected CheckStatus strings")
	}
}
