package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/PolarWolf314/hush/internal/audit"
	"github.com/PolarWolf314/hush/internal/configs"
)

var messageIDPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestUsersCommands(t *testing.T) {
	setupTestEnvironment(t)

	output := runCLI(t, "users", "register", "nimal", "--email", "nimal@example.lk", "--district", "Colombo", "--birthdate", "1995-08-20")
	if !strings.Contains(output, "Registered 'nimal'") {
		t.Errorf("Expected registration message, got: %s", output)
	}
	runCLI(t, "users", "register", "kamala", "--district", "Kandy")

	output = runCLI(t, "users", "register", "nimal")
	if !strings.Contains(output, "Failed to register") || !strings.Contains(output, "Choose a different username") {
		t.Errorf("Expected duplicate username failure, got: %s", output)
	}

	output = runCLI(t, "users", "list")
	if !strings.Contains(output, "nimal@example.lk") || !strings.Contains(output, "kamala") {
		t.Errorf("List is missing users: %s", output)
	}

	output = runCLI(t, "users", "profile", "nimal", "--json")
	var profile map[string]any
	if err := json.Unmarshal([]byte(output), &profile); err != nil {
		t.Fatalf("profile --json is not JSON: %v\n%s", err, output)
	}
	if profile["email"] != "nimal@example.lk" || profile["district"] != "Colombo" || profile["has_keys"] != true {
		t.Errorf("Unexpected profile %v", profile)
	}

	output = runCLI(t, "users", "search", "--district", "kandy")
	if !strings.Contains(output, "kamala") || strings.Contains(output, "nimal") {
		t.Errorf("Unexpected search output: %s", output)
	}

	output = runCLI(t, "users", "search", "--min-age", "40", "--max-age", "20")
	if !strings.Contains(output, "Search failed") {
		t.Errorf("Expected invalid age range to fail: %s", output)
	}
}

func TestMessagesCommands(t *testing.T) {
	setupTestEnvironment(t)
	runCLI(t, "users", "register", "nimal")
	runCLI(t, "users", "register", "kamal")

	output := runCLI(t, "messages", "send", "kamal", "See you at six", "--as", "nimal")
	if !strings.Contains(output, "Message sent to 'kamal'") {
		t.Fatalf("Expected send confirmation, got: %s", output)
	}
	id := messageIDPattern.FindString(output)
	if id == "" {
		t.Fatalf("No message id in output: %s", output)
	}

	output = runCLI(t, "messages", "conversation", "nimal", "--as", "kamal")
	if !strings.Contains(output, "See you at six") || !strings.Contains(output, "new") {
		t.Errorf("Recipient cannot read message: %s", output)
	}
	output = runCLI(t, "messages", "conversation", "kamal", "--as", "nimal")
	if !strings.Contains(output, "See you at six") || !strings.Contains(output, "you") {
		t.Errorf("Sender cannot read message: %s", output)
	}

	output = runCLI(t, "messages", "read", id, "--as", "nimal")
	if !strings.Contains(output, "Failed to mark message read") {
		t.Errorf("Sender marked the message read: %s", output)
	}
	output = runCLI(t, "messages", "read", id, "--as", "kamal")
	if !strings.Contains(output, "Marked") {
		t.Errorf("Expected first read: %s", output)
	}
	output = runCLI(t, "messages", "read", id, "--as", "kamal")
	if !strings.Contains(output, "already read") {
		t.Errorf("Expected already read: %s", output)
	}

	output = runCLI(t, "messages", "conversations", "--as", "kamal")
	if !strings.Contains(output, "nimal") || !strings.Contains(output, "1 message(s)") || strings.Contains(output, "unread") {
		t.Errorf("Unexpected conversations output: %s", output)
	}

	output = runCLI(t, "messages", "send", "nimal", "hi", "--as", "nimal")
	if !strings.Contains(output, "Failed to send message") {
		t.Errorf("Self-send was not rejected: %s", output)
	}

	output = runCLI(t, "messages", "send", "kamal", strings.Repeat("x", 300), "--as", "nimal")
	if !strings.Contains(output, "hybrid") {
		t.Errorf("Expected a hint about the hybrid scheme: %s", output)
	}

	output = runCLI(t, "messages", "conversations")
	if !strings.Contains(output, "--as is required") {
		t.Errorf("Expected missing --as error: %s", output)
	}
}

func TestMessagesCommands_Hybrid(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv(configs.EnvScheme, configs.SchemeHybrid)
	runCLI(t, "users", "register", "nimal")
	runCLI(t, "users", "register", "kamal")

	long := strings.Repeat("long message ", 50)
	output := runCLI(t, "messages", "send", "kamal", long, "--as", "nimal")
	if !strings.Contains(output, "RSA-OAEP+XCHACHA20POLY1305") {
		t.Fatalf("Expected hybrid send, got: %s", output)
	}

	output = runCLI(t, "messages", "conversation", "nimal", "--as", "kamal", "--json")
	if !strings.Contains(output, strings.TrimSpace(long)) {
		t.Errorf("Hybrid message did not decrypt: %s", output)
	}
}

func TestKeysCommands(t *testing.T) {
	setupTestEnvironment(t)
	runCLI(t, "users", "register", "nimal")

	output := runCLI(t, "keys", "info", "--as", "nimal")
	if !strings.Contains(output, "RSA-2048") || !strings.Contains(output, "190 bytes") {
		t.Errorf("Unexpected key info: %s", output)
	}

	output = runCLI(t, "keys", "validate", "--as", "nimal")
	if !strings.Contains(output, "is valid") {
		t.Errorf("Expected valid keys: %s", output)
	}

	output = runCLI(t, "keys", "test", "--as", "nimal", "--payload", "ping")
	if !strings.Contains(output, "Round trip succeeded") {
		t.Errorf("Expected successful round trip: %s", output)
	}

	output = runCLI(t, "keys", "rotate", "--as", "nimal", "--force")
	if !strings.Contains(output, "Key pair rotated") {
		t.Errorf("Expected rotation: %s", output)
	}

	output = runCLI(t, "keys", "backfill", "--dry-run")
	if !strings.Contains(output, "Every user has a key pair") {
		t.Errorf("Unexpected backfill output: %s", output)
	}

	output = runCLI(t, "keys", "info", "--as", "ghost")
	if !strings.Contains(output, "hush users list") {
		t.Errorf("Expected unknown user hint: %s", output)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := setupTestEnvironment(t)
	path := filepath.Join(dir, "custom.toml")

	output := runCLI(t, "config", "init", "--dev", "--scheme", "Hybrid", "--config", path)
	if !strings.Contains(output, "Config written to") {
		t.Fatalf("Expected config to be written: %s", output)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Config file missing: %v", err)
	}

	output = runCLI(t, "config", "init", "--dev", "--config", path)
	if !strings.Contains(output, "already exists") {
		t.Errorf("Expected existing config warning: %s", output)
	}

	output = runCLI(t, "config", "show", "--json", "--config", path)
	var shown configs.Config
	if err := json.Unmarshal([]byte(output), &shown); err != nil {
		t.Fatalf("config show --json is not JSON: %v\n%s", err, output)
	}
	if shown.Crypto.Scheme != configs.SchemeHybrid || !shown.Runtime.DevMode {
		t.Errorf("Unexpected config %+v", shown)
	}
	if strings.Contains(output, "cmd-test-master") || strings.Contains(output, "cmd-test-field") {
		t.Errorf("Secrets leaked in config show: %s", output)
	}
}

func TestDoctorCommand(t *testing.T) {
	setupTestEnvironment(t)
	runCLI(t, "users", "register", "nimal")

	exitCode := -1
	SetDoctorExitFunc(func(code int) { exitCode = code })
	output := runCLI(t, "doctor")
	// No config file exists, which is a warning.
	if exitCode != 1 {
		t.Errorf("Expected exit code 1, got %d\n%s", exitCode, output)
	}
	if !strings.Contains(output, "All 1 key pairs verified") {
		t.Errorf("Key check missing: %s", output)
	}

	t.Setenv(configs.EnvFieldKey, "cmd-test-master")
	exitCode = -1
	SetDoctorExitFunc(func(code int) { exitCode = code })
	output = runCLI(t, "doctor", "--json")
	if exitCode != 2 {
		t.Errorf("Expected exit code 2, got %d\n%s", exitCode, output)
	}
	if !strings.Contains(output, `"status": "error"`) {
		t.Errorf("Expected an error check in JSON: %s", output)
	}
}

func TestLogCommand(t *testing.T) {
	setupTestEnvironment(t)
	runCLI(t, "users", "register", "nimal")
	runCLI(t, "users", "register", "kamal")
	runCLI(t, "messages", "send", "kamal", "hello", "--as", "nimal")

	output := runCLI(t, "log")
	if !strings.Contains(output, "register") || !strings.Contains(output, "to kamal") {
		t.Errorf("Unexpected log output: %s", output)
	}
	if strings.Contains(output, "hello") {
		t.Errorf("Message content leaked into the audit log: %s", output)
	}

	output = runCLI(t, "log", "--operation", "send", "--json")
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("log --json is not JSON: %v\n%s", err, output)
	}
	if len(entries) != 1 || entries[0].Operation != audit.OpSend {
		t.Errorf("Unexpected entries %+v", entries)
	}

	output = runCLI(t, "log", "--since", "last-week")
	if !strings.Contains(output, "invalid date format") {
		t.Errorf("Expected date format error: %s", output)
	}
}
