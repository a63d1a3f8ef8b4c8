package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/hush/internal/configs"
)

// withSettings points the audit log at a temp directory for the test.
func withSettings(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	original := configs.HushSettings
	configs.HushSettings = configs.NewSettings(filepath.Join(tempDir, "config"), filepath.Join(tempDir, "data"))
	t.Cleanup(func() {
		configs.HushSettings = original
	})

	return configs.HushSettings.AuditLogPath
}

func TestLog_CreatesFile(t *testing.T) {
	logPath := withSettings(t)

	Log(Entry{Actor: "alice", Operation: OpSend, Target: "bob", MessageID: "m1"})

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("Audit log should be private, got mode %o", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	logPath := withSettings(t)

	Log(Entry{Actor: "alice", Operation: OpRegister})
	Log(Entry{Actor: "alice", Operation: OpSend, Target: "bob"})
	Log(Entry{Actor: "bob", Operation: OpRead, MessageID: "m1"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}

	var entry Entry
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("Failed to parse line: %v", err)
	}
	if entry.Operation != OpSend || entry.Target != "bob" {
		t.Errorf("Unexpected entry %+v", entry)
	}
}

func TestLog_SetsTimestamp(t *testing.T) {
	withSettings(t)

	before := time.Now().UTC().Add(-time.Second)
	Log(Entry{Operation: OpBackfill, Count: 3})

	entries, err := ReadEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	ts := entries[0].Time()
	if ts.IsZero() {
		t.Fatalf("Timestamp %q did not parse", entries[0].Timestamp)
	}
	if ts.Before(before) {
		t.Errorf("Timestamp %v is earlier than %v", ts, before)
	}
}

func TestLog_PreservesTimestamp(t *testing.T) {
	withSettings(t)

	Log(Entry{Timestamp: "2024-01-15T10:30:00.123456Z", Operation: OpRotate})

	entries, _ := ReadEntries()
	if len(entries) != 1 || entries[0].Timestamp != "2024-01-15T10:30:00.123456Z" {
		t.Errorf("Timestamp not preserved: %+v", entries)
	}
}

func TestLog_NoSettings(t *testing.T) {
	original := configs.HushSettings
	configs.HushSettings = nil
	defer func() { configs.HushSettings = original }()

	// Must not panic.
	Log(Entry{Operation: OpSend})

	if LogPath() != "" {
		t.Error("Expected empty LogPath without settings")
	}
	entries, err := ReadEntries()
	if err != nil || entries != nil {
		t.Errorf("ReadEntries = %v, %v", entries, err)
	}
}

func TestLog_UnwritableDirectory(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	original := configs.HushSettings
	configs.HushSettings = configs.NewSettings(tempDir, filepath.Join(blocker, "data"))
	defer func() { configs.HushSettings = original }()

	// The data directory cannot be created under a regular file.
	Log(Entry{Operation: OpSend})
}

func TestReadEntries_Missing(t *testing.T) {
	withSettings(t)

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		count int
	}{
		{"empty", "", 0},
		{"single", `{"ts":"2024-01-15T10:30:00.000000Z","op":"send"}`, 1},
		{"trailing newline", "{\"op\":\"send\"}\n{\"op\":\"read\"}\n", 2},
		{"blank lines", "{\"op\":\"send\"}\n\n   \n{\"op\":\"read\"}", 2},
		{"malformed skipped", "{\"op\":\"send\"}\n{not json\n{\"op\":\"read\"}", 2},
		{"partial write", "{\"op\":\"send\"}\n{\"op\":\"re", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseEntries([]byte(tt.data))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(entries) != tt.count {
				t.Errorf("Expected %d entries, got %d", tt.count, len(entries))
			}
		})
	}
}

func TestFilter(t *testing.T) {
	entries := []Entry{
		{Timestamp: "2024-01-01T00:00:00.000000Z", Actor: "alice", Operation: OpRegister},
		{Timestamp: "2024-01-02T00:00:00.000000Z", Actor: "alice", Operation: OpSend, Target: "bob"},
		{Timestamp: "2024-01-03T00:00:00.000000Z", Actor: "bob", Operation: OpRead},
		{Timestamp: "2024-01-04T00:00:00.000000Z", Actor: "carol", Operation: OpSend, Target: "alice"},
		{Timestamp: "2024-01-05T00:00:00.000000Z", Actor: "bob", Operation: OpRotate, Target: "bob"},
	}

	tests := []struct {
		name string
		q    Query
		want []int
	}{
		{"everything", Query{}, []int{0, 1, 2, 3, 4}},
		{"by operation", Query{Operation: OpSend}, []int{1, 3}},
		{"actor or target", Query{Actor: "alice"}, []int{0, 1, 3}},
		{"since", Query{Since: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}, []int{2, 3, 4}},
		{"until is inclusive", Query{Until: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, []int{0, 1}},
		{"window", Query{Since: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Until: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)}, []int{1, 2, 3}},
		{"any of operations", Query{Operations: []string{" READ", "rotate"}}, []int{2, 4}},
		{"limit keeps latest", Query{Limit: 2}, []int{3, 4}},
		{"combined", Query{Actor: "bob", Operation: OpRead}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(entries, tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d entries, got %d", len(tt.want), len(got))
			}
			for i, idx := range tt.want {
				if got[i] != entries[idx] {
					t.Errorf("Entry %d = %+v, want %+v", i, got[i], entries[idx])
				}
			}
		})
	}
}
