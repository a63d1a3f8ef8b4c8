package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/hush/internal/configs"
)

// TimestampLayout is the format of Entry.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Operation names.
const (
	OpRegister = "register"
	OpRotate   = "rotate"
	OpBackfill = "backfill"
	OpSend     = "send"
	OpRead     = "read"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`
	Actor     string `json:"actor,omitempty"` // Principal performing the action.
	Operation string `json:"op"`

	// Optional fields depending on operation.
	Target         string `json:"target,omitempty"`          // Recipient of a send, principal of a rotation.
	MessageID      string `json:"message_id,omitempty"`      // For send/read.
	Algorithm      string `json:"algorithm,omitempty"`       // For send.
	Fingerprint    string `json:"fingerprint,omitempty"`     // New key fingerprint for register/rotate.
	OldFingerprint string `json:"old_fingerprint,omitempty"` // For rotate.
	Count          int    `json:"count,omitempty"`           // Keys generated by backfill.
	Failed         int    `json:"failed,omitempty"`          // Backfill failures.
}

// Time parses the entry timestamp. It returns the zero time if malformed.
func (e Entry) Time() time.Time {
	t, err := time.Parse(TimestampLayout, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Log appends an entry to the audit log.
// If logging fails the error is swallowed; operations must not fail just
// because auditing did.
func Log(entry Entry) {
	logPath := LogPath()
	if logPath == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampLayout)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file, or "" when settings are
// not initialized.
func LogPath() string {
	if configs.HushSettings == nil {
		return ""
	}
	return configs.HushSettings.AuditLogPath
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// Query selects audit entries. Zero fields match everything.
type Query struct {
	Operation string
	// Operations matches any of the listed operations, case-insensitively.
	Operations []string
	Actor      string
	Since      time.Time
	Until      time.Time // inclusive
	Limit      int       // Keep only the last Limit matches.
}

// Filter returns the entries matching q, in log order. Entries with an
// unparseable timestamp never match a time bound.
func Filter(entries []Entry, q Query) []Entry {
	var ops map[string]bool
	if len(q.Operations) > 0 {
		ops = make(map[string]bool, len(q.Operations))
		for _, op := range q.Operations {
			ops[strings.ToLower(strings.TrimSpace(op))] = true
		}
	}

	var out []Entry
	for _, e := range entries {
		if q.Operation != "" && e.Operation != q.Operation {
			continue
		}
		if ops != nil && !ops[strings.ToLower(e.Operation)] {
			continue
		}
		if q.Actor != "" && e.Actor != q.Actor && e.Target != q.Actor {
			continue
		}
		if !q.Since.IsZero() || !q.Until.IsZero() {
			t := e.Time()
			if t.IsZero() || (!q.Since.IsZero() && t.Before(q.Since)) || (!q.Until.IsZero() && t.After(q.Until)) {
				continue
			}
		}
		out = append(out, e)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out
}
