package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxStdinBytes bounds how much ReadStdin accepts.
const MaxStdinBytes = 1 << 20

// ReadStdin reads piped input, with one trailing newline removed. It refuses
// to read from a terminal.
func ReadStdin() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("no data provided on stdin (hint: pipe the message body to this command)")
	}
	return readLimited(os.Stdin, MaxStdinBytes)
}

func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("stdin is empty")
	}

	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
