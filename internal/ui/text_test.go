package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// forceColor enables colored output for the duration of the test.
func forceColor(t *testing.T) {
	t.Helper()
	if v, ok := os.LookupEnv("NO_COLOR"); ok {
		os.Unsetenv("NO_COLOR")
		t.Cleanup(func() { os.Setenv("NO_COLOR", v) })
	}
	original := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = original })
}

func TestFormatter_Color(t *testing.T) {
	forceColor(t)

	got := Code.Sprint("hush keys backfill")
	if strings.Contains(got, "`") {
		t.Errorf("Colored Code should not add backticks: %q", got)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Expected ANSI escape codes: %q", got)
	}

	got = Highlight.Sprintf("user %s", "nimal")
	if strings.HasPrefix(got, "'") || !strings.Contains(got, "user nimal") {
		t.Errorf("Unexpected colored Highlight: %q", got)
	}
}

func TestFormatter_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code", Code, "hush users list", "`hush users list`"},
		{"Path", Path, "/tmp/hush.db", "/tmp/hush.db"},
		{"Flag", Flag, "--as", "--as"},
		{"Success", Success, "done", "done"},
		{"Error", Error, "failed", "failed"},
		{"Warning", Warning, "careful", "careful"},
		{"Info", Info, "note", "note"},
		{"Highlight", Highlight, "kamala", "'kamala'"},
		{"Muted", Muted, "3f2a", "(3f2a)"},
		{"Body", Body, "See you at six", "See you at six"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.formatter.Sprint(tt.input); got != tt.want {
				t.Errorf("Sprint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if got := Code.Sprint("hush", " ", "doctor"); got != "`hush doctor`" {
		t.Errorf("Sprint with several args = %q", got)
	}
	if got := Code.Sprintf("hush keys %s", "rotate"); got != "`hush keys rotate`" {
		t.Errorf("Sprintf = %q", got)
	}
}

func TestNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if !noColor() {
		t.Error("An empty NO_COLOR should still disable color")
	}
}

func TestStatusGlyphs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if Pass() != "✓" || Fail() != "✗" || Caution() != "⚠" || Hint() != "→" {
		t.Errorf("Unexpected glyphs %q %q %q %q", Pass(), Fail(), Caution(), Hint())
	}
	if got := Check(true, "fingerprint matches"); got != "✓ fingerprint matches" {
		t.Errorf("Check(true) = %q", got)
	}
	if got := Check(false, "pair integrity"); got != "✗ pair integrity" {
		t.Errorf("Check(false) = %q", got)
	}
	if got := Fingerprint("0123456789abcdef0123"); got != "(0123456789abcdef)" {
		t.Errorf("Fingerprint = %q", got)
	}
	if got := Fingerprint("abc"); got != "(abc)" {
		t.Errorf("Fingerprint of a short value = %q", got)
	}
}

func TestEnsureNewline(t *testing.T) {
	for in, want := range map[string]string{"": "\n", "done": "done\n", "done\n": "done\n"} {
		if got := EnsureNewline(in); got != want {
			t.Errorf("EnsureNewline(%q) = %q, want %q", in, got, want)
		}
	}
}
