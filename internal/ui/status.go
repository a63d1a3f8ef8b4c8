package ui

// Status glyphs used at the start of result lines.
const (
	glyphPass    = "✓"
	glyphFail    = "✗"
	glyphCaution = "⚠"
	glyphHint    = "→"
)

func Pass() string    { return Success.Sprint(glyphPass) }
func Fail() string    { return Error.Sprint(glyphFail) }
func Caution() string { return Warning.Sprint(glyphCaution) }
func Hint() string    { return Info.Sprint(glyphHint) }

// Check renders a pass or fail glyph followed by label.
func Check(ok bool, label string) string {
	if ok {
		return Pass() + " " + label
	}
	return Fail() + " " + label
}

// Fingerprint shortens a key fingerprint to its first 16 hex characters for
// display.
func Fingerprint(fp string) string {
	if len(fp) > 16 {
		fp = fp[:16]
	}
	return Muted.Sprint(fp)
}
