// Package ui formats text for the hush command line.
//
// Formatters are chosen by what the text is, not how it should look:
//
//	ui.Code.Sprint("hush keys backfill")   // commands
//	ui.Path.Sprint("~/.config/hush")       // files
//	ui.Highlight.Sprint("nimal")           // user-supplied values
//	ui.Muted.Sprint(messageID)             // secondary detail
//	ui.Body.Sprint(content)                // decrypted message text
//
// Result lines start with a status glyph from Pass, Fail, Caution or Hint.
//
// Colors are dropped when NO_COLOR is set or the output is not a color
// terminal. Code, Highlight and Muted then fall back to backticks, quotes and
// parentheses so the distinction survives in plain text.
package ui
