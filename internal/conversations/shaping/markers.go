package shaping

import (
	"regexp"
	"strings"
)

var (
	bracketMarker = regexp.MustCompile(`(?i)\[\s*buttons?\s*:[^\]]*\]`)
	doubleBracket = regexp.MustCompile(`\[\[[^\]]*\]\]`)
	htmlButton    = regexp.MustCompile(`(?is)<button[^>]*>.*?</button>`)
	buttonLine    = regexp.MustCompile(`(?im)^[ \t]*(suggested[ \t]+)?buttons?[ \t]*:.*$`)

	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// StripMarkers removes every inline button suggestion from a generated reply
// and tidies the whitespace left behind. Line breaks are kept.
func StripMarkers(reply string) string {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = htmlButton.ReplaceAllString(reply, "")
	reply = bracketMarker.ReplaceAllString(reply, "")
	reply = doubleBracket.ReplaceAllString(reply, "")
	reply = buttonLine.ReplaceAllString(reply, "")

	lines := strings.Split(reply, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	reply = strings.Join(lines, "\n")
	reply = blankLines.ReplaceAllString(reply, "\n\n")
	return strings.TrimSpace(reply)
}
