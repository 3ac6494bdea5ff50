package synthesis

import (
	"strings"
	"unicode/utf8"

	"leadconnect_backend/internal/conversations/domain"
)

const (
	maxExtractedInterests = 5
	maxMergedInterests    = 10
	interestWindow        = 20
)

// ExtractInterests scans messages in order and returns up to five snippets of
// text around the first occurrence of each matching keyword. Windows are
// measured in runes on the lower-cased content. Duplicate windows are skipped.
func ExtractInterests(messages []domain.Message, terms []string) []string {
	out := make([]string, 0, maxExtractedInterests)
	seen := make(map[string]struct{})

	for _, msg := range messages {
		lower := strings.ToLower(msg.Content)
		if lower == "" {
			continue
		}
		var runes []rune

		for _, term := range terms {
			idx := strings.Index(lower, term)
			if idx < 0 {
				continue
			}
			if runes == nil {
				runes = []rune(lower)
			}

			at := utf8.RuneCountInString(lower[:idx])
			start := max(0, at-interestWindow)
			end := min(len(runes), at+utf8.RuneCountInString(term)+interestWindow)

			window := strings.TrimSpace(string(runes[start:end]))
			if window == "" {
				continue
			}
			if _, dup := seen[window]; dup {
				continue
			}
			seen[window] = struct{}{}
			out = append(out, window)
			if len(out) == maxExtractedInterests {
				return out
			}
		}
	}
	return out
}

// mergeInterests keeps first occurrences across the lists in order, capped at ten.
func mergeInterests(lists ...[]string) []string {
	out := make([]string, 0, maxMergedInterests)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, item := range list {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
			if len(out) == maxMergedInterests {
				return out
			}
		}
	}
	return out
}
