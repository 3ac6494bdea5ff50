package synthesis

import (
	"strings"

	"leadconnect_backend/internal/conversations/domain"
)

const (
	summaryMessages = 5
	summaryMaxRunes = 500
	ellipsis        = "..."

	// webChatLabel marks the live web transcript so it is not confused with
	// the stored web summary that precedes it.
	webChatLabel = "Web chat"
)

// channelSummary renders the last five chronological messages as "role: content" lines.
func channelSummary(chronological []domain.Message) string {
	start := max(0, len(chronological)-summaryMessages)

	lines := make([]string, 0, summaryMessages)
	for _, m := range chronological[start:] {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	return truncateRunes(strings.Join(lines, "\n"), summaryMaxRunes)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// mergeSummaries puts the web summary first, then the current channel's when it says anything.
func mergeSummaries(webSummary, current string, channel domain.Channel) string {
	webSummary = strings.TrimSpace(webSummary)
	if webSummary == "" {
		return current
	}

	merged := domain.ChannelWeb.Label() + ": " + webSummary
	if strings.TrimSpace(current) != "" {
		label := channel.Label()
		if channel == domain.ChannelWeb {
			label = webChatLabel
		}
		merged += "\n" + label + ": " + current
	}
	return merged
}
