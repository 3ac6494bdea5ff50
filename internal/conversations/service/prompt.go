package service

import (
	"fmt"
	"strings"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/generation"
)

var phaseGuidance = map[domain.Phase]string{
	domain.PhaseDiscovery:  "Learn what the customer needs. Ask one open question at a time.",
	domain.PhaseEvaluation: "Answer concretely and compare options against what the customer told you.",
	domain.PhaseClosing:    "Help the customer commit to a next step such as a demo or a booking.",
}

// ComposeSystemPrompt renders the Context into instructions for the backend.
// Buttons are chosen after generation, so the prompt asks for plain text only.
func ComposeSystemPrompt(c domain.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the %s assistant chatting with a customer on %s.\n", c.Brand, c.Channel.Label())
	b.WriteString("Reply in plain conversational text. Do not suggest buttons or menus.\n")
	fmt.Fprintf(&b, "\nJourney phase: %s. %s\n", c.Phase, phaseGuidance[c.Phase])

	if c.Name != "" {
		fmt.Fprintf(&b, "Customer name: %s\n", c.Name)
	}
	if c.IsNewUser {
		b.WriteString("This is the customer's first conversation on this channel.\n")
	}
	if c.HasBooking() {
		fmt.Fprintf(&b, "Existing booking: %s %s", c.Booking.Date, c.Booking.Time)
		if c.Booking.Status != "" {
			fmt.Fprintf(&b, " (%s)", c.Booking.Status)
		}
		b.WriteString("\n")
	}
	if c.Budget != "" {
		fmt.Fprintf(&b, "Stated budget: %s\n", c.Budget)
	}
	if len(c.Interests) > 0 {
		fmt.Fprintf(&b, "Known interests:\n- %s\n", strings.Join(c.Interests, "\n- "))
	}
	if c.Summary != "" {
		fmt.Fprintf(&b, "Conversation so far:\n%s\n", c.Summary)
	}
	return strings.TrimSpace(b.String())
}

// BuildTurns maps recent history to backend turns and appends the inbound text.
func BuildTurns(c domain.Context, text string) []generation.Turn {
	turns := make([]generation.Turn, 0, len(c.RecentMessages)+1)
	for _, m := range c.RecentMessages {
		role := generation.RoleUser
		if m.Role == domain.RoleAssistant {
			role = generation.RoleAssistant
		}
		turns = append(turns, generation.Turn{Role: role, Content: m.Content})
	}
	return append(turns, generation.Turn{Role: generation.RoleUser, Content: text})
}
