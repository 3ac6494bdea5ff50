// Package shaping turns a generated reply and the conversation state into a
// cleaned reply with exactly one call-to-action button.
package shaping

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/keywords"
)

// PolicyVersion names the button table below. Only this table is applied.
const PolicyVersion = "booking-aware-single-button"

const (
	LabelConfirmReschedule = "Confirm Reschedule"
	LabelConfirmCancel     = "Confirm Cancel"
	LabelAskQuestion       = "Ask a Question"
	LabelBookDemo          = "Book Demo"
	LabelSeeDemo           = "See Demo"
	LabelLearnMore         = "Learn More"
)

// Input is everything a rule may look at.
type Input struct {
	Reply            string // markers already stripped
	Message          string
	HasBooking       bool
	HistoryTurnCount int
	IsNewUser        bool
}

type rule struct {
	name  string
	label string
	match func(s *Shaper, in Input) bool
}

// rules is evaluated top to bottom; the first match wins.
var rules = []rule{
	{"booking_reschedule", LabelConfirmReschedule, func(s *Shaper, in Input) bool {
		return in.HasBooking && containsAny(in.Message, s.kw.Reschedule)
	}},
	{"booking_cancel", LabelConfirmCancel, func(s *Shaper, in Input) bool {
		return in.HasBooking && containsAny(in.Message, s.kw.Cancel)
	}},
	{"booking_exists", LabelAskQuestion, func(_ *Shaper, in Input) bool {
		return in.HasBooking
	}},
	{"price_quoted", LabelBookDemo, func(s *Shaper, in Input) bool {
		return s.hasPriceMarker(in.Reply)
	}},
	{"feature_question", LabelSeeDemo, func(s *Shaper, in Input) bool {
		return containsAny(in.Message, s.kw.Features) || containsAny(in.Reply, s.kw.Features)
	}},
	{"closing_phrase", LabelBookDemo, func(s *Shaper, in Input) bool {
		return s.isClosingPhrase(in.Message)
	}},
	{"new_conversation", LabelLearnMore, func(_ *Shaper, in Input) bool {
		return in.IsNewUser || in.HistoryTurnCount == 0
	}},
	{"engaged", LabelBookDemo, func(_ *Shaper, in Input) bool {
		return in.HistoryTurnCount >= 3
	}},
	{"default", LabelLearnMore, func(*Shaper, Input) bool { return true }},
}

// Shaper applies the button policy and urgency tiers.
type Shaper struct {
	kw keywords.Set
}

func NewShaper(set keywords.Set) *Shaper {
	return &Shaper{kw: set}
}

// Shape cleans rawReply and selects its button, urgency and next action.
func (s *Shaper) Shape(rawReply, userMessage string, c domain.Context, historyTurnCount int, isNewUser bool) domain.ShapedResponse {
	text := StripMarkers(rawReply)

	_, label := s.Select(Input{
		Reply:            text,
		Message:          userMessage,
		HasBooking:       c.HasBooking(),
		HistoryTurnCount: historyTurnCount,
		IsNewUser:        isNewUser,
	})

	buttons := []domain.Button{NewButton(label)}
	return domain.ShapedResponse{
		Text:       text,
		Buttons:    buttons,
		Urgency:    s.Urgency(text),
		NextAction: NextAction(buttons),
	}
}

// NextAction waits for a tap when buttons are offered.
func NextAction(buttons []domain.Button) string {
	if len(buttons) > 0 {
		return domain.NextActionWaitForResponse
	}
	return domain.NextActionContinueConversation
}

// Select returns the name and label of the first matching rule.
func (s *Shaper) Select(in Input) (ruleName, label string) {
	for _, r := range rules {
		if r.match(s, in) {
			return r.name, r.label
		}
	}
	// Unreachable: the last rule always matches.
	return "default", LabelLearnMore
}

// Urgency classifies the cleaned reply. Tokens match whole words.
func (s *Shaper) Urgency(text string) domain.Urgency {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = struct{}{}
	}

	hasAny := func(tokens []string) bool {
		for _, t := range tokens {
			if _, ok := words[t]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case hasAny(s.kw.Urgency.Urgent):
		return domain.UrgencyUrgent
	case hasAny(s.kw.Urgency.High):
		return domain.UrgencyHigh
	default:
		return domain.UrgencyNormal
	}
}

// NewButton builds a button with a snake_case id derived from its label.
func NewButton(label string) domain.Button {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return domain.Button{Label: label, ID: b.String()}
}

func (s *Shaper) isClosingPhrase(message string) bool {
	// "Ok, thanks!" and "ok thanks" compare equal.
	trimmed := strings.Join(strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	}), " ")
	if trimmed == "" {
		return false
	}
	for _, phrase := range s.kw.Closing {
		if trimmed == phrase {
			return true
		}
	}
	return false
}

// hasPriceMarker looks for a currency symbol next to a digit, or a per-period token.
func (s *Shaper) hasPriceMarker(reply string) bool {
	lower := strings.ToLower(reply)
	if containsAny(lower, s.kw.Pricing.Tokens) {
		return true
	}
	for _, sym := range s.kw.Pricing.CurrencySymbols {
		for off := 0; off < len(lower); {
			idx := strings.Index(lower[off:], sym)
			if idx < 0 {
				break
			}
			at := off + idx
			off = at + len(sym)

			if startsWithLetter(sym) && at > 0 {
				if prev, _ := utf8.DecodeLastRuneInString(lower[:at]); unicode.IsLetter(prev) {
					continue
				}
			}
			if digitAfter(lower[at+len(sym):]) || digitBefore(lower[:at]) {
				return true
			}
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func digitAfter(s string) bool {
	s = strings.TrimLeft(s, " ")
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

func digitBefore(s string) bool {
	s = strings.TrimRight(s, " ")
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsDigit(r)
}
