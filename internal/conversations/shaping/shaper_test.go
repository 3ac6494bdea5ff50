package shaping

import (
	"reflect"
	"testing"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/keywords"
	leaddomain "leadconnect_backend/internal/leads/domain"
)

func withBooking() domain.Context {
	return domain.Context{Booking: &leaddomain.Booking{Date: "2026-06-03", Time: "10:00"}}
}

func TestButtonPolicyRules(t *testing.T) {
	s := NewShaper(keywords.Default())

	cases := []struct {
		name    string
		ctx     domain.Context
		message string
		reply   string
		turns   int
		isNew   bool
		want    string
	}{
		{"reschedule with booking", withBooking(), "Can I reschedule?", "Sure.", 2, false, LabelConfirmReschedule},
		{"cancel with booking", withBooking(), "I need to cancel", "Okay.", 2, false, LabelConfirmCancel},
		{"booking without intent", withBooking(), "what should I bring", "Just yourself.", 2, false, LabelAskQuestion},
		{"price marker", domain.Context{}, "tell me more", "The starter plan is $49/month.", 1, false, LabelBookDemo},
		{"rupee amount", domain.Context{}, "cost?", "It is ₹4,999 for the year.", 1, false, LabelBookDemo},
		{"feature in message", domain.Context{}, "How does it work?", "Sure.", 1, false, LabelSeeDemo},
		{"feature in reply", domain.Context{}, "tell me", "We integrate with your CRM.", 1, false, LabelSeeDemo},
		{"closing phrase", domain.Context{}, "  Thanks! ", "You're welcome.", 1, false, LabelBookDemo},
		{"closing phrase with punctuation", domain.Context{}, "Ok, thanks.", "Anytime.", 1, false, LabelBookDemo},
		{"new user", domain.Context{}, "hi", "Hello! Glad you reached out.", 5, true, LabelLearnMore},
		{"no assistant turns yet", domain.Context{}, "hello there", "Hello!", 0, false, LabelLearnMore},
		{"engaged conversation", domain.Context{}, "tell me more", "Here is a bit more.", 3, false, LabelBookDemo},
		{"default", domain.Context{}, "tell me more", "Here is a bit more.", 1, false, LabelLearnMore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Shape(tc.reply, tc.message, tc.ctx, tc.turns, tc.isNew)
			if len(got.Buttons) != 1 {
				t.Fatalf("expected exactly one button, got %v", got.Buttons)
			}
			if got.Buttons[0].Label != tc.want {
				t.Fatalf("button = %q, want %q", got.Buttons[0].Label, tc.want)
			}
			if got.NextAction != domain.NextActionWaitForResponse {
				t.Fatalf("nextAction = %q", got.NextAction)
			}
		})
	}
}

func TestBookingRescheduleWinsRegardlessOfOtherFields(t *testing.T) {
	s := NewShaper(keywords.Default())
	variants := []struct {
		reply string
		turns int
		isNew bool
	}{
		{"Plans start at $49/month. How it works: ...", 10, true},
		{"", 0, false},
		{"Thanks!", 3, false},
	}
	for _, v := range variants {
		got := s.Shape(v.reply, "please reschedule", withBooking(), v.turns, v.isNew)
		if !reflect.DeepEqual(got.Labels(), []string{LabelConfirmReschedule}) {
			t.Fatalf("reply %q: got %v", v.reply, got.Labels())
		}
	}
}

func TestNewUserWithoutBookingGetsLearnMore(t *testing.T) {
	got := NewShaper(keywords.Default()).Shape("Hi! Welcome.", "hi", domain.Context{}, 0, true)
	if !reflect.DeepEqual(got.Labels(), []string{LabelLearnMore}) {
		t.Fatalf("got %v", got.Labels())
	}
	if got.Buttons[0].ID != "learn_more" {
		t.Fatalf("id = %q", got.Buttons[0].ID)
	}
}

func TestBackendButtonSuggestionsAreIgnored(t *testing.T) {
	got := NewShaper(keywords.Default()).Shape("Welcome! [BUTTONS: Book Demo, See Demo]", "hi", domain.Context{}, 0, true)
	if got.Text != "Welcome!" {
		t.Fatalf("text = %q", got.Text)
	}
	if got.Labels()[0] != LabelLearnMore {
		t.Fatalf("backend suggestion leaked into selection: %v", got.Labels())
	}
}

func TestSelectIsFirstMatch(t *testing.T) {
	s := NewShaper(keywords.Default())
	name, _ := s.Select(Input{Message: "cancel or reschedule", HasBooking: true})
	if name != "booking_reschedule" {
		t.Fatalf("expected rule order to prefer reschedule, got %s", name)
	}
	name, _ = s.Select(Input{Message: "thanks", Reply: "Only $10", IsNewUser: true})
	if name != "price_quoted" {
		t.Fatalf("expected price rule before closing and new-user rules, got %s", name)
	}
}

func TestUrgencyTiers(t *testing.T) {
	s := NewShaper(keywords.Default())
	cases := map[string]domain.Urgency{
		"Please reply ASAP.":                  domain.UrgencyUrgent,
		"This is important and urgent":        domain.UrgencyUrgent,
		"We can set it up today.":             domain.UrgencyHigh,
		"The asapx module is unrelated.":      domain.UrgencyNormal,
		"Sounds good, talk later.":            domain.UrgencyNormal,
		"Emergency support is available 24/7": domain.UrgencyUrgent,
	}
	for text, want := range cases {
		if got := s.Urgency(text); got != want {
			t.Errorf("Urgency(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestHasPriceMarker(t *testing.T) {
	s := NewShaper(keywords.Default())
	cases := map[string]bool{
		"Only $ 20 today":             true,
		"Rs. 500 per seat":            true,
		"It is 30€ a user":            true,
		"billed at 99/mo":             true,
		"It takes 5 hours 3 days":     false,
		"Pricing depends on the plan": false,
		"Call us at 555 0100":         false,
	}
	for text, want := range cases {
		if got := s.hasPriceMarker(text); got != want {
			t.Errorf("hasPriceMarker(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestNewButtonIDs(t *testing.T) {
	cases := map[string]string{
		LabelAskQuestion:       "ask_a_question",
		LabelConfirmReschedule: "confirm_reschedule",
		"  Book -- Demo ":      "book_demo",
	}
	for label, want := range cases {
		if got := NewButton(label).ID; got != want {
			t.Errorf("NewButton(%q).ID = %q, want %q", label, got, want)
		}
	}
}

func TestNextAction(t *testing.T) {
	if NextAction(nil) != domain.NextActionContinueConversation {
		t.Fatal("no buttons should continue the conversation")
	}
	if NextAction([]domain.Button{NewButton("x")}) != domain.NextActionWaitForResponse {
		t.Fatal("buttons should wait for a response")
	}
}
