package domain

// Button is a call-to-action affordance built once by the shaper.
type Button struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Urgency tiers of a reply.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

const (
	NextActionWaitForResponse      = "wait_for_response"
	NextActionContinueConversation = "continue_conversation"
)

// ShapedResponse is the cleaned reply and its affordances.
type ShapedResponse struct {
	Text       string   `json:"text"`
	Buttons    []Button `json:"buttons"`
	Urgency    Urgency  `json:"urgency"`
	NextAction string   `json:"nextAction"`
}

// Labels returns the button labels in order.
func (r ShapedResponse) Labels() []string {
	out := make([]string, 0, len(r.Buttons))
	for _, b := range r.Buttons {
		out = append(out, b.Label)
	}
	return out
}
