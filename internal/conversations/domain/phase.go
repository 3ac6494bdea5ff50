package domain

// Phase is the customer's journey stage.
type Phase string

const (
	PhaseDiscovery  Phase = "discovery"
	PhaseEvaluation Phase = "evaluation"
	PhaseClosing    Phase = "closing"
)

const (
	evaluationThreshold = 3
	closingThreshold    = 8
)

// ClassifyPhase maps a message count to a phase. Negative counts are discovery.
func ClassifyPhase(messageCount int) Phase {
	switch {
	case messageCount < evaluationThreshold:
		return PhaseDiscovery
	case messageCount < closingThreshold:
		return PhaseEvaluation
	default:
		return PhaseClosing
	}
}
