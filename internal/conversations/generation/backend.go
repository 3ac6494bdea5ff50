// Package generation wraps text-completion providers behind one Backend
// and classifies their failures.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadconnect_backend/platform/apperr"
)

var (
	ErrBackendAuth        = errors.New("generation backend rejected credentials")
	ErrBackendRateLimited = errors.New("generation backend rate limited")
	ErrBackendUnavailable = errors.New("generation backend unavailable")
)

// Turn is one prior exchange passed to the backend.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completion is the backend's answer plus usage metadata.
type Completion struct {
	Text         string
	OutputTokens int
	ElapsedMs    int64
}

// Backend is an opaque text-completion service.
type Backend interface {
	Name() string
	Complete(ctx context.Context, systemPrompt string, turns []Turn) (Completion, error)
}

// statusCoder is implemented by provider errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatusCode() int
}

// Classify wraps a provider error with one of the three backend sentinels and
// the matching apperr kind. A known HTTP status wins over message text.
// Errors that match nothing, including timeouts, count as unavailable.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBackendAuth) || errors.Is(err, ErrBackendRateLimited) || errors.Is(err, ErrBackendUnavailable) {
		return err
	}

	sentinel := classifyStatus(statusOf(err))
	if sentinel == nil {
		sentinel = classifyText(err.Error())
	}

	kind := apperr.KindUnavailable
	msg := "the assistant is temporarily unavailable"
	switch sentinel {
	case ErrBackendAuth:
		kind, msg = apperr.KindUpstreamAuth, "the assistant is misconfigured"
	case ErrBackendRateLimited:
		kind, msg = apperr.KindRateLimited, "the assistant is busy, please retry shortly"
	}
	return apperr.Wrap(kind, msg, fmt.Errorf("%w: %w", sentinel, err)).WithOp("generation." + provider)
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

func classifyStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrBackendAuth
	case status == 429:
		return ErrBackendRateLimited
	case status >= 500:
		return ErrBackendUnavailable
	default:
		return nil
	}
}

func classifyText(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "401", "403", "unauthorized", "forbidden", "invalid api key", "invalid_api_key", "authentication"):
		return ErrBackendAuth
	case containsAny(lower, "429", "rate limit", "rate_limit", "too many requests", "quota"):
		return ErrBackendRateLimited
	default:
		return ErrBackendUnavailable
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
