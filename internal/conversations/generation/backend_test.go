package generation

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"leadconnect_backend/platform/ai/moonshot"
	"leadconnect_backend/platform/apperr"
)

func TestClassifyByStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
		kind   apperr.Kind
	}{
		{http.StatusUnauthorized, ErrBackendAuth, apperr.KindUpstreamAuth},
		{http.StatusForbidden, ErrBackendAuth, apperr.KindUpstreamAuth},
		{http.StatusTooManyRequests, ErrBackendRateLimited, apperr.KindRateLimited},
		{http.StatusBadGateway, ErrBackendUnavailable, apperr.KindUnavailable},
	}
	for _, tc := range cases {
		cause := &moonshot.StatusError{StatusCode: tc.status, Message: "nope"}
		err := Classify("moonshot", cause)
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if apperr.GetKind(err) != tc.kind {
			t.Errorf("status %d: expected kind %v, got %v", tc.status, tc.kind, apperr.GetKind(err))
		}
		var statusErr *moonshot.StatusError
		if !errors.As(err, &statusErr) {
			t.Errorf("status %d: original error must stay in the chain", tc.status)
		}
	}
}

func TestClassifyByText(t *testing.T) {
	cases := map[string]error{
		"Invalid API key provided":     ErrBackendAuth,
		"rate limit reached for model": ErrBackendRateLimited,
		"dial tcp: connection refused": ErrBackendUnavailable,
	}
	for msg, want := range cases {
		if err := Classify("openai", errors.New(msg)); !errors.Is(err, want) {
			t.Errorf("%q: expected %v, got %v", msg, want, err)
		}
	}
}

func TestClassifyTimeoutIsUnavailable(t *testing.T) {
	err := Classify("moonshot", context.DeadlineExceeded)
	if !errors.Is(err, ErrBackendUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected unavailable wrapping deadline, got %v", err)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	once := Classify("moonshot", &moonshot.StatusError{StatusCode: 429})
	twice := Classify("moonshot", once)
	if once != twice {
		t.Fatal("classifying an already classified error must return it unchanged")
	}
	if Classify("moonshot", nil) != nil {
		t.Fatal("nil stays nil")
	}
}
