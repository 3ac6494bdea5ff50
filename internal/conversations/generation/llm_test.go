package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadconnect_backend/platform/ai/moonshot"
)

func TestLLMBackendWithMoonshot(t *testing.T) {
	var received struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Hi there! "}}],"usage":{"completion_tokens":4}}`))
	}))
	defer srv.Close()

	b := NewLLMBackend(ProviderMoonshot, moonshot.NewModel(moonshot.Config{BaseURL: srv.URL, APIKey: "k"}))
	got, err := b.Complete(context.Background(), "system prompt", []Turn{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hey"},
		{Role: RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Text != "Hi there!" || got.OutputTokens != 4 {
		t.Fatalf("unexpected completion %+v", got)
	}
	if len(received.Messages) != 4 || received.Messages[0].Role != "system" || received.Messages[2].Role != "assistant" {
		t.Fatalf("unexpected request messages %+v", received.Messages)
	}
}

func TestLLMBackendClassifiesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	b := NewLLMBackend(ProviderMoonshot, moonshot.NewModel(moonshot.Config{BaseURL: srv.URL}))
	_, err := b.Complete(context.Background(), "", []Turn{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrBackendAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestLLMBackendEmptyCompletionIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer srv.Close()

	b := NewLLMBackend(ProviderMoonshot, moonshot.NewModel(moonshot.Config{BaseURL: srv.URL}))
	if _, err := b.Complete(context.Background(), "", nil); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
