package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"leadconnect_backend/internal/conversations/domain"

	"github.com/google/uuid"
)

func TestListRecentNewestFirstAndCapped(t *testing.T) {
	store := NewInMemory()
	lead := uuid.New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 30; i++ {
		store.AppendMessage(domain.Message{
			ID: uuid.New(), LeadID: lead, Channel: domain.ChannelWhatsApp, Role: domain.RoleCustomer,
			Content: fmt.Sprintf("m%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	store.AppendMessage(domain.Message{ID: uuid.New(), LeadID: lead, Channel: domain.ChannelWeb, Content: "other", CreatedAt: base})

	got, err := store.ListRecent(context.Background(), lead, domain.ChannelWhatsApp, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != MaxRecent {
		t.Fatalf("expected %d messages, got %d", MaxRecent, len(got))
	}
	if got[0].Content != "m29" || got[len(got)-1].Content != "m10" {
		t.Fatalf("expected newest first, got %s..%s", got[0].Content, got[len(got)-1].Content)
	}
}

func TestStoreExchangeBumpsSession(t *testing.T) {
	store := NewInMemory()
	lead := uuid.New()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := store.StoreExchange(ctx, Exchange{
			LeadID: lead, SessionID: "s1", Channel: domain.ChannelWeb, At: at,
			Customer:  domain.Message{ID: uuid.New(), Role: domain.RoleCustomer, Content: "hi", CreatedAt: at},
			Assistant: domain.Message{ID: uuid.New(), Role: domain.RoleAssistant, Content: "hello", CreatedAt: at},
			Log:       LogEntry{ID: uuid.New(), Buttons: []string{"Learn More"}, CreatedAt: at},
		})
		if err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	s, ok, _ := store.FindSession(ctx, lead, "s1")
	if !ok || s.MessageCount != 4 || s.Status != domain.SessionStatusActive {
		t.Fatalf("unexpected session %+v ok=%v", s, ok)
	}

	logs, _ := store.ListLogs(ctx, lead, 10)
	if len(logs) != 2 || logs[0].Buttons[0] != "Learn More" {
		t.Fatalf("unexpected logs %+v", logs)
	}

	msgs, _ := store.ListRecent(ctx, lead, domain.ChannelWeb, 10)
	if len(msgs) != 4 || msgs[0].Role != domain.RoleAssistant {
		t.Fatalf("expected assistant turn newest, got %+v", msgs)
	}
}

func TestFindSessionMissingIsNotAnError(t *testing.T) {
	_, ok, err := NewInMemory().FindSession(context.Background(), uuid.New(), "nope")
	if ok || err != nil {
		t.Fatalf("expected absent session and nil error, got ok=%v err=%v", ok, err)
	}
}

func TestSessionsAreScopedToTheLead(t *testing.T) {
	store := NewInMemory()
	owner, other := uuid.New(), uuid.New()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	err := store.StoreExchange(ctx, Exchange{
		LeadID: owner, SessionID: "shared", Channel: domain.ChannelWhatsApp, At: at,
		Customer:  domain.Message{ID: uuid.New(), Role: domain.RoleCustomer, Content: "hi", CreatedAt: at},
		Assistant: domain.Message{ID: uuid.New(), Role: domain.RoleAssistant, Content: "hello", CreatedAt: at},
		Log:       LogEntry{ID: uuid.New(), CreatedAt: at},
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	if _, ok, _ := store.FindSession(ctx, other, "shared"); ok {
		t.Fatal("another lead must not see the session")
	}
	if s, ok, _ := store.FindSession(ctx, owner, "shared"); !ok || s.MessageCount != 2 {
		t.Fatalf("owner session = %+v ok=%v", s, ok)
	}
}
