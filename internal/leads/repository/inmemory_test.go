package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadconnect_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func TestInMemoryInsertIfAbsentReturnsExisting(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, inserted, err := store.InsertIfAbsent(ctx, InsertLeadParams{
		RawPhone: "+1 555", NormalizedPhone: "1555", Brand: "acme", Channel: "web", At: at,
	})
	if err != nil || !inserted {
		t.Fatalf("expected insert, got inserted=%v err=%v", inserted, err)
	}

	second, inserted, err := store.InsertIfAbsent(ctx, InsertLeadParams{
		RawPhone: "1555", NormalizedPhone: "1555", Brand: "acme", Channel: "whatsapp", At: at.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Fatal("expected existing row on second insert")
	}
	if second.ID != first.ID || second.FirstTouchpoint != "web" {
		t.Fatalf("expected original lead, got %+v", second)
	}
}

func TestInMemoryBrandScopesIdentity(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	a, _, _ := store.InsertIfAbsent(ctx, InsertLeadParams{NormalizedPhone: "1555", Brand: "acme"})
	b, _, _ := store.InsertIfAbsent(ctx, InsertLeadParams{NormalizedPhone: "1555", Brand: "globex"})
	if a.ID == b.ID {
		t.Fatal("expected distinct leads per brand")
	}
	if store.Count() != 2 {
		t.Fatalf("expected 2 leads, got %d", store.Count())
	}
}

func TestInMemoryConcurrentInsertCreatesOne(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	ids := make(map[uuid.UUID]struct{})
	insertedCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lead, inserted, err := store.InsertIfAbsent(ctx, InsertLeadParams{NormalizedPhone: "919876543210", Brand: "acme"})
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			mu.Lock()
			ids[lead.ID] = struct{}{}
			if inserted {
				insertedCount++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != 1 || insertedCount != 1 {
		t.Fatalf("expected one lead and one insert, got ids=%d inserted=%d", len(ids), insertedCount)
	}
}

func TestInMemoryTouchLastInteraction(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	lead, _, _ := store.InsertIfAbsent(ctx, InsertLeadParams{NormalizedPhone: "1", Brand: "acme", Channel: "web", At: at})

	touched, err := store.TouchLastInteraction(ctx, lead.ID, "whatsapp", at.Add(time.Minute))
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if touched.LastTouchpoint != "whatsapp" || !touched.LastInteractionAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("unexpected touch result: %+v", touched)
	}
	if touched.FirstTouchpoint != "web" {
		t.Fatalf("first touchpoint must not change, got %q", touched.FirstTouchpoint)
	}

	if _, err := store.TouchLastInteraction(ctx, uuid.New(), "web", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryReturnsCopies(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	lead, _, _ := store.InsertIfAbsent(ctx, InsertLeadParams{NormalizedPhone: "1", Brand: "acme"})
	if err := store.SetUnifiedContext(lead.ID, domain.UnifiedContext{"tags": []any{"vip"}}); err != nil {
		t.Fatalf("set context: %v", err)
	}

	found, ok, _ := store.FindByNormalizedPhone(ctx, "1", "acme")
	if !ok {
		t.Fatal("expected lead")
	}
	found.UnifiedContext["tags"] = []any{"mutated"}

	again, _, _ := store.FindByNormalizedPhone(ctx, "1", "acme")
	tags := again.UnifiedContext.Tags()
	if len(tags) != 1 || tags[0] != "vip" {
		t.Fatalf("store leaked a shared map, tags=%v", tags)
	}
}

func TestInMemoryRejectsUnencodableContext(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	lead, _, _ := store.InsertIfAbsent(ctx, InsertLeadParams{NormalizedPhone: "1", Brand: "acme"})
	booking := domain.UnifiedContext{"booking": map[string]any{"date": "2026-07-01"}}
	if err := store.SetUnifiedContext(lead.ID, booking); err != nil {
		t.Fatalf("set context: %v", err)
	}

	if err := store.SetUnifiedContext(lead.ID, domain.UnifiedContext{"booking": make(chan int)}); err == nil {
		t.Fatal("expected an encode error")
	}

	found, _, _ := store.FindByNormalizedPhone(ctx, "1", "acme")
	if b := found.UnifiedContext.Booking(); b == nil || b.Date != "2026-07-01" {
		t.Fatalf("rejected write must keep the previous booking, got %+v", b)
	}
}
