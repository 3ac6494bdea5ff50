package service

import (
	"context"
	"testing"
	"time"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/keywords"
	"leadconnect_backend/internal/conversations/synthesis"
	"leadconnect_backend/internal/leads/identity"
	"leadconnect_backend/platform/logger"
)

func TestInspectorIsReadOnly(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	resolver := identity.NewResolver(h.leads, logger.Discard())
	inspector := NewInspector(resolver, synthesis.NewAggregator(resolver, h.convos, h.convos, keywords.Default(), 20))

	if _, found, err := inspector.Inspect(ctx, "+91 98765 43210", "acme", domain.ChannelWhatsApp, ""); err != nil || found {
		t.Fatalf("unknown lead: found=%v err=%v", found, err)
	}
	if h.leads.Count() != 0 {
		t.Fatal("inspect must not create leads")
	}

	if _, err := h.pipeline.Handle(ctx, Inbound{
		Channel: domain.ChannelWhatsApp, Brand: "acme", RawPhone: "919876543210", Text: "hello",
		ReceivedAt: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	before, _, _ := h.leads.FindByNormalizedPhone(ctx, "919876543210", "acme")

	got, found, err := inspector.Inspect(ctx, "+91 98765 43210", "acme", domain.ChannelWhatsApp, "")
	if err != nil || !found {
		t.Fatalf("inspect: found=%v err=%v", found, err)
	}
	if got.LeadID != before.ID || got.MessageCount != 2 || got.IsNewUser {
		t.Fatalf("unexpected context %+v", got)
	}

	after, _, _ := h.leads.FindByNormalizedPhone(ctx, "919876543210", "acme")
	if !after.LastInteractionAt.Equal(before.LastInteractionAt) {
		t.Fatal("inspect must not touch the lead")
	}
}

func TestInspectorLogs(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	resolver := identity.NewResolver(h.leads, logger.Discard())
	inspector := NewInspector(resolver, synthesis.NewAggregator(resolver, h.convos, h.convos, keywords.Default(), 20)).
		WithLogs(h.convos)

	if _, found, err := inspector.Logs(ctx, "919876543210", "acme", 10); err != nil || found {
		t.Fatalf("unknown lead: found=%v err=%v", found, err)
	}

	for _, text := range []string{"hi", "what does it cost"} {
		if _, err := h.pipeline.Handle(ctx, Inbound{Channel: domain.ChannelWeb, Brand: "acme", RawPhone: "919876543210", Text: text}); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	entries, found, err := inspector.Logs(ctx, "919876543210", "acme", 10)
	if err != nil || !found {
		t.Fatalf("logs: found=%v err=%v", found, err)
	}
	if len(entries) != 2 || entries[0].UserMessage != "what does it cost" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
}
