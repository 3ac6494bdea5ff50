package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/generation"
	"leadconnect_backend/internal/conversations/keywords"
	"leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/shaping"
	"leadconnect_backend/internal/conversations/synthesis"
	"leadconnect_backend/internal/events"
	"leadconnect_backend/internal/leads/identity"
	leadrepo "leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/internal/observability"
	"leadconnect_backend/platform/apperr"
	"leadconnect_backend/platform/logger"
)

type fakeBackend struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []fakeCall
}

type fakeCall struct {
	system string
	turns  []generation.Turn
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(_ context.Context, system string, turns []generation.Turn) (generation.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{system: system, turns: turns})
	if f.err != nil {
		return generation.Completion{}, f.err
	}
	reply := "Hello! How can I help you today?"
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	return generation.Completion{Text: reply, OutputTokens: 7, ElapsedMs: 120}, nil
}

type harness struct {
	leads    *leadrepo.InMemory
	convos   *repository.InMemory
	backend  *fakeBackend
	bus      *events.InMemoryBus
	pipeline *Pipeline
}

func newHarness() *harness {
	log := logger.Discard()
	leads := leadrepo.NewInMemory()
	convos := repository.NewInMemory()
	bus := events.NewInMemoryBus(log)
	backend := &fakeBackend{}
	set := keywords.Default()

	resolver := identity.NewResolver(leads, log, identity.WithEventBus(bus))
	return &harness{
		leads:   leads,
		convos:  convos,
		backend: backend,
		bus:     bus,
		pipeline: NewPipeline(Deps{
			Aggregator: synthesis.NewAggregator(resolver, convos, convos, set, 20),
			Backend:    backend,
			Shaper:     shaping.NewShaper(set),
			Sink:       NewSink(convos, leads),
			Bus:        bus,
			Metrics:    observability.NewMetrics(),
			Log:        log,
		}),
	}
}

func TestHandleFirstContactScenario(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	reply, err := h.pipeline.Handle(ctx, Inbound{
		Channel: domain.ChannelWhatsApp, Brand: "acme", RawPhone: "+1 (555) 123-4567", Text: "hi",
		ReceivedAt: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	lead, found, _ := h.leads.FindByNormalizedPhone(ctx, "15551234567", "acme")
	if !found {
		t.Fatal("expected a lead keyed by the normalized phone")
	}
	if reply.LeadID != lead.ID || reply.Phase != domain.PhaseDiscovery || !reply.IsNewUser {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(reply.Buttons) != 1 || reply.Buttons[0].Label != shaping.LabelLearnMore {
		t.Fatalf("expected Learn More, got %+v", reply.Buttons)
	}
	if reply.NextAction != domain.NextActionWaitForResponse {
		t.Fatalf("nextAction = %q", reply.NextAction)
	}

	msgs, _ := h.convos.ListRecent(ctx, lead.ID, domain.ChannelWhatsApp, 10)
	if len(msgs) != 2 || msgs[1].Role != domain.RoleCustomer || msgs[1].Content != "hi" {
		t.Fatalf("expected stored customer and assistant turns, got %+v", msgs)
	}
	session, ok, _ := h.convos.FindSession(ctx, lead.ID, "whatsapp:acme:15551234567")
	if !ok || session.MessageCount != 2 {
		t.Fatalf("expected default session with two messages, got %+v ok=%v", session, ok)
	}
	logs, _ := h.convos.ListLogs(ctx, lead.ID, 5)
	if len(logs) != 1 || logs[0].Buttons[0] != shaping.LabelLearnMore || logs[0].OutputTokens != 7 {
		t.Fatalf("unexpected log %+v", logs)
	}
}

func TestHandleSecondMessageUsesHistory(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	in := Inbound{Channel: domain.ChannelWeb, Brand: "acme", RawPhone: "15551234567", SessionID: "web-1"}

	in.Text = "hi"
	if _, err := h.pipeline.Handle(ctx, in); err != nil {
		t.Fatal(err)
	}
	in.Text = "tell me more"
	in.RawPhone = "+1 555 123 4567"
	reply, err := h.pipeline.Handle(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if reply.IsNewUser {
		t.Fatal("second message must not be a new user")
	}
	if h.leads.Count() != 1 {
		t.Fatalf("expected one lead across formats, got %d", h.leads.Count())
	}
	call := h.backend.calls[1]
	if len(call.turns) != 3 || call.turns[0].Content != "hi" || call.turns[1].Role != generation.RoleAssistant || call.turns[2].Content != "tell me more" {
		t.Fatalf("unexpected turns %+v", call.turns)
	}
	if !strings.Contains(call.system, "acme") || !strings.Contains(call.system, "discovery") {
		t.Fatalf("system prompt missing brand or phase: %q", call.system)
	}
	// One assistant turn in history, no special keywords.
	if reply.Buttons[0].Label != shaping.LabelLearnMore {
		t.Fatalf("expected default rule, got %v", reply.Buttons)
	}
}

func TestHandleBackendFailureStoresNothing(t *testing.T) {
	h := newHarness()
	h.backend.err = errors.New("429 Too Many Requests")
	ctx := context.Background()

	_, err := h.pipeline.Handle(ctx, Inbound{Channel: domain.ChannelWeb, Brand: "acme", RawPhone: "15551234567", Text: "hi"})
	if !errors.Is(err, generation.ErrBackendRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if apperr.GetKind(err) != apperr.KindRateLimited {
		t.Fatalf("expected rate limited kind, got %v", apperr.GetKind(err))
	}

	lead, _, _ := h.leads.FindByNormalizedPhone(ctx, "15551234567", "acme")
	msgs, _ := h.convos.ListRecent(ctx, lead.ID, domain.ChannelWeb, 10)
	if len(msgs) != 0 {
		t.Fatalf("nothing should be stored on backend failure, got %d messages", len(msgs))
	}
}

func TestHandleRejectsInvalidInput(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.pipeline.Handle(ctx, Inbound{Channel: domain.ChannelWeb, Brand: "acme", RawPhone: "no digits", Text: "hi"})
	if !errors.Is(err, identity.ErrInvalidIdentity) {
		t.Fatalf("expected invalid identity, got %v", err)
	}
	_, err = h.pipeline.Handle(ctx, Inbound{Channel: domain.ChannelWeb, Brand: "acme", RawPhone: "1555", Text: "   "})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}
	if len(h.backend.calls) != 0 {
		t.Fatal("backend must not be called for invalid input")
	}
}

func TestHandleStripsBackendButtonsAndPublishes(t *testing.T) {
	h := newHarness()
	h.backend.replies = []string{"We can set that up today! [BUTTONS: Book Demo | See Demo]"}

	var mu sync.Mutex
	var got []events.ConversationReplied
	h.bus.Subscribe(events.NameConversationReplied, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(events.ConversationReplied))
		return nil
	}))

	reply, err := h.pipeline.Handle(context.Background(), Inbound{
		Channel: domain.ChannelWhatsApp, Brand: "acme", RawPhone: "919876543210", DisplayName: "Asha", Text: "hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	h.bus.Wait()

	if reply.Text != "We can set that up today!" || reply.Urgency != domain.UrgencyHigh {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(got) != 1 || got[0].Button != shaping.LabelLearnMore || got[0].LeadName != "Asha" {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestComposeSystemPromptIncludesBooking(t *testing.T) {
	c := domain.Context{Brand: "acme", Channel: domain.ChannelWeb, Phase: domain.PhaseClosing, Interests: []string{"villa"}}
	prompt := ComposeSystemPrompt(c)
	if !strings.Contains(prompt, "closing") || !strings.Contains(prompt, "- villa") {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if strings.Contains(prompt, "Existing booking") {
		t.Fatal("no booking expected")
	}
}
