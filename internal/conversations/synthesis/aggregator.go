// Package synthesis builds the per-request conversation Context from the lead,
// its channel session, recent history and the cross-channel blob.
package synthesis

import (
	"context"
	"slices"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/keywords"
	"leadconnect_backend/internal/conversations/repository"
	leaddomain "leadconnect_backend/internal/leads/domain"
	"leadconnect_backend/internal/leads/identity"
	"leadconnect_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

// LeadResolver is the identity capability the aggregator needs.
type LeadResolver interface {
	Resolve(ctx context.Context, rawPhone, brand string, hints identity.Hints) (identity.Resolution, error)
}

// BuildInput identifies the inbound message's sender.
type BuildInput struct {
	RawPhone    string
	Brand       string
	DisplayName string
	Channel     domain.Channel
	SessionID   string
}

// Aggregator merges identity, session, history and unified context into a Context.
type Aggregator struct {
	resolver     LeadResolver
	sessions     repository.SessionReader
	messages     repository.MessageReader
	terms        []string
	historyLimit int
}

func NewAggregator(resolver LeadResolver, sessions repository.SessionReader, messages repository.MessageReader, set keywords.Set, historyLimit int) *Aggregator {
	if historyLimit <= 0 || historyLimit > repository.MaxRecent {
		historyLimit = repository.MaxRecent
	}
	return &Aggregator{
		resolver:     resolver,
		sessions:     sessions,
		messages:     messages,
		terms:        set.Interests,
		historyLimit: historyLimit,
	}
}

// Build resolves the sender, touching or creating the lead, then assembles the Context.
func (a *Aggregator) Build(ctx context.Context, in BuildInput) (domain.Context, error) {
	res, err := a.resolver.Resolve(ctx, in.RawPhone, in.Brand, identity.Hints{
		Channel:     string(in.Channel),
		DisplayName: in.DisplayName,
	})
	if err != nil {
		return domain.Context{}, err
	}
	return a.Assemble(ctx, res.Lead, res.Created, in.Channel, in.SessionID)
}

// Assemble reads session and history for an already resolved lead. It never writes,
// so identical store state always yields an identical Context.
func (a *Aggregator) Assemble(ctx context.Context, lead leaddomain.Lead, created bool, channel domain.Channel, sessionID string) (domain.Context, error) {
	const op = "synthesis.Assemble"

	var (
		session    domain.Session
		hasSession bool
		history    []domain.Message
	)

	g, gctx := errgroup.WithContext(ctx)
	if sessionID != "" {
		g.Go(func() error {
			var err error
			session, hasSession, err = a.sessions.FindSession(gctx, lead.ID, sessionID)
			return err
		})
	}
	g.Go(func() error {
		var err error
		history, err = a.messages.ListRecent(gctx, lead.ID, channel, a.historyLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Context{}, apperr.StoreFailure(op, err)
	}

	// The store returns newest first.
	chronological := slices.Clone(history)
	slices.Reverse(chronological)

	web := lead.UnifiedContext.Web()
	extracted := ExtractInterests(chronological, a.terms)

	count := len(chronological)
	if hasSession {
		count = session.MessageCount
	}

	return domain.Context{
		LeadID:          lead.ID,
		Name:            lead.DisplayName,
		Phone:           lead.RawPhone,
		NormalizedPhone: lead.NormalizedPhone,
		Brand:           lead.Brand,
		Channel:         channel,
		SessionID:       sessionID,
		FirstTouchpoint: lead.FirstTouchpoint,
		LastTouchpoint:  lead.LastTouchpoint,
		FirstContactAt:  lead.CreatedAt,
		LastContactAt:   lead.LastInteractionAt,

		HasSession:       hasSession,
		MessageCount:     count,
		HistoryTurnCount: countRole(chronological, domain.RoleAssistant),
		IsNewUser:        created || len(chronological) == 0,
		Phase:            domain.ClassifyPhase(count),

		Summary:   mergeSummaries(web.Summary, channelSummary(chronological), channel),
		Interests: mergeInterests(web.Interests, extracted),
		Tags:      lead.UnifiedContext.Tags(),
		Budget:    lead.UnifiedContext.Budget(),

		Booking:         lead.UnifiedContext.Booking(),
		RecentMessages:  chronological,
		WebConversation: web.Conversation,
	}, nil
}

func countRole(messages []domain.Message, role domain.Role) int {
	n := 0
	for _, m := range messages {
		if m.Role == role {
			n++
		}
	}
	return n
}
