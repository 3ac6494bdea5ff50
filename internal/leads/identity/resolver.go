// Package identity resolves inbound phone numbers to durable per-brand leads.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadconnect_backend/internal/events"
	"leadconnect_backend/internal/leads/domain"
	"leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/platform/apperr"
	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/phone"

	"github.com/google/uuid"
)

// ErrInvalidIdentity is returned when the raw phone carries no digits or the brand is blank.
var ErrInvalidIdentity = errors.New("invalid identity")

// Hints carries request-scoped data used when a lead is touched or created.
type Hints struct {
	Channel     string
	DisplayName string
}

// Resolution is a resolved lead plus whether this call created it.
type Resolution struct {
	Lead    domain.Lead
	Created bool
}

// Resolver implements get-or-create on (normalized phone, brand).
type Resolver struct {
	leads repository.LeadsRepository
	bus   events.Publisher
	log   *logger.Logger
	now   func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithEventBus publishes LeadFirstContact when a lead is created.
func WithEventBus(bus events.Publisher) Option {
	return func(r *Resolver) { r.bus = bus }
}

func NewResolver(leads repository.LeadsRepository, log *logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{leads: leads, log: log, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key derives the identity key for a raw phone and brand.
func Key(rawPhone, brand string) (string, error) {
	key := phone.Normalize(rawPhone)
	if key == "" || strings.TrimSpace(brand) == "" {
		return "", apperr.Wrap(apperr.KindValidation, "phone number and brand are required", ErrInvalidIdentity).
			WithOp("identity.Key")
	}
	return key, nil
}

// Resolve returns the lead for rawPhone within brand, creating it on first contact.
// Concurrent first contacts converge on one row through the store's insert-if-absent.
func (r *Resolver) Resolve(ctx context.Context, rawPhone, brand string, hints Hints) (Resolution, error) {
	const op = "identity.Resolve"

	key, err := Key(rawPhone, brand)
	if err != nil {
		return Resolution{}, err
	}
	now := r.now().UTC()

	existing, found, err := r.leads.FindByNormalizedPhone(ctx, key, brand)
	if err != nil {
		return Resolution{}, apperr.StoreFailure(op, err)
	}
	if found {
		lead, err := r.touch(ctx, op, existing.ID, hints.Channel, now)
		if err != nil {
			return Resolution{}, err
		}
		r.log.LeadResolved(lead.ID.String(), brand, hints.Channel, false)
		return Resolution{Lead: lead}, nil
	}

	lead, inserted, err := r.leads.InsertIfAbsent(ctx, repository.InsertLeadParams{
		RawPhone:        rawPhone,
		NormalizedPhone: key,
		Brand:           brand,
		DisplayName:     strings.TrimSpace(hints.DisplayName),
		Channel:         hints.Channel,
		At:              now,
	})
	if err != nil {
		return Resolution{}, apperr.StoreFailure(op, err)
	}

	if !inserted {
		// Another request created the row between our lookup and insert.
		lead, err = r.touch(ctx, op, lead.ID, hints.Channel, now)
		if err != nil {
			return Resolution{}, err
		}
		r.log.LeadResolved(lead.ID.String(), brand, hints.Channel, false)
		return Resolution{Lead: lead}, nil
	}

	r.log.LeadResolved(lead.ID.String(), brand, hints.Channel, true)
	if r.bus != nil {
		r.bus.Publish(ctx, events.LeadFirstContact{
			BaseEvent:       events.NewBaseEvent(),
			LeadID:          lead.ID,
			Brand:           lead.Brand,
			Channel:         hints.Channel,
			NormalizedPhone: lead.NormalizedPhone,
		})
	}
	return Resolution{Lead: lead, Created: true}, nil
}

// Lookup finds a lead without mutating it. found=false is not an error.
func (r *Resolver) Lookup(ctx context.Context, rawPhone, brand string) (domain.Lead, bool, error) {
	key, err := Key(rawPhone, brand)
	if err != nil {
		return domain.Lead{}, false, err
	}
	lead, found, err := r.leads.FindByNormalizedPhone(ctx, key, brand)
	if err != nil {
		return domain.Lead{}, false, apperr.StoreFailure("identity.Lookup", err)
	}
	return lead, found, nil
}

func (r *Resolver) touch(ctx context.Context, op string, id uuid.UUID, channel string, at time.Time) (domain.Lead, error) {
	lead, err := r.leads.TouchLastInteraction(ctx, id, channel, at)
	if err != nil {
		return domain.Lead{}, apperr.StoreFailure(op, err)
	}
	return lead, nil
}
