package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"leadconnect_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// InMemory is an in-process lead store for tests and local runs.
// The map key plays the role of the (normalized_phone, brand) constraint.
type InMemory struct {
	mu    sync.Mutex
	byKey map[string]uuid.UUID
	byID  map[uuid.UUID]domain.Lead
}

func NewInMemory() *InMemory {
	return &InMemory{
		byKey: make(map[string]uuid.UUID),
		byID:  make(map[uuid.UUID]domain.Lead),
	}
}

func identityKey(normalizedPhone, brand string) string {
	return normalizedPhone + "\x00" + brand
}

func (m *InMemory) FindByNormalizedPhone(_ context.Context, normalizedPhone, brand string) (domain.Lead, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byKey[identityKey(normalizedPhone, brand)]
	if !ok {
		return domain.Lead{}, false, nil
	}
	return cloneLead(m.byID[id]), true, nil
}

func (m *InMemory) InsertIfAbsent(_ context.Context, params InsertLeadParams) (domain.Lead, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identityKey(params.NormalizedPhone, params.Brand)
	if id, ok := m.byKey[key]; ok {
		return cloneLead(m.byID[id]), false, nil
	}

	lead := domain.Lead{
		ID:                uuid.New(),
		RawPhone:          params.RawPhone,
		NormalizedPhone:   params.NormalizedPhone,
		DisplayName:       params.DisplayName,
		Brand:             params.Brand,
		FirstTouchpoint:   params.Channel,
		LastTouchpoint:    params.Channel,
		CreatedAt:         params.At,
		LastInteractionAt: params.At,
		UnifiedContext:    domain.UnifiedContext{},
	}
	m.byKey[key] = lead.ID
	m.byID[lead.ID] = lead
	return cloneLead(lead), true, nil
}

func (m *InMemory) TouchLastInteraction(_ context.Context, id uuid.UUID, channel string, at time.Time) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.byID[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	lead.LastTouchpoint = channel
	if at.After(lead.LastInteractionAt) {
		lead.LastInteractionAt = at
	}
	m.byID[id] = lead
	return cloneLead(lead), nil
}

// SetUnifiedContext replaces a lead's blob, standing in for external booking and web flows.
func (m *InMemory) SetUnifiedContext(id uuid.UUID, uc domain.UnifiedContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	stored, err := copyContext(uc)
	if err != nil {
		return err
	}
	lead.UnifiedContext = stored
	m.byID[id] = lead
	return nil
}

// Count returns how many leads are stored.
func (m *InMemory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func cloneLead(l domain.Lead) domain.Lead {
	l.UnifiedContext = cloneContext(l.UnifiedContext)
	return l
}

// copyContext deep-copies through JSON, the same encoding the jsonb column
// applies, so a blob Postgres would refuse is refused here too.
func copyContext(uc domain.UnifiedContext) (domain.UnifiedContext, error) {
	out := domain.UnifiedContext{}
	if len(uc) == 0 {
		return out, nil
	}
	data, err := json.Marshal(uc)
	if err != nil {
		return nil, fmt.Errorf("encode unified context: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode unified context: %w", err)
	}
	return out, nil
}

// cloneContext copies a blob that already passed copyContext on write.
func cloneContext(uc domain.UnifiedContext) domain.UnifiedContext {
	out, err := copyContext(uc)
	if err != nil {
		panic("leads: stored unified context no longer round-trips: " + err.Error())
	}
	return out
}
