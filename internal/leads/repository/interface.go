package repository

import (
	"context"
	"errors"
	"time"

	"leadconnect_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("lead not found")

// InsertLeadParams describes a first-contact lead.
type InsertLeadParams struct {
	RawPhone        string
	NormalizedPhone string
	Brand           string
	DisplayName     string
	Channel         string
	At              time.Time
}

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	// FindByNormalizedPhone returns found=false when no lead exists; that is not an error.
	FindByNormalizedPhone(ctx context.Context, normalizedPhone, brand string) (domain.Lead, bool, error)
}

// LeadWriter provides the mutations identity resolution and the conversation sink need.
type LeadWriter interface {
	// InsertIfAbsent atomically inserts or returns the existing row for
	// (NormalizedPhone, Brand). inserted reports which happened.
	InsertIfAbsent(ctx context.Context, params InsertLeadParams) (lead domain.Lead, inserted bool, err error)
	// TouchLastInteraction sets last_touchpoint and last_interaction_at.
	TouchLastInteraction(ctx context.Context, id uuid.UUID, channel string, at time.Time) (domain.Lead, error)
}

// LeadsRepository is the full lead store capability.
type LeadsRepository interface {
	LeadReader
	LeadWriter
}

var (
	_ LeadsRepository = (*Repository)(nil)
	_ LeadsRepository = (*InMemory)(nil)
)
