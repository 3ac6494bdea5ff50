package service

import (
	"context"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/synthesis"
	leaddomain "leadconnect_backend/internal/leads/domain"
	"leadconnect_backend/platform/apperr"

	"github.com/google/uuid"
)

// LeadLookup finds a lead without creating or touching it.
type LeadLookup interface {
	Lookup(ctx context.Context, rawPhone, brand string) (leaddomain.Lead, bool, error)
}

// Inspector assembles the Context a lead would get, for operators.
type Inspector struct {
	leads      LeadLookup
	aggregator *synthesis.Aggregator
	logs       LogLister
}

func NewInspector(leads LeadLookup, aggregator *synthesis.Aggregator) *Inspector {
	return &Inspector{leads: leads, aggregator: aggregator}
}

// Inspect is read-only. found=false means no lead exists for the identity.
func (i *Inspector) Inspect(ctx context.Context, rawPhone, brand string, channel domain.Channel, sessionID string) (domain.Context, bool, error) {
	lead, found, err := i.leads.Lookup(ctx, rawPhone, brand)
	if err != nil || !found {
		return domain.Context{}, false, err
	}
	convo, err := i.aggregator.Assemble(ctx, lead, false, channel, sessionID)
	if err != nil {
		return domain.Context{}, false, err
	}
	return convo, true, nil
}

// LogLister reads stored exchange log lines.
type LogLister interface {
	ListLogs(ctx context.Context, leadID uuid.UUID, limit int) ([]repository.LogEntry, error)
}

// WithLogs enables Logs on the inspector.
func (i *Inspector) WithLogs(logs LogLister) *Inspector {
	i.logs = logs
	return i
}

// Logs returns the newest exchange log lines for a lead. found=false means no lead.
func (i *Inspector) Logs(ctx context.Context, rawPhone, brand string, limit int) ([]repository.LogEntry, bool, error) {
	lead, found, err := i.leads.Lookup(ctx, rawPhone, brand)
	if err != nil || !found {
		return nil, false, err
	}
	if i.logs == nil {
		return nil, true, nil
	}
	entries, err := i.logs.ListLogs(ctx, lead.ID, limit)
	if err != nil {
		return nil, true, apperr.StoreFailure("service.Inspector.Logs", err)
	}
	return entries, true, nil
}
