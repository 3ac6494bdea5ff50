// Package domain holds the lead aggregate and read-only views over its
// cross-channel context blob.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the durable identity for one customer within one brand.
// (NormalizedPhone, Brand) is unique.
type Lead struct {
	ID                uuid.UUID
	RawPhone          string
	NormalizedPhone   string
	DisplayName       string
	Brand             string
	FirstTouchpoint   string
	LastTouchpoint    string
	CreatedAt         time.Time
	LastInteractionAt time.Time
	UnifiedContext    UnifiedContext
}

// UnifiedContext is the open per-lead blob written by channel flows.
// Known sub-keys are read through typed accessors; everything else passes through.
type UnifiedContext map[string]any

const (
	keyBooking = "booking"
	keyWeb     = "web"
	keyTags    = "tags"
	keyBudget  = "budget"
)

// Booking is the derived booking sub-view.
type Booking struct {
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
	Status string `json:"status,omitempty"`
}

// Exists reports whether a date or time is present.
func (b Booking) Exists() bool {
	return b.Date != "" || b.Time != ""
}

// Turn is one entry of a channel's raw conversation log.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WebContext is the cross-channel sub-blob left by the web chat flow.
type WebContext struct {
	Summary      string
	Interests    []string
	Conversation []Turn
}

// Booking returns the booking view, or nil unless it exists.
func (u UnifiedContext) Booking() *Booking {
	raw, ok := u[keyBooking].(map[string]any)
	if !ok {
		return nil
	}
	b := Booking{
		Date:   stringField(raw, "date"),
		Time:   stringField(raw, "time"),
		Status: stringField(raw, "status"),
	}
	if !b.Exists() {
		return nil
	}
	return &b
}

// Web returns the web sub-blob. Missing fields are zero values.
func (u UnifiedContext) Web() WebContext {
	raw, ok := u[keyWeb].(map[string]any)
	if !ok {
		return WebContext{}
	}

	web := WebContext{Summary: stringField(raw, "summary")}

	// Older writers stored free-text inputs under user_inputs.
	web.Interests = append(web.Interests, stringList(raw["interests"])...)
	web.Interests = append(web.Interests, stringList(raw["user_inputs"])...)

	if items, ok := raw["conversation"].([]any); ok {
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			web.Conversation = append(web.Conversation, Turn{
				Role:    stringField(entry, "role"),
				Content: stringField(entry, "content"),
			})
		}
	}

	return web
}

// Tags returns the lead's tags.
func (u UnifiedContext) Tags() []string {
	return stringList(u[keyTags])
}

// Budget returns the recorded budget as free text.
func (u UnifiedContext) Budget() string {
	switch v := u[keyBudget].(type) {
	case string:
		return v
	case map[string]any:
		return stringField(v, "text")
	default:
		return ""
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringList(v any) []string {
	switch typed := v.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
