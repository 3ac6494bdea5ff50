package domain

import (
	"encoding/json"
	"testing"
)

func decodeContext(t *testing.T, raw string) UnifiedContext {
	t.Helper()
	var u UnifiedContext
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return u
}

func TestBookingExistsOnlyWithDateOrTime(t *testing.T) {
	if b := decodeContext(t, `{"booking":{"status":"pending"}}`).Booking(); b != nil {
		t.Fatalf("expected nil booking without date/time, got %+v", b)
	}

	b := decodeContext(t, `{"booking":{"time":"10:00","status":"confirmed"}}`).Booking()
	if b == nil || b.Time != "10:00" || b.Status != "confirmed" {
		t.Fatalf("unexpected booking %+v", b)
	}

	if UnifiedContext(nil).Booking() != nil {
		t.Fatal("expected nil booking for empty context")
	}
}

func TestWebContextReadsAllFields(t *testing.T) {
	u := decodeContext(t, `{
		"web": {
			"summary": "asked about 2bhk",
			"interests": ["2bhk near metro"],
			"user_inputs": ["budget 80 lakh"],
			"conversation": [{"role":"customer","content":"hi"}, "garbage"]
		},
		"tags": ["hot", 3],
		"budget": "80L"
	}`)

	web := u.Web()
	if web.Summary != "asked about 2bhk" {
		t.Fatalf("unexpected summary %q", web.Summary)
	}
	if len(web.Interests) != 2 || web.Interests[0] != "2bhk near metro" || web.Interests[1] != "budget 80 lakh" {
		t.Fatalf("unexpected interests %v", web.Interests)
	}
	if len(web.Conversation) != 1 || web.Conversation[0].Content != "hi" {
		t.Fatalf("unexpected conversation %v", web.Conversation)
	}
	if tags := u.Tags(); len(tags) != 1 || tags[0] != "hot" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if u.Budget() != "80L" {
		t.Fatalf("unexpected budget %q", u.Budget())
	}
}
