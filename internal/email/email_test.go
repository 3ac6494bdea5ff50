package email

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderEscalationEscapesCustomerText(t *testing.T) {
	subject, body, err := renderEscalation(Escalation{
		LeadPhone:       "919876543210",
		Brand:           "acme",
		Channel:         "WhatsApp",
		CustomerMessage: "<script>urgent</script> call me asap",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "[acme] Urgent WhatsApp conversation with 919876543210" {
		t.Fatalf("subject = %q", subject)
	}
	if strings.Contains(body, "<script>") || !strings.Contains(body, "call me asap") {
		t.Fatalf("body not escaped: %s", body)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "bot@example.com", "Lead Desk")
	msg, err := s.buildMessage("ops@example.com", "hello", "<p>hi</p>")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"Subject: hello", "ops@example.com", "bot@example.com"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildMessageRejectsBadAddress(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "bot@example.com", "")
	if _, err := s.buildMessage("not an address", "x", "y"); err == nil {
		t.Fatal("expected invalid recipient error")
	}
}
