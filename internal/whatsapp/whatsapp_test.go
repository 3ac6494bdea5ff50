package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadconnect_backend/platform/logger"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestGOWAClientSendMessage(t *testing.T) {
	var got struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send/message" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Device-Id") != "dev-1" {
			t.Errorf("missing device header")
		}
		if r.Header.Get("Authorization") != "Basic dXNlcjpwYXNz" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewGOWAClient(srv.URL+"/", "user:pass", "dev-1", logger.Discard())
	if err := c.SendMessage(context.Background(), "919876543210", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Phone != "919876543210" || got.Message != "hello" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestGOWAClientClassifiesFailures(t *testing.T) {
	for _, tc := range []struct {
		status   int
		rejected bool
	}{
		{http.StatusServiceUnavailable, false},
		{http.StatusBadRequest, true},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "device offline", tc.status)
		}))

		err := NewGOWAClient(srv.URL, "", "", logger.Discard()).SendMessage(context.Background(), "15551234567", "x")
		srv.Close()

		var de *DeliveryError
		if !errors.As(err, &de) || de.Status != tc.status || de.Body != "device offline" {
			t.Fatalf("status %d: unexpected error %v", tc.status, err)
		}
		if errors.Is(err, ErrRejected) != tc.rejected {
			t.Fatalf("status %d: rejected = %v, want %v", tc.status, !tc.rejected, tc.rejected)
		}
	}
}

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = p
	return &twilioApi.ApiV2010Message{}, f.err
}

func TestTwilioClientAddresses(t *testing.T) {
	fake := &fakeCreator{}
	c := &TwilioClient{api: fake, fromWhats: whatsAppAddress("+14155238886"), log: logger.Discard()}

	if err := c.SendMessage(context.Background(), "919876543210", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if *fake.params.To != "whatsapp:+919876543210" || *fake.params.From != "whatsapp:+14155238886" || *fake.params.Body != "hi" {
		t.Fatalf("unexpected params to=%s from=%s", *fake.params.To, *fake.params.From)
	}

	fake.err = errors.New("20003 authenticate")
	if err := c.SendMessage(context.Background(), "919876543210", "hi"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewTwilioClientRequiresCredentials(t *testing.T) {
	if _, err := NewTwilioClient("", "", "", logger.Discard()); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseInbound(t *testing.T) {
	body := []byte(`{"from":"919876543210:12@s.whatsapp.net","pushname":" Asha ","timestamp":"2026-06-01T09:00:00Z","message":{"id":"3EB0ABC","text":" hi there "}}`)
	got, err := ParseInbound(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.RawPhone != "919876543210" || got.PushName != "Asha" || got.Text != "hi there" || got.MessageID != "3EB0ABC" {
		t.Fatalf("unexpected message %+v", got)
	}
	if got.ReceivedAt.Year() != 2026 {
		t.Fatalf("timestamp not parsed: %v", got.ReceivedAt)
	}
}

func TestParseInboundIgnores(t *testing.T) {
	cases := map[string]string{
		"group":   `{"from":"1203630@g.us","message":{"id":"1","text":"hi"}}`,
		"from me": `{"from":"1555@s.whatsapp.net","is_from_me":true,"message":{"id":"1","text":"hi"}}`,
		"no text": `{"from":"1555@s.whatsapp.net","message":{"id":"1"}}`,
	}
	for name, body := range cases {
		if _, err := ParseInbound([]byte(body)); !errors.Is(err, ErrIgnored) {
			t.Errorf("%s: expected ErrIgnored, got %v", name, err)
		}
	}
	if _, err := ParseInbound([]byte(`{`)); err == nil || errors.Is(err, ErrIgnored) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFormatReply(t *testing.T) {
	got := FormatReply("Hello!", []string{"Learn More"})
	if got != "Hello!\n\n1. Learn More" {
		t.Fatalf("got %q", got)
	}
	if FormatReply("Hello!", nil) != "Hello!" {
		t.Fatal("no labels leaves the text unchanged")
	}
}
