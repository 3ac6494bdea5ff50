package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/phone"
)

const (
	gowaSendPath    = "/send/message"
	gowaTimeout     = 10 * time.Second
	errorBodyLimit  = 4 << 10
	deviceIDHeader  = "X-Device-Id"
	basicAuthPrefix = "basic "
)

// ErrRejected marks a 4xx from the delivery provider. Resending the same
// message will not succeed.
var ErrRejected = errors.New("whatsapp: message rejected by provider")

// DeliveryError carries the provider status and a truncated body.
type DeliveryError struct {
	Provider string
	Status   int
	Body     string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	if e.Status >= http.StatusBadRequest && e.Status < http.StatusInternalServerError {
		return ErrRejected
	}
	return nil
}

// GOWAClient posts text messages to a go-whatsapp-web-multidevice gateway.
type GOWAClient struct {
	endpoint   string
	authHeader string
	deviceID   string
	http       *http.Client
	log        *logger.Logger
}

func NewGOWAClient(baseURL, apiKey, deviceID string, log *logger.Logger) *GOWAClient {
	return &GOWAClient{
		endpoint:   strings.TrimRight(baseURL, "/") + gowaSendPath,
		authHeader: basicAuth(apiKey),
		deviceID:   deviceID,
		http:       &http.Client{Timeout: gowaTimeout},
		log:        log,
	}
}

func (c *GOWAClient) Name() string { return ProviderGOWA }

// SendMessage delivers message to phoneNumber. The gateway wants E.164 digits
// without the leading plus.
func (c *GOWAClient) SendMessage(ctx context.Context, phoneNumber, message string) error {
	to := strings.TrimPrefix(phone.NormalizeE164(phoneNumber), "+")

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}{to, message}); err != nil {
		return fmt.Errorf("encode gowa payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build gowa request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	if c.deviceID != "" {
		req.Header.Set(deviceIDHeader, c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gowa send to %s: %w", to, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &DeliveryError{Provider: ProviderGOWA, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	c.log.Debug("whatsapp reply delivered", "provider", ProviderGOWA, "phone", to)
	return nil
}

// basicAuth accepts either "user:pass" or a ready "Basic ..." header value.
func basicAuth(apiKey string) string {
	switch {
	case apiKey == "":
		return ""
	case strings.HasPrefix(strings.ToLower(apiKey), basicAuthPrefix):
		return apiKey
	default:
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey))
	}
}
