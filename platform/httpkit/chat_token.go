package httpkit

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const chatTokenType = "chat"

// ChatSession is the identity carried by a web chat token.
type ChatSession struct {
	SessionID string
	Brand     string
	Phone     string
	Name      string
}

type chatClaims struct {
	SessionID string `json:"sid"`
	Brand     string `json:"brand"`
	Phone     string `json:"phone"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// ChatTokens issues and verifies HS256 web chat session tokens.
type ChatTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewChatTokens(secret string, ttl time.Duration) *ChatTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ChatTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the session and returns it with its expiry.
func (t *ChatTokens) Issue(s ChatSession) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := chatClaims{
		SessionID: s.SessionID,
		Brand:     s.Brand,
		Phone:     s.Phone,
		Name:      s.Name,
		Type:      chatTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature, expiry and token type.
func (t *ChatTokens) Parse(raw string) (ChatSession, error) {
	var claims chatClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return ChatSession{}, errors.New(errInvalidToken)
	}
	if claims.Type != chatTokenType || strings.TrimSpace(claims.SessionID) == "" {
		return ChatSession{}, errors.New(errInvalidToken)
	}
	return ChatSession{
		SessionID: claims.SessionID,
		Brand:     claims.Brand,
		Phone:     claims.Phone,
		Name:      claims.Name,
	}, nil
}
