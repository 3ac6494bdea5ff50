// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// SchedulerConfig provides Redis/asynq settings for background processing.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// GenerationConfig provides settings for the text generation backend.
type GenerationConfig interface {
	GetGenerationProvider() string
	GetGenerationAPIKey() string
	GetGenerationBaseURL() string
	GetGenerationModel() string
	GetGenerationTimeout() time.Duration
}

// WhatsAppConfig provides settings for WhatsApp delivery and the inbound webhook.
type WhatsAppConfig interface {
	GetWhatsAppProvider() string
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
	GetWhatsAppBrand() string
	GetWhatsAppWebhookKey() string
	GetTwilioAccountSID() string
	GetTwilioAuthToken() string
	GetTwilioFromNumber() string
}

// ChatConfig provides settings for web chat session tokens.
type ChatConfig interface {
	GetChatTokenSecret() string
	GetChatTokenTTL() time.Duration
}

// ConversationConfig provides tuning for context synthesis and response shaping.
type ConversationConfig interface {
	GetHistoryLimit() int
	GetKeywordsFile() string
}

// EscalationConfig provides SMTP settings for urgent-conversation emails.
type EscalationConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEscalationFrom() string
	GetEscalationTo() string
	IsEscalationEnabled() bool
}

// AdminConfig provides the shared key for admin introspection endpoints.
type AdminConfig interface {
	GetAdminAPIKey() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	CORSAllowAll       bool
	CORSOrigins        []string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	GenerationProvider string
	GenerationAPIKey   string
	GenerationBaseURL  string
	GenerationModel    string
	GenerationTimeout  time.Duration
	WhatsAppProvider   string
	WhatsAppURL        string
	WhatsAppKey        string
	WhatsAppDeviceID   string
	WhatsAppBrand      string
	WhatsAppWebhookKey string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	ChatTokenSecret    string
	ChatTokenTTL       time.Duration
	HistoryLimit       int
	KeywordsFile       string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EscalationFrom     string
	EscalationTo       string
	AdminAPIKey        string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// GenerationConfig implementation
func (c *Config) GetGenerationProvider() string       { return c.GenerationProvider }
func (c *Config) GetGenerationAPIKey() string         { return c.GenerationAPIKey }
func (c *Config) GetGenerationBaseURL() string        { return c.GenerationBaseURL }
func (c *Config) GetGenerationModel() string          { return c.GenerationModel }
func (c *Config) GetGenerationTimeout() time.Duration { return c.GenerationTimeout }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppProvider() string   { return c.WhatsAppProvider }
func (c *Config) GetWhatsAppURL() string        { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string        { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string   { return c.WhatsAppDeviceID }
func (c *Config) GetWhatsAppBrand() string      { return c.WhatsAppBrand }
func (c *Config) GetWhatsAppWebhookKey() string { return c.WhatsAppWebhookKey }
func (c *Config) GetTwilioAccountSID() string   { return c.TwilioAccountSID }
func (c *Config) GetTwilioAuthToken() string    { return c.TwilioAuthToken }
func (c *Config) GetTwilioFromNumber() string   { return c.TwilioFromNumber }

// ChatConfig implementation
func (c *Config) GetChatTokenSecret() string     { return c.ChatTokenSecret }
func (c *Config) GetChatTokenTTL() time.Duration { return c.ChatTokenTTL }

// ConversationConfig implementation
func (c *Config) GetHistoryLimit() int    { return c.HistoryLimit }
func (c *Config) GetKeywordsFile() string { return c.KeywordsFile }

// EscalationConfig implementation
func (c *Config) GetSMTPHost() string       { return c.SMTPHost }
func (c *Config) GetSMTPPort() int          { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string   { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string   { return c.SMTPPassword }
func (c *Config) GetEscalationFrom() string { return c.EscalationFrom }
func (c *Config) GetEscalationTo() string   { return c.EscalationTo }
func (c *Config) IsEscalationEnabled() bool {
	return c.SMTPHost != "" && c.EscalationTo != "" && c.EscalationFrom != ""
}

// AdminConfig implementation
func (c *Config) GetAdminAPIKey() string { return c.AdminAPIKey }

// MaxHistoryLimit bounds how many messages the aggregator may fetch.
const MaxHistoryLimit = 20

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "conversations"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		GenerationProvider: strings.ToLower(getEnv("GENERATION_PROVIDER", "moonshot")),
		GenerationAPIKey:   getEnv("GENERATION_API_KEY", getEnv("MOONSHOT_API_KEY", "")),
		GenerationBaseURL:  getEnv("GENERATION_BASE_URL", ""),
		GenerationModel:    getEnv("GENERATION_MODEL", ""),
		GenerationTimeout:  mustDuration(getEnv("GENERATION_TIMEOUT", "30s")),
		WhatsAppProvider:   strings.ToLower(getEnv("WHATSAPP_PROVIDER", "gowa")),
		WhatsAppURL:        getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:        getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:   getEnv("WHATSAPP_DEVICE_ID", ""),
		WhatsAppBrand:      getEnv("WHATSAPP_BRAND", ""),
		WhatsAppWebhookKey: getEnv("WHATSAPP_WEBHOOK_KEY", ""),
		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:   getEnv("TWILIO_FROM_NUMBER", ""),
		ChatTokenSecret:    getEnv("CHAT_TOKEN_SECRET", ""),
		ChatTokenTTL:       mustDuration(getEnv("CHAT_TOKEN_TTL", "24h")),
		HistoryLimit:       clampHistory(mustInt(getEnv("HISTORY_LIMIT", "20"))),
		KeywordsFile:       getEnv("KEYWORDS_FILE", ""),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EscalationFrom:     getEnv("ESCALATION_EMAIL_FROM", ""),
		EscalationTo:       getEnv("ESCALATION_EMAIL_TO", ""),
		AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ChatTokenSecret == "" {
		return nil, fmt.Errorf("CHAT_TOKEN_SECRET is required")
	}
	if cfg.GenerationTimeout <= 0 {
		return nil, fmt.Errorf("GENERATION_TIMEOUT must be a positive duration")
	}
	switch cfg.GenerationProvider {
	case "moonshot", "openai":
	default:
		return nil, fmt.Errorf("GENERATION_PROVIDER must be moonshot or openai, got %q", cfg.GenerationProvider)
	}
	switch cfg.WhatsAppProvider {
	case "gowa", "twilio":
	default:
		return nil, fmt.Errorf("WHATSAPP_PROVIDER must be gowa or twilio, got %q", cfg.WhatsAppProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func clampHistory(n int) int {
	if n <= 0 || n > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
