package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CHAT_TOKEN_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaultsAndClamping(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leadconnect")
	t.Setenv("CHAT_TOKEN_SECRET", "secret")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("CORS_ORIGINS", "https://a.example, *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetHistoryLimit() != MaxHistoryLimit {
		t.Fatalf("expected history limit clamped to %d, got %d", MaxHistoryLimit, cfg.GetHistoryLimit())
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatal("expected wildcard origin to enable allow-all")
	}
	if cfg.GetGenerationProvider() != "moonshot" {
		t.Fatalf("expected moonshot default provider, got %q", cfg.GetGenerationProvider())
	}
	if cfg.IsEscalationEnabled() {
		t.Fatal("expected escalation disabled without SMTP settings")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leadconnect")
	t.Setenv("CHAT_TOKEN_SECRET", "secret")
	t.Setenv("GENERATION_PROVIDER", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown generation provider")
	}
}
