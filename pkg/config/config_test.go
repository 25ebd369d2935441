package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BIZDESK_APP_ENV", "dev")
	t.Setenv("BIZDESK_APP_PORT", "8080")
	t.Setenv("BIZDESK_REDIS_URL", "localhost:6379")
	t.Setenv("BIZDESK_JWT_SECRET", "a-long-test-secret")
	t.Setenv("BIZDESK_JWT_ISSUER", "bizdesk-test")
	t.Setenv("BIZDESK_ADMIN_TOKEN", "admin-token-123")
	t.Setenv("BIZDESK_SHOP_TOKENS", "shop-token-1, shop-token-2 ,")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.App.IsDev() || cfg.App.IsProd() {
		t.Fatalf("env flags wrong for %q", cfg.App.Env)
	}
	if cfg.DB.Driver != DBDriverSQLite || !cfg.DB.IsSQLite() {
		t.Fatalf("driver = %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN != "bizdesk.db" {
		t.Fatalf("dsn = %q", cfg.DB.DSN)
	}
	if cfg.JWT.ExpirationMinutes != 60 {
		t.Fatalf("expiration = %d", cfg.JWT.ExpirationMinutes)
	}
	if cfg.JWT.RefreshTokenTTL() != 43200*time.Minute {
		t.Fatalf("refresh ttl = %v", cfg.JWT.RefreshTokenTTL())
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.EmbeddingModel != "text-embedding-004" || cfg.Gemini.EmbeddingDim != 768 {
		t.Fatalf("embedding config = %q/%d", cfg.Gemini.EmbeddingModel, cfg.Gemini.EmbeddingDim)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 100 || cfg.RAG.TopK != 3 {
		t.Fatalf("rag config = %+v", cfg.RAG)
	}
	if cfg.AuthRateLimit.LoginWindow != time.Minute {
		t.Fatalf("login window = %v", cfg.AuthRateLimit.LoginWindow)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[0] != "http://localhost:8501" {
		t.Fatalf("cors origins = %v", cfg.App.CORSOrigins)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BIZDESK_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when jwt secret is missing")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BIZDESK_DB_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadRejectsEmptyDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BIZDESK_DB_DSN", "   ")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for blank dsn")
	}
}

func TestShopTokenList(t *testing.T) {
	auth := AuthConfig{ShopTokens: " one, two ,, three "}
	tokens := auth.ShopTokenList()
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens: %v", len(tokens), tokens)
	}
	for i, want := range []string{"one", "two", "three"} {
		if tokens[i] != want {
			t.Fatalf("token %d = %q, want %q", i, tokens[i], want)
		}
	}
}

func TestRefreshTokenTTLNonPositive(t *testing.T) {
	jwt := JWTConfig{RefreshTokenTTLMinutes: 0}
	if jwt.RefreshTokenTTL() != 0 {
		t.Fatalf("ttl = %v, want 0", jwt.RefreshTokenTTL())
	}
}
