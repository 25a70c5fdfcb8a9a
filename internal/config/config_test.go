package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/hms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("wrong default port: %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
	if cfg.MpesaBaseURL != "https://sandbox.safaricom.co.ke" {
		t.Errorf("wrong default mpesa base url: %s", cfg.MpesaBaseURL)
	}
	if cfg.MpesaTimeout() != 10*time.Second {
		t.Errorf("wrong default mpesa timeout: %v", cfg.MpesaTimeout())
	}
	if cfg.MpesaRetryAttempts != 0 {
		t.Errorf("retries must default to zero, got %d", cfg.MpesaRetryAttempts)
	}
	if cfg.JWTTTL() != time.Hour {
		t.Errorf("wrong default jwt ttl: %v", cfg.JWTTTL())
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/hms")
	t.Setenv("PORT", "9090")
	t.Setenv("MPESA_TIMEOUT_SECONDS", "5")
	t.Setenv("MPESA_RETRY_ATTEMPTS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("wrong port: %s", cfg.Port)
	}
	if cfg.MpesaTimeout() != 5*time.Second {
		t.Errorf("wrong mpesa timeout: %v", cfg.MpesaTimeout())
	}
	if cfg.MpesaRetryAttempts != 2 {
		t.Errorf("wrong retry attempts: %d", cfg.MpesaRetryAttempts)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Env: "production", JWTSecret: "s", MpesaConsumerKey: "k",
		MpesaConsumerSecret: "s", MpesaShortcode: "174379", MpesaPasskey: "p",
		MpesaCallbackURL: "https://example.com/cb"}

	if err := base.Validate(); err != nil {
		t.Errorf("complete production config must validate: %v", err)
	}

	noSecret := base
	noSecret.JWTSecret = ""
	if err := noSecret.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET outside development")
	}

	noMpesa := base
	noMpesa.MpesaConsumerKey = ""
	if err := noMpesa.Validate(); err == nil {
		t.Error("expected error for missing mpesa credentials in production")
	}

	negRetries := base
	negRetries.MpesaRetryAttempts = -1
	if err := negRetries.Validate(); err == nil {
		t.Error("expected error for negative retry attempts")
	}

	dev := Config{Env: "development"}
	if err := dev.Validate(); err != nil {
		t.Errorf("development config must validate without secrets: %v", err)
	}
}
