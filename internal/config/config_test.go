package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `server:
  port: "9090"
auth:
  jwt_secret: file-secret
catalog:
  ttl: 2m
engine:
  default_question_count: 12
  max_question_count: 40
  distribution:
    beginner: 0.4
    intermediate: 0.4
    advanced: 0.2
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Auth.JWTSecret != "file-secret" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Engine.Distribution == nil || cfg.Engine.Distribution.Intermediate != 0.4 {
		t.Fatalf("expected distribution override, got %+v", cfg.Engine.Distribution)
	}
	if got := TTLDuration(cfg.Catalog.TTL, time.Minute); got != 2*time.Minute {
		t.Fatalf("expected 2m ttl, got %s", got)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("expected env secret, got %q", cfg.Auth.JWTSecret)
	}
}

func TestValidateRejectsBadEngineSettings(t *testing.T) {
	var cfg Config
	cfg.Engine.DefaultQuestionCount = 60
	cfg.Engine.MaxQuestionCount = 50
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected default > max to be rejected")
	}

	cfg = Config{}
	cfg.Engine.Distribution = &Distribution{}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected all-zero distribution to be rejected")
	}
}

func TestValidateUsesBuiltInQuestionCountLimits(t *testing.T) {
	var cfg Config
	cfg.Engine.DefaultQuestionCount = 60
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected default above the built-in max to be rejected")
	}

	cfg = Config{}
	cfg.Engine.MaxQuestionCount = 5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected max below the built-in default to be rejected")
	}

	cfg = Config{}
	cfg.Engine.DefaultQuestionCount = 5
	cfg.Engine.MaxQuestionCount = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default == max to pass, got %v", err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("nonsense", time.Second); got != time.Second {
		t.Fatalf("expected fallback for invalid, got %s", got)
	}
}
