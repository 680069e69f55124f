//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ramadan-timetable-bot/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
		"AI_MODEL", "REDIS_URL", "REDIS_PASSWORD", "DATABASE_URL", "LOG_LEVEL", "MAPPING_FILE",
		"ADMIN_PORT", "ADMIN_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults from env only", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if cfg.AI.DefaultModel != "gpt-4o" {
			t.Errorf("expected default model gpt-4o, got %s", cfg.AI.DefaultModel)
		}
		if cfg.Extraction.MaxImageSide != 2048 || cfg.Extraction.MaxEntries != 50 {
			t.Errorf("unexpected extraction defaults: %+v", cfg.Extraction)
		}
		if cfg.Render.Width != 1000 || cfg.Render.Height != 800 {
			t.Errorf("unexpected render defaults: %+v", cfg.Render)
		}
		if cfg.Mapping.File != "time_mapping.json" {
			t.Errorf("unexpected mapping file: %s", cfg.Mapping.File)
		}
		if cfg.Mapping.FuzzyTolerance != 5*time.Minute {
			t.Errorf("expected 5m fuzzy tolerance, got %s", cfg.Mapping.FuzzyTolerance)
		}
		if cfg.ExtractionLog.Retention != 7*24*time.Hour {
			t.Errorf("unexpected retention: %s", cfg.ExtractionLog.Retention)
		}
		if cfg.Calendar.Timezone != "Asia/Riyadh" {
			t.Errorf("expected Asia/Riyadh calendar timezone, got %q", cfg.Calendar.Timezone)
		}
		if cfg.Database.URL != "" || cfg.Database.MaxConns != 4 {
			t.Errorf("unexpected database defaults: %+v", cfg.Database)
		}
	})

	t.Run("database url from env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("DATABASE_URL", "postgres://bot@localhost/ramadan")

		cfg, err := Load("", false)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if cfg.Database.URL != "postgres://bot@localhost/ramadan" {
			t.Errorf("expected env database url, got %q", cfg.Database.URL)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		yml := []byte(`
bot:
  token: "from-file"
  rate_limit_per_minute: 3
  default_language: ar
ai:
  openai_key: "file-key"
  default_model: "gpt-4o-mini"
mapping:
  fuzzy_tolerance: 10m
`)
		if err := os.WriteFile(path, yml, 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load(path, true)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if cfg.Bot.Token != "from-env" {
			t.Errorf("expected env token to win, got %s", cfg.Bot.Token)
		}
		if cfg.Bot.RateLimitPerMinute != 3 || cfg.Bot.DefaultLanguage != "ar" {
			t.Errorf("unexpected bot config: %+v", cfg.Bot)
		}
		if cfg.Mapping.FuzzyTolerance != 10*time.Minute {
			t.Errorf("expected 10m tolerance, got %s", cfg.Mapping.FuzzyTolerance)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("expected debug level, got %s", cfg.Log.Level)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected dev runtime flag")
		}
	})

	t.Run("gemini key alone selects a gemini model", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg, err := Load("", false)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if cfg.AI.DefaultModel != "gemini-2.0-flash" {
			t.Errorf("expected gemini default, got %s", cfg.AI.DefaultModel)
		}
	})

	t.Run("missing secrets are configuration errors", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load("", false); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration without token, got %v", err)
		}

		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		if _, err := Load("", false); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration without AI key, got %v", err)
		}

		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("AI_MODEL", "gpt-4o")
		if _, err := Load("", false); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration for gpt model without OpenAI key, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("bot: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, false); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})
}
