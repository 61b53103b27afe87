package config

import (
	"testing"

	"github.com/spf13/viper"
)

// loadWithEnv resets viper, applies the given environment, and loads config
// from a directory with no .env file.
func loadWithEnv(t *testing.T, env map[string]string) Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("expected config load to succeed, got %v", err)
	}
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadWithEnv(t, nil)

	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.AllowedOrigins != "*" {
		t.Fatalf("expected default origins *, got %q", cfg.AllowedOrigins)
	}
	if cfg.RevalidationSecret != "dev-secret" {
		t.Fatalf("expected default revalidation secret, got %q", cfg.RevalidationSecret)
	}
	if cfg.RecaptchaMinScore != 0.5 {
		t.Fatalf("expected default min score 0.5, got %f", cfg.RecaptchaMinScore)
	}
	if cfg.CatalogCacheTTLSeconds != 3600 {
		t.Fatalf("expected default ttl 3600, got %d", cfg.CatalogCacheTTLSeconds)
	}
	if cfg.CachePrefix != "savings:catalog" {
		t.Fatalf("expected default cache prefix, got %q", cfg.CachePrefix)
	}
}

func TestLoadConfigDerivedFlags(t *testing.T) {
	tests := []struct {
		name             string
		env              map[string]string
		wantBotEnabled   bool
		wantRevalidation bool
	}{
		{
			name: "defaults: simulated bot, no revalidation target",
		},
		{
			name:           "secret key enables bot verification",
			env:            map[string]string{"RECAPTCHA_SECRET_KEY": "secret-123"},
			wantBotEnabled: true,
		},
		{
			name:             "frontend url enables revalidation with the default secret",
			env:              map[string]string{"FRONTEND_URL": "https://cajadigital.example"},
			wantRevalidation: true,
		},
		{
			name: "blank secret disables revalidation even with a frontend url",
			env: map[string]string{
				"FRONTEND_URL":        "https://cajadigital.example",
				"REVALIDATION_SECRET": "   ",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadWithEnv(t, tt.env)
			if cfg.BotVerificationEnabled != tt.wantBotEnabled {
				t.Fatalf("expected bot verification %t, got %t", tt.wantBotEnabled, cfg.BotVerificationEnabled)
			}
			if cfg.RevalidationEnabled != tt.wantRevalidation {
				t.Fatalf("expected revalidation %t, got %t", tt.wantRevalidation, cfg.RevalidationEnabled)
			}
		})
	}
}

func TestLoadConfigCoercesOutOfRangeScore(t *testing.T) {
	cfg := loadWithEnv(t, map[string]string{"RECAPTCHA_MIN_SCORE": "7"})
	if cfg.RecaptchaMinScore != 0.5 {
		t.Fatalf("expected out-of-range score coerced to 0.5, got %f", cfg.RecaptchaMinScore)
	}

	cfg = loadWithEnv(t, map[string]string{"RECAPTCHA_MIN_SCORE": "0.8"})
	if cfg.RecaptchaMinScore != 0.8 {
		t.Fatalf("expected in-range score kept, got %f", cfg.RecaptchaMinScore)
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	cfg := loadWithEnv(t, map[string]string{
		"SERVER_PORT":               "9090",
		"CATALOG_API_URL":           "https://catalog.cajadigital.example",
		"CATALOG_CACHE_TTL_SECONDS": "120",
		"REDIS_URL":                 "  redis://localhost:6379/0  ",
	})

	if cfg.ServerPort != "9090" {
		t.Fatalf("expected port from env, got %q", cfg.ServerPort)
	}
	if cfg.CatalogAPIURL != "https://catalog.cajadigital.example" {
		t.Fatalf("expected catalog url from env, got %q", cfg.CatalogAPIURL)
	}
	if cfg.CatalogCacheTTLSeconds != 120 {
		t.Fatalf("expected ttl from env, got %d", cfg.CatalogCacheTTLSeconds)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("expected trimmed redis url, got %q", cfg.RedisURL)
	}
}
