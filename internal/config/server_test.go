package config

import "testing"

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orgmanager")
	t.Setenv("JWKS_URL", "https://example.com/jwks.json")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.RateLimitRequests != 100 {
		t.Errorf("expected default rate limit 100, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitPeriod != "1m" {
		t.Errorf("expected default rate period 1m, got %s", cfg.RateLimitPeriod)
	}
}

func TestLoadServerConfigMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWKS_URL", "https://example.com/jwks.json")

	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadServerConfigNoVerifierSource(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orgmanager")
	t.Setenv("JWKS_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error when neither JWKS_URL nor JWT_SECRET is set")
	}
}

func TestLoadServerConfigSecretOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orgmanager")
	t.Setenv("JWKS_URL", "")
	t.Setenv("JWT_SECRET", "shhh")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTSecret != "shhh" {
		t.Errorf("expected secret to be loaded, got %q", cfg.JWTSecret)
	}
}

func TestLoadServerConfigEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orgmanager")
	t.Setenv("JWT_SECRET", "shhh")

	tests := []struct {
		value string
		want  Environment
	}{
		{"production", EnvProduction},
		{"staging", EnvStaging},
		{"development", EnvDevelopment},
		{"bogus", EnvDevelopment},
		{"", EnvDevelopment},
	}

	for _, tt := range tests {
		t.Setenv("ENV", tt.value)
		cfg, err := LoadServerConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Environment != tt.want {
			t.Errorf("ENV=%q: expected %s, got %s", tt.value, tt.want, cfg.Environment)
		}
	}
}

func TestLoadServerConfigCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orgmanager")
	t.Setenv("JWT_SECRET", "shhh")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com ,")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %d: %v", len(cfg.CORSOrigins), cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("unexpected first origin %q", cfg.CORSOrigins[0])
	}
}
