package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("addr: %q", cfg.Addr)
	}
	if cfg.MaxDays != 20 || cfg.TransportRetries != 1 || cfg.TransportDelay != 3*time.Second {
		t.Errorf("pacing defaults: %+v", cfg)
	}
	if cfg.TokenExpiry != 12*time.Hour {
		t.Errorf("token expiry: %v", cfg.TokenExpiry)
	}
	if cfg.RateLimit != 60 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit defaults: %d/%v", cfg.RateLimit, cfg.RateLimitWindow)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WGM_ADDR", "127.0.0.1:9999")
	t.Setenv("WGM_MAX_DAYS", "5")
	t.Setenv("WGM_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9999" || cfg.MaxDays != 5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoad_RejectsMalformed(t *testing.T) {
	t.Setenv("WGM_MAX_DAYS", "not-a-number")
	if _, err := Load(); err == nil {
		t.Error("malformed value should fail to parse")
	}
}
