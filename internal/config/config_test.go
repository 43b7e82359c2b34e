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
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("expected default base path /api/v1, got %q", cfg.APIBasePath)
	}
	if cfg.Digest.Window != 24*time.Hour || cfg.Digest.GlobalEndHour != 9 {
		t.Errorf("unexpected digest defaults: %+v", cfg.Digest)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected CORS defaults: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DIGEST_WINDOW", "12h")
	t.Setenv("DIGEST_BATCH_SIZE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port override, got %q", cfg.Port)
	}
	if cfg.Digest.Window != 12*time.Hour || cfg.Digest.BatchSize != 5 {
		t.Errorf("unexpected digest config: %+v", cfg.Digest)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.LogPretty {
		t.Error("expected LOG_PRETTY to be set")
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct{ key, val string }{
		{"PORT", "not-a-number"},
		{"RATE_BURST", "0"},
		{"DIGEST_BATCH_SIZE", "0"},
		{"DIGEST_GLOBAL_END_HOUR", "24"},
		{"OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", c.key, c.val)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/", "/api"},
		{"  /api/v1/  ", "/api/v1"},
	}
	for _, c := range cases {
		if got := normalizeBasePath(c.in); got != c.want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,, c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected result: %v", got)
	}
}
