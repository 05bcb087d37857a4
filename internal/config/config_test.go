package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.DownloadURL != "http://localhost:9090" {
		t.Errorf("download url = %q", cfg.DownloadURL)
	}
	if cfg.RunIdleTimeout.Hours() != 2 {
		t.Errorf("idle timeout = %v, want 2h", cfg.RunIdleTimeout)
	}
	if cfg.ReaperSpec != "@every 10m" {
		t.Errorf("reaper spec = %q", cfg.ReaperSpec)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a short JWT secret")
	}
}
