package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppAddr != ":8080" {
		t.Fatalf("addr = %q", cfg.AppAddr)
	}
	if cfg.BackendTimeout != 30*time.Second {
		t.Fatalf("backend timeout = %v", cfg.BackendTimeout)
	}
	if cfg.UploadMaxBytes != 16*1024*1024 {
		t.Fatalf("upload limit = %d", cfg.UploadMaxBytes)
	}
	if cfg.IsProduction() {
		t.Fatal("default env must not be production")
	}
}

func TestLoadConfigTrimsBackendURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://finance.internal/")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BackendBaseURL != "http://finance.internal" {
		t.Fatalf("backend url = %q", cfg.BackendBaseURL)
	}
}

func TestLoadConfigRejectsBlankBackendURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "   ")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for blank backend url")
	}
}

func TestIsProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production")
	}
}
