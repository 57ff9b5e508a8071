package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/azeasycpa/askcpa/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "askcpa.db" {
		t.Errorf("expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.TokenDuration != time.Hour {
		t.Errorf("expected 1h token duration, got %v", cfg.TokenDuration)
	}
	if cfg.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Workers)
	}
	if cfg.Mailer.BaseURL != "https://api.sendgrid.com" {
		t.Errorf("unexpected mailer base url %q", cfg.Mailer.BaseURL)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ASKCPA_ADDR", ":9999")
	t.Setenv("ASKCPA_ADMIN_EMAIL", "cpa@azeasycpa.com")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("env override ignored, got %q", cfg.Addr)
	}
	if cfg.AdminEmail != "cpa@azeasycpa.com" {
		t.Errorf("admin email override ignored, got %q", cfg.AdminEmail)
	}
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "addr: \":7070\"\nworkers: 4\nmailer:\n  from_email: \"support@azeasycpa.com\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("yaml addr override ignored, got %q", cfg.Addr)
	}
	if cfg.Workers != 4 {
		t.Errorf("yaml workers override ignored, got %d", cfg.Workers)
	}
	if cfg.Mailer.FromEmail != "support@azeasycpa.com" {
		t.Errorf("nested yaml override ignored, got %q", cfg.Mailer.FromEmail)
	}
	// untouched defaults survive the overlay
	if cfg.DatabasePath != "askcpa.db" {
		t.Errorf("default database path lost, got %q", cfg.DatabasePath)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate_Development(t *testing.T) {
	t.Setenv("ASKCPA_ENV", "development")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// development tolerates default secret and missing admin credentials
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate in development: %v", err)
	}
}

func TestValidate_Production(t *testing.T) {
	t.Setenv("ASKCPA_ENV", "production")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected rejection of default jwt secret in production")
	}

	cfg.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected rejection of missing admin credentials in production")
	}

	cfg.AdminEmail = "cpa@azeasycpa.com"
	cfg.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with full production settings: %v", err)
	}
}

func TestValidate_BadValues(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	cfg.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for empty addr")
	}

	cfg, _ = config.LoadConfig("")
	cfg.APITimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for non-positive timeout")
	}

	cfg, _ = config.LoadConfig("")
	cfg.TokenDuration = -time.Minute
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for non-positive token duration")
	}
}
