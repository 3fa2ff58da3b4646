package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogMode != "dev" {
		t.Errorf("expected default log mode dev, got %q", cfg.LogMode)
	}
	if len(cfg.Google.Scopes) != 2 {
		t.Errorf("expected 2 default scopes, got %v", cfg.Google.Scopes)
	}
	if cfg.Google.CallbackAddr != "localhost:7391" {
		t.Errorf("unexpected callback addr %q", cfg.Google.CallbackAddr)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogMode != "dev" {
		t.Errorf("expected defaults for missing file, got log mode %q", cfg.LogMode)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
google:
  client_id: cid
  api_key: key
columns:
  required: [name, ring]
log_mode: prod
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Google.ClientID != "cid" {
		t.Errorf("expected client id cid, got %q", cfg.Google.ClientID)
	}
	if cfg.LogMode != "prod" {
		t.Errorf("expected log mode prod, got %q", cfg.LogMode)
	}
	if len(cfg.Columns.Required) != 2 || cfg.Columns.Required[0] != "name" {
		t.Errorf("unexpected required columns %v", cfg.Columns.Required)
	}
	if cfg.Google.CallbackAddr != "localhost:7391" {
		t.Errorf("expected callback addr backfilled, got %q", cfg.Google.CallbackAddr)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("google: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RADARSHEET_CLIENT_ID", "env-cid")
	t.Setenv("RADARSHEET_LOG_MODE", "prod")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Google.ClientID != "env-cid" {
		t.Errorf("expected env client id, got %q", cfg.Google.ClientID)
	}
	if cfg.LogMode != "prod" {
		t.Errorf("expected env log mode, got %q", cfg.LogMode)
	}
}
