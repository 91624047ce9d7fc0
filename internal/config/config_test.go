package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/portal_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.UploadsPerMinute != 6 {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if cfg.Ingest.MapWorkers != 4 || cfg.Ingest.MaxUploadBytes != 10<<20 || cfg.Ingest.PreviewSize != 5 {
		t.Errorf("ingest defaults = %+v", cfg.Ingest)
	}
	if cfg.Maintenance.DailyRunTime != "03:00" || cfg.Maintenance.RetentionDays != 180 {
		t.Errorf("maintenance defaults = %+v", cfg.Maintenance)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	yaml := `
database:
  type: mysql
  mysql:
    host: db.internal
    port: 3307
rate_limit:
  enabled: false
ingest:
  map_workers: 8
  preview_size: 3
maintenance:
  daily_run_enabled: true
  daily_run_time: "02:30"
`
	path := filepath.Join(t.TempDir(), "portal_config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Database.Type != "mysql" || cfg.Database.MySQL.Host != "db.internal" || cfg.Database.MySQL.Port != 3307 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate_limit.enabled not overridden to false")
	}
	if cfg.Ingest.MapWorkers != 8 || cfg.Ingest.PreviewSize != 3 {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	// Values absent from the file keep their defaults
	if cfg.Ingest.MaxUploadBytes != 10<<20 {
		t.Errorf("max_upload_bytes = %d, want default", cfg.Ingest.MaxUploadBytes)
	}
	if !cfg.Maintenance.DailyRunEnabled || cfg.Maintenance.DailyRunTime != "02:30" {
		t.Errorf("maintenance = %+v", cfg.Maintenance)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal_config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() accepted malformed YAML")
	}
}
