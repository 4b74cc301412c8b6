package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Sync.Cooldown != time.Minute {
		t.Errorf("cooldown = %v, want 1m", cfg.Sync.Cooldown)
	}
	if cfg.Calendar.MaxEvents != 50 {
		t.Errorf("max events = %d, want 50", cfg.Calendar.MaxEvents)
	}
	if cfg.Sync.Schedule != "0 */6 * * *" {
		t.Errorf("schedule = %q", cfg.Sync.Schedule)
	}
	if got := cfg.EventsPath(); got != filepath.Join("data", "events.json") {
		t.Errorf("EventsPath = %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clubsite.yaml")
	yml := `
port: "9090"
data_dir: /srv/club
resources_file: /var/lib/club/resources.json
calendar:
  id: club@group.calendar.google.com
  max_events: 100
sync:
  cooldown: 2m
  schedule: "@hourly"
snapshot:
  bucket: club-backups
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Calendar.ID != "club@group.calendar.google.com" || cfg.Calendar.MaxEvents != 100 {
		t.Errorf("calendar = %+v", cfg.Calendar)
	}
	if cfg.Sync.Cooldown != 2*time.Minute {
		t.Errorf("cooldown = %v", cfg.Sync.Cooldown)
	}
	if cfg.Snapshot.Region != "us-east-1" {
		t.Errorf("snapshot region default lost: %q", cfg.Snapshot.Region)
	}
	if got := cfg.EventsPath(); got != filepath.Join("/srv/club", "events.json") {
		t.Errorf("EventsPath = %q", got)
	}
	if got := cfg.ResourcesPath(); got != "/var/lib/club/resources.json" {
		t.Errorf("ResourcesPath = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"CLUB_PORT":                "3000",
		"GOOGLE_CALENDAR_ID":       "legacy-id",
		"CLUB_CALENDAR_API_KEY":    "key",
		"GOOGLE_CALENDAR_API_KEY":  "ignored",
		"CRON_SECRET":              "secret",
		"CLUB_SYNC_COOLDOWN":       "90",
		"CLUB_CALENDAR_MAX_EVENTS": "25",
		"CLUB_SYNC_SCHEDULE":       "off",
		"CLUB_ORIGIN_PATTERNS":     "club.example, *.club.example",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Calendar.ID != "legacy-id" {
		t.Errorf("calendar id = %q, want legacy fallback", cfg.Calendar.ID)
	}
	if cfg.Calendar.APIKey != "key" {
		t.Errorf("api key = %q, prefixed name must win", cfg.Calendar.APIKey)
	}
	if cfg.Sync.CronSecret != "secret" {
		t.Errorf("cron secret = %q", cfg.Sync.CronSecret)
	}
	if cfg.Sync.Cooldown != 90*time.Second {
		t.Errorf("cooldown = %v", cfg.Sync.Cooldown)
	}
	if cfg.Calendar.MaxEvents != 25 {
		t.Errorf("max events = %d", cfg.Calendar.MaxEvents)
	}
	if cfg.Sync.Schedule != "" {
		t.Errorf("schedule = %q, want disabled", cfg.Sync.Schedule)
	}
	if len(cfg.OriginPatterns) != 2 || cfg.OriginPatterns[1] != "*.club.example" {
		t.Errorf("origin patterns = %v", cfg.OriginPatterns)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	for _, env := range []map[string]string{
		{"CLUB_SYNC_COOLDOWN": "soon"},
		{"CLUB_CALENDAR_MAX_EVENTS": "many"},
	} {
		if err := Default().ApplyEnv(envMap(env)); err == nil {
			t.Errorf("ApplyEnv(%v): expected error", env)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = "http"
	cfg.Sync.Cooldown = 0
	cfg.Calendar.MaxEvents = 0
	cfg.Sync.Schedule = "every tuesday"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"port", "cooldown", "max_events", "schedule"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestServiceAccountKeyJSON(t *testing.T) {
	cfg := Default()
	cfg.Drive.ServiceAccountKey = `{"inline":true}`
	if got, _ := cfg.ServiceAccountKeyJSON(); got != `{"inline":true}` {
		t.Errorf("inline key = %q", got)
	}

	path := filepath.Join(t.TempDir(), "key.json")
	os.WriteFile(path, []byte(`{"file":true}`), 0o600)
	cfg.Drive.ServiceAccountKeyFile = path
	if got, err := cfg.ServiceAccountKeyJSON(); err != nil || got != `{"file":true}` {
		t.Errorf("file key = %q, %v", got, err)
	}

	cfg.Drive.ServiceAccountKeyFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := cfg.ServiceAccountKeyJSON(); err == nil {
		t.Error("expected error for missing key file")
	}
}
