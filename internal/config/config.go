// Package config loads service settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type CalendarConfig struct {
	ID        string `yaml:"id"`
	APIKey    string `yaml:"api_key"`
	MaxEvents int64  `yaml:"max_events"`
}

type DriveConfig struct {
	FolderID string `yaml:"folder_id"`
	// ServiceAccountKey is the raw JSON key. ServiceAccountKeyFile, when
	// set, is read instead.
	ServiceAccountKey     string `yaml:"service_account_key"`
	ServiceAccountKeyFile string `yaml:"service_account_key_file"`
}

type SyncConfig struct {
	CronSecret string        `yaml:"cron_secret"`
	Cooldown   time.Duration `yaml:"cooldown"`
	// Schedule is a five-field cron spec for in-process syncs; empty
	// disables them.
	Schedule string `yaml:"schedule"`
}

type SnapshotConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Passphrase string `yaml:"passphrase"`
	Prefix     string `yaml:"prefix"`
}

type FeedConfig struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
}

type Config struct {
	Port           string   `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	DataDir        string   `yaml:"data_dir"`
	EventsFile     string   `yaml:"events_file"`
	ResourcesFile  string   `yaml:"resources_file"`
	DBPath         string   `yaml:"db_path"`
	OriginPatterns []string `yaml:"origin_patterns"`

	Calendar    CalendarConfig `yaml:"calendar"`
	Drive       DriveConfig    `yaml:"drive"`
	Sync        SyncConfig     `yaml:"sync"`
	Snapshot    SnapshotConfig `yaml:"snapshot"`
	Feed        FeedConfig     `yaml:"feed"`
	GitHubToken string         `yaml:"github_token"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:          "8080",
		LogLevel:      "info",
		LogFormat:     "text",
		DataDir:       "data",
		EventsFile:    "events.json",
		ResourcesFile: "resources.json",
		DBPath:        "clubsite.db",
		Calendar:      CalendarConfig{MaxEvents: 50},
		Sync: SyncConfig{
			Cooldown: 60 * time.Second,
			Schedule: "0 */6 * * *",
		},
		Snapshot: SnapshotConfig{Region: "us-east-1", Prefix: "catalogs"},
		Feed:     FeedConfig{Name: "Club Events"},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CLUB_* variables. Credentials also fall
// back to the unprefixed names used by earlier deployments
// (GOOGLE_CALENDAR_ID, CRON_SECRET and so on).
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.Port, "CLUB_PORT")
	str(&c.LogLevel, "CLUB_LOG_LEVEL")
	str(&c.LogFormat, "CLUB_LOG_FORMAT")
	str(&c.DataDir, "CLUB_DATA_DIR")
	str(&c.EventsFile, "CLUB_EVENTS_FILE")
	str(&c.ResourcesFile, "CLUB_RESOURCES_FILE")
	str(&c.DBPath, "CLUB_DB_PATH")

	str(&c.Calendar.ID, "CLUB_CALENDAR_ID", "GOOGLE_CALENDAR_ID")
	str(&c.Calendar.APIKey, "CLUB_CALENDAR_API_KEY", "GOOGLE_CALENDAR_API_KEY")
	str(&c.Drive.FolderID, "CLUB_DRIVE_FOLDER_ID", "GOOGLE_DRIVE_FOLDER_ID")
	str(&c.Drive.ServiceAccountKey, "CLUB_DRIVE_SERVICE_ACCOUNT_KEY", "GOOGLE_SERVICE_ACCOUNT_KEY")
	str(&c.Drive.ServiceAccountKeyFile, "CLUB_DRIVE_SERVICE_ACCOUNT_KEY_FILE")
	str(&c.Sync.CronSecret, "CLUB_CRON_SECRET", "CRON_SECRET")
	str(&c.GitHubToken, "CLUB_GITHUB_TOKEN", "GITHUB_TOKEN")

	str(&c.Snapshot.Endpoint, "CLUB_S3_ENDPOINT")
	str(&c.Snapshot.Bucket, "CLUB_S3_BUCKET")
	str(&c.Snapshot.Region, "CLUB_S3_REGION")
	str(&c.Snapshot.AccessKey, "CLUB_S3_ACCESS_KEY")
	str(&c.Snapshot.SecretKey, "CLUB_S3_SECRET_KEY")
	str(&c.Snapshot.Passphrase, "CLUB_SNAPSHOT_PASSPHRASE")
	str(&c.Feed.Name, "CLUB_FEED_NAME")
	str(&c.Feed.Domain, "CLUB_FEED_DOMAIN")

	if v := getenv("CLUB_ORIGIN_PATTERNS"); v != "" {
		c.OriginPatterns = splitList(v)
	}

	// An explicitly empty schedule disables the scheduler, so presence
	// matters here rather than a non-empty value.
	if v, ok := lookup(getenv, "CLUB_SYNC_SCHEDULE"); ok {
		c.Sync.Schedule = strings.TrimSpace(v)
	}

	if v := getenv("CLUB_SYNC_COOLDOWN"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("CLUB_SYNC_COOLDOWN: %w", err)
		}
		c.Sync.Cooldown = d
	}
	if v := getenv("CLUB_CALENDAR_MAX_EVENTS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CLUB_CALENDAR_MAX_EVENTS: %w", err)
		}
		c.Calendar.MaxEvents = n
	}
	return nil
}

// lookup treats the sentinel value "off" as an explicit empty setting,
// since getenv cannot distinguish unset from empty.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if strings.EqualFold(v, "off") {
		return "", true
	}
	return v, true
}

// parseDuration accepts Go durations ("90s") or bare seconds ("60").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks ranges and the cron schedule.
func (c *Config) Validate() error {
	var errs []error
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("port %q is not a number", c.Port))
	}
	if c.Sync.Cooldown <= 0 {
		errs = append(errs, errors.New("sync cooldown must be positive"))
	}
	if c.Calendar.MaxEvents < 1 || c.Calendar.MaxEvents > 2500 {
		errs = append(errs, fmt.Errorf("calendar max_events %d out of range 1-2500", c.Calendar.MaxEvents))
	}
	if c.Sync.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("sync schedule %q: %w", c.Sync.Schedule, err))
		}
	}
	if c.EventsFile == "" || c.ResourcesFile == "" {
		errs = append(errs, errors.New("catalog file names must not be empty"))
	}
	return errors.Join(errs...)
}

// EventsPath is the events catalog location.
func (c *Config) EventsPath() string {
	return c.resolve(c.EventsFile)
}

// ResourcesPath is the resources catalog location.
func (c *Config) ResourcesPath() string {
	return c.resolve(c.ResourcesFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// ServiceAccountKeyJSON returns the Drive key, reading the key file when
// one is configured.
func (c *Config) ServiceAccountKeyJSON() (string, error) {
	if c.Drive.ServiceAccountKeyFile == "" {
		return c.Drive.ServiceAccountKey, nil
	}
	data, err := os.ReadFile(c.Drive.ServiceAccountKeyFile)
	if err != nil {
		return "", fmt.Errorf("read service account key: %w", err)
	}
	return string(data), nil
}
