package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Booklist
		Tasks
		Cleanup
		Audit
		Metrics
		API
		CSRF
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		ReadOnly                 bool // rejects every write request
	}
	Database struct {
		Driver       string // sqlite, mysql or postgres
		Path         string // sqlite file; also locates the task queue database
		DSN          string
		MaxOpenConns int
		MaxIdleConns int
	}
	UI struct {
		TemplatesPath string // overrides the embedded templates when set
		ItemsPerPage  int
	}
	Booklist struct {
		CommitMode        string // transactional or fanout
		CommitConcurrency int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Cleanup struct {
		Enabled     bool
		Schedule    string // Cron format: "0 3 * * *" = nightly
		GracePeriod time.Duration
	}
	Audit struct {
		RetentionDays int
	}
	Metrics struct {
		Enabled bool
	}
	API struct {
		BaseURL string
		Timeout time.Duration
	}
	CSRF struct {
		Enabled       bool
		Secret        string // 32 raw bytes or 64 hex characters; generated per process when empty
		SecureCookies bool
	}
)

// LoadEnv reads an optional .env file into the process environment.
// Variables already set take precedence.
func LoadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		log.Println("No .env file found, using environment")
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("read_only", false)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", 10)
	v.SetDefault("database_max_idle_conns", 5)

	v.SetDefault("templates_path", "")
	v.SetDefault("items_per_page", 10)

	v.SetDefault("booklist_commit_mode", "transactional")
	v.SetDefault("booklist_commit_concurrency", 4)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", DefaultCleanupSchedule)
	v.SetDefault("cleanup_grace_period", "24h")
	v.SetDefault("audit_retention_days", 90)

	v.SetDefault("metrics_enabled", true)

	v.SetDefault("api_base_url", DefaultAPIBaseURL)
	v.SetDefault("api_timeout", "10s")

	v.SetDefault("csrf_enabled", true)
	v.SetDefault("csrf_secret", "")
	v.SetDefault("csrf_secure_cookies", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			ReadOnly:                 v.GetBool("READ_ONLY"),
		},
		Database: Database{
			Driver:       v.GetString("DATABASE_DRIVER"),
			Path:         v.GetString("DATABASE_PATH"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DATABASE_MAX_IDLE_CONNS"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			ItemsPerPage:  v.GetInt("ITEMS_PER_PAGE"),
		},
		Booklist: Booklist{
			CommitMode:        v.GetString("BOOKLIST_COMMIT_MODE"),
			CommitConcurrency: v.GetInt("BOOKLIST_COMMIT_CONCURRENCY"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Cleanup: Cleanup{
			Enabled:     v.GetBool("CLEANUP_ENABLED"),
			Schedule:    v.GetString("CLEANUP_SCHEDULE"),
			GracePeriod: v.GetDuration("CLEANUP_GRACE_PERIOD"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		API: API{
			BaseURL: v.GetString("API_BASE_URL"),
			Timeout: v.GetDuration("API_TIMEOUT"),
		},
		CSRF: CSRF{
			Enabled:       v.GetBool("CSRF_ENABLED"),
			Secret:        v.GetString("CSRF_SECRET"),
			SecureCookies: v.GetBool("CSRF_SECURE_COOKIES"),
		},
	}
}

// Key returns the 32-byte CSRF key. An empty secret yields a random key, so
// forms rendered before a restart stop validating.
func (c CSRF) Key() ([]byte, error) {
	if c.Secret == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate CSRF key: %w", err)
		}
		return key, nil
	}
	if len(c.Secret) == 64 {
		if key, err := hex.DecodeString(c.Secret); err == nil {
			return key, nil
		}
	}
	if len(c.Secret) == 32 {
		return []byte(c.Secret), nil
	}
	return nil, fmt.Errorf("CSRF_SECRET must be 32 bytes or 64 hex characters, got %d characters", len(c.Secret))
}
