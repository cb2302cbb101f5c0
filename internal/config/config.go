package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Library
		Database
		Ingest
		OrphanSweep
		Audit
		Global
		Tasks
	}

	HTTP struct {
		Port           int32
		Host           string
		AllowedOrigins []string
		MaxUploadMB    int64

		// Clients are locked out after this many rejected uploads; 0 disables
		UploadMaxFailures   int
		UploadFailureWindow time.Duration
		UploadLockout       time.Duration
	}
	Library struct {
		Dir          string // One extracted directory per book
		StagingDir   string // Uploads in flight and lock files
		PublicPrefix string // URL path the library directory is served under
		ViewerPath   string // Optional static reader UI served at /viewer
	}
	Database struct {
		Path            string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
		BusyTimeout     time.Duration
		AcquireTimeout  time.Duration
	}
	Ingest struct {
		LockTimeout    time.Duration
		MaxEntryMB     int64
		MaxExtractedMB int64
	}
	OrphanSweep struct {
		Enabled  bool
		Schedule string // Cron format: "30 4 * * *" = daily at 04:30
	}
	Audit struct {
		RetentionDays int    // Days to keep audit events (default: 30)
		Schedule      string // Cron format for the retention cleanup
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8081)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("max_upload_mb", 1024)
	v.SetDefault("upload_max_failures", 10)
	v.SetDefault("upload_failure_window", "15m")
	v.SetDefault("upload_lockout", "15m")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("library_dir", DefaultLibraryDir)
	v.SetDefault("staging_dir", DefaultStagingDir)
	v.SetDefault("public_prefix", "/uploads")
	v.SetDefault("viewer_path", "")

	// Connection pool defaults
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", "1h")
	v.SetDefault("db_busy_timeout", "10s")
	v.SetDefault("db_acquire_timeout", "10s")

	// Ingestion defaults
	v.SetDefault("ingest_lock_timeout", "30s")
	v.SetDefault("ingest_max_entry_mb", 256)
	v.SetDefault("ingest_max_extracted_mb", 4096)

	// Maintenance defaults
	v.SetDefault("orphan_sweep_enabled", true)
	v.SetDefault("orphan_sweep_schedule", "30 4 * * *")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 5 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			MaxUploadMB:    v.GetInt64("MAX_UPLOAD_MB"),

			UploadMaxFailures:   v.GetInt("UPLOAD_MAX_FAILURES"),
			UploadFailureWindow: v.GetDuration("UPLOAD_FAILURE_WINDOW"),
			UploadLockout:       v.GetDuration("UPLOAD_LOCKOUT"),
		},
		Library: Library{
			Dir:          v.GetString("LIBRARY_DIR"),
			StagingDir:   v.GetString("STAGING_DIR"),
			PublicPrefix: v.GetString("PUBLIC_PREFIX"),
			ViewerPath:   v.GetString("VIEWER_PATH"),
		},
		Database: Database{
			Path:            v.GetString("DATABASE_PATH"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			BusyTimeout:     v.GetDuration("DB_BUSY_TIMEOUT"),
			AcquireTimeout:  v.GetDuration("DB_ACQUIRE_TIMEOUT"),
		},
		Ingest: Ingest{
			LockTimeout:    v.GetDuration("INGEST_LOCK_TIMEOUT"),
			MaxEntryMB:     v.GetInt64("INGEST_MAX_ENTRY_MB"),
			MaxExtractedMB: v.GetInt64("INGEST_MAX_EXTRACTED_MB"),
		},
		OrphanSweep: OrphanSweep{
			Enabled:  v.GetBool("ORPHAN_SWEEP_ENABLED"),
			Schedule: v.GetString("ORPHAN_SWEEP_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			Schedule:      v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}

// splitList parses a comma-separated environment value.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
