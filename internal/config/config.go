package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Catalog
		Covers
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		BcryptCost int
	}
	Catalog struct {
		BaseURL string
		Timeout time.Duration
	}
	Covers struct {
		CacheDir        string
		Retention       time.Duration // Cached files older than this are pruned
		CleanupSchedule string        // Cron format: "0 3 * * *" = daily at 03:00
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
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12) // bcrypt cost factor

	// Catalog defaults
	v.SetDefault("catalog_base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("catalog_timeout", "10s")

	// Cover cache defaults
	v.SetDefault("covers_cache_dir", "./covers")
	v.SetDefault("covers_retention", "720h") // 30 days
	v.SetDefault("covers_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Catalog: Catalog{
			BaseURL: v.GetString("CATALOG_BASE_URL"),
			Timeout: v.GetDuration("CATALOG_TIMEOUT"),
		},
		Covers: Covers{
			CacheDir:        v.GetString("COVERS_CACHE_DIR"),
			Retention:       v.GetDuration("COVERS_RETENTION"),
			CleanupSchedule: v.GetString("COVERS_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
