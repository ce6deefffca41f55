package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Global
		Auth
		Resolver
		Cache
		Covers
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Global struct {
		ShutdownTimeoutInSeconds int

		// DemoMode blocks write operations for publicly hosted instances
		DemoMode bool
	}
	Auth struct {
		TokenSecret string
		TokenExpiry time.Duration
		BcryptCost  int

		// Rate limiting for login/register attempts
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
	Resolver struct {
		MetadataBaseURL  string
		GutenbergBaseURL string
		GutendexBaseURL  string
		ArchiveBaseURL   string

		MetadataTimeout time.Duration
		ContentTimeout  time.Duration
		RetryBackoff    time.Duration
	}
	Cache struct {
		MetadataTTL     time.Duration
		NegativeTTL     time.Duration
		ContentCapacity int
		SweepSchedule   string // Cron format: "*/10 * * * *" = every 10 minutes
	}
	Covers struct {
		Dir string
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
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("demo_mode", false)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_token_secret", "") // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "168h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Upstream resolver defaults
	v.SetDefault("metadata_base_url", "https://openlibrary.org")
	v.SetDefault("gutenberg_base_url", "https://www.gutenberg.org")
	v.SetDefault("gutendex_base_url", "https://gutendex.com")
	v.SetDefault("archive_base_url", "https://archive.org")
	v.SetDefault("metadata_timeout", "5s")
	v.SetDefault("content_timeout", "15s")
	v.SetDefault("retry_backoff", "500ms")

	// Resolution cache defaults
	v.SetDefault("cache_metadata_ttl", "24h")
	v.SetDefault("cache_negative_ttl", "5m")
	v.SetDefault("cache_content_capacity", 32)
	v.SetDefault("cache_sweep_schedule", "*/10 * * * *")

	// Cover cache defaults
	v.SetDefault("covers_dir", DefaultCoversDir)

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
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DemoMode:                 v.GetBool("DEMO_MODE"),
		},
		Auth: Auth{
			TokenSecret:      v.GetString("AUTH_TOKEN_SECRET"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Resolver: Resolver{
			MetadataBaseURL:  v.GetString("METADATA_BASE_URL"),
			GutenbergBaseURL: v.GetString("GUTENBERG_BASE_URL"),
			GutendexBaseURL:  v.GetString("GUTENDEX_BASE_URL"),
			ArchiveBaseURL:   v.GetString("ARCHIVE_BASE_URL"),
			MetadataTimeout:  v.GetDuration("METADATA_TIMEOUT"),
			ContentTimeout:   v.GetDuration("CONTENT_TIMEOUT"),
			RetryBackoff:     v.GetDuration("RETRY_BACKOFF"),
		},
		Cache: Cache{
			MetadataTTL:     v.GetDuration("CACHE_METADATA_TTL"),
			NegativeTTL:     v.GetDuration("CACHE_NEGATIVE_TTL"),
			ContentCapacity: v.GetInt("CACHE_CONTENT_CAPACITY"),
			SweepSchedule:   v.GetString("CACHE_SWEEP_SCHEDULE"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
