package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DBEnvSupabase switches the pool to the hosted connection string.
	DBEnvSupabase = "supabase"
	DBEnvLocal    = "local"
)

type Config struct {
	Env             string
	Port            int
	ShutdownTimeout time.Duration

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Uploads       UploadsConfig
	Sweeper       SweeperConfig
	Notifications NotificationsConfig
	Realtime      RealtimeConfig
	Workflow      WorkflowConfig
	Dashboard     DashboardConfig
	Exports       ExportsConfig
}

type DatabaseConfig struct {
	Env          string
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls where citizen media and proof files land.
type UploadsConfig struct {
	Dir          string
	MaxFileBytes int64
}

// SweeperConfig drives the pickup expiry job.
type SweeperConfig struct {
	Interval     time.Duration
	QueryTimeout time.Duration
	PickupWindow time.Duration
}

// NotificationsConfig governs persisted notification delivery and retention.
type NotificationsConfig struct {
	Retention     time.Duration
	PurgeInterval time.Duration
	Workers       int
	Retries       int
}

// RealtimeConfig tunes the socket hub and the optional cross-instance relay.
type RealtimeConfig struct {
	RedisRelay bool
	Channel    string
	SendBuffer int
}

// WorkflowConfig toggles server-side workflow gates.
type WorkflowConfig struct {
	RequireProof bool
}

// DashboardConfig governs dashboard cache tuning.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// ExportsConfig controls report export storage & signing.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		Env:          strings.ToLower(v.GetString("DB_ENV")),
		URL:          v.GetString("SUPABASE_DB_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		Dir:          v.GetString("UPLOADS_DIR"),
		MaxFileBytes: maxUpload,
	}

	cfg.Sweeper = SweeperConfig{
		Interval:     parseDuration(v.GetString("SWEEPER_INTERVAL"), 10*time.Second),
		QueryTimeout: parseDuration(v.GetString("SWEEPER_QUERY_TIMEOUT"), 5*time.Second),
		PickupWindow: parseDuration(v.GetString("PICKUP_WINDOW"), 72*time.Hour),
	}

	cfg.Notifications = NotificationsConfig{
		Retention:     parseDuration(v.GetString("NOTIFICATION_RETENTION"), 30*24*time.Hour),
		PurgeInterval: parseDuration(v.GetString("NOTIFICATION_PURGE_INTERVAL"), time.Hour),
		Workers:       v.GetInt("NOTIFICATION_WORKERS"),
		Retries:       v.GetInt("NOTIFICATION_RETRIES"),
	}

	cfg.Realtime = RealtimeConfig{
		RedisRelay: v.GetBool("REALTIME_REDIS_RELAY"),
		Channel:    v.GetString("REALTIME_CHANNEL"),
		SendBuffer: v.GetInt("REALTIME_SEND_BUFFER"),
	}

	cfg.Workflow = WorkflowConfig{RequireProof: v.GetBool("WORKFLOW_REQUIRE_PROOF")}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_ENV", DBEnvLocal)
	v.SetDefault("SUPABASE_DB_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "civic_reports")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)

	v.SetDefault("SWEEPER_INTERVAL", "10s")
	v.SetDefault("SWEEPER_QUERY_TIMEOUT", "5s")
	v.SetDefault("PICKUP_WINDOW", "72h")

	v.SetDefault("NOTIFICATION_RETENTION", "720h")
	v.SetDefault("NOTIFICATION_PURGE_INTERVAL", "1h")
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_RETRIES", 3)

	v.SetDefault("REALTIME_REDIS_RELAY", false)
	v.SetDefault("REALTIME_CHANNEL", "civic:realtime")
	v.SetDefault("REALTIME_SEND_BUFFER", 64)

	v.SetDefault("WORKFLOW_REQUIRE_PROOF", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "1m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
