package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	Admin      AdminConfig
	Session    SessionConfig
	CORS       CORSConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig is optional; an empty Host disables session revocation.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix string
}

// AdminConfig holds the static console credentials.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
	// PublicConfigRead exposes GET /admin/config without a session.
	PublicConfigRead bool
}

// SessionConfig tunes the signed admin session cookie.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// CORSConfig lists the dashboard origins allowed to send the session cookie.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// BatchRule names an attendance shift and the time of day after which a sign-in is late.
type BatchRule struct {
	Name      string
	LateAfter string
}

// AttendanceConfig governs the metrics engine.
type AttendanceConfig struct {
	Batches           []BatchRule
	OvertimeAfter     string
	QueryTimeout      time.Duration
	SyntheticFallback bool
}

// Load reads .env when present, then the environment, on top of the defaults.
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		PoolSize:  v.GetInt("REDIS_POOL_SIZE"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.Admin = AdminConfig{
		Username:         v.GetString("ADMIN_USERNAME"),
		Password:         v.GetString("ADMIN_PASSWORD"),
		PasswordHash:     v.GetString("ADMIN_PASSWORD_HASH"),
		PublicConfigRead: v.GetBool("ADMIN_PUBLIC_CONFIG_READ"),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		Secure:     cfg.Env == EnvProduction,
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		AllowedMethods: splitAndTrim(v.GetString("CORS_ALLOWED_METHODS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	batches, err := ParseBatchRules(v.GetString("ATTENDANCE_BATCHES"))
	if err != nil {
		return nil, err
	}
	cfg.Attendance = AttendanceConfig{
		Batches:           batches,
		OvertimeAfter:     v.GetString("ATTENDANCE_OVERTIME_AFTER"),
		QueryTimeout:      parseDuration(v.GetString("ATTENDANCE_QUERY_TIMEOUT"), 10*time.Second),
		SyntheticFallback: v.GetBool("ATTENDANCE_SYNTHETIC_FALLBACK"),
	}

	if cfg.Env == EnvProduction && cfg.Session.Secret == "dev_session_secret" {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_KEY_PREFIX", "dashboard")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_PUBLIC_CONFIG_READ", false)

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "admin_session")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("ATTENDANCE_BATCHES", "0815@08:15:00,0850@08:50:00")
	v.SetDefault("ATTENDANCE_OVERTIME_AFTER", "18:00:00")
	v.SetDefault("ATTENDANCE_QUERY_TIMEOUT", "10s")
	v.SetDefault("ATTENDANCE_SYNTHETIC_FALLBACK", true)
}

// ParseBatchRules reads a comma separated list of name@HH:MM:SS pairs.
func ParseBatchRules(raw string) ([]BatchRule, error) {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil, errors.New("ATTENDANCE_BATCHES requires at least one batch")
	}
	rules := make([]BatchRule, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name, lateAfter, ok := strings.Cut(part, "@")
		name = strings.TrimSpace(name)
		lateAfter = strings.TrimSpace(lateAfter)
		if !ok || name == "" || lateAfter == "" {
			return nil, fmt.Errorf("invalid batch rule %q, expected name@HH:MM:SS", part)
		}
		if _, err := time.Parse("15:04:05", lateAfter); err != nil {
			return nil, fmt.Errorf("invalid late threshold for batch %s: %w", name, err)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate batch %s", name)
		}
		seen[name] = struct{}{}
		rules = append(rules, BatchRule{Name: name, LateAfter: lateAfter})
	}
	return rules, nil
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
