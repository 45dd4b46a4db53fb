package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Queue  QueueConfig
	Recon  ReconConfig
	Email  EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds processing queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// ReconConfig holds reconciliation engine policy settings. These are the
// only tunable policy constants; everything upstream of the recommendation
// selector is threshold-free.
type ReconConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	TieMargin           float64 `mapstructure:"tie_margin"`
	AmountTolerance     float64 `mapstructure:"amount_tolerance"`
	MaxCandidates       int     `mapstructure:"max_candidates"`
	HistoryTimeoutSecs  int     `mapstructure:"history_timeout_secs"`
}

// EmailConfig holds review notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Load reads configuration from environment variables with the EXPENSO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXPENSO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "expenso")
	v.SetDefault("db.password", "expenso_secret")
	v.SetDefault("db.name", "expenso_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "expenso")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "expenso-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 4)

	// Recon defaults
	v.SetDefault("recon.confidence_threshold", 0.80)
	v.SetDefault("recon.tie_margin", 0.05)
	v.SetDefault("recon.amount_tolerance", 0.01)
	v.SetDefault("recon.max_candidates", 5)
	v.SetDefault("recon.history_timeout_secs", 3)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@expenso.app")
	v.SetDefault("email.from_name", "Expenso")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "EXPENSO_SERVER_PORT",
		"server.read_timeout":        "EXPENSO_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "EXPENSO_SERVER_WRITE_TIMEOUT",
		"server.environment":         "EXPENSO_SERVER_ENVIRONMENT",
		"db.host":                    "EXPENSO_DB_HOST",
		"db.port":                    "EXPENSO_DB_PORT",
		"db.user":                    "EXPENSO_DB_USER",
		"db.password":                "EXPENSO_DB_PASSWORD",
		"db.name":                    "EXPENSO_DB_NAME",
		"db.sslmode":                 "EXPENSO_DB_SSLMODE",
		"db.max_open":                "EXPENSO_DB_MAX_OPEN",
		"db.max_idle":                "EXPENSO_DB_MAX_IDLE",
		"jwt.secret":                 "EXPENSO_JWT_SECRET",
		"jwt.access_expiry":          "EXPENSO_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "EXPENSO_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                 "EXPENSO_JWT_ISSUER",
		"s3.region":                  "EXPENSO_S3_REGION",
		"s3.bucket":                  "EXPENSO_S3_BUCKET",
		"s3.endpoint":                "EXPENSO_S3_ENDPOINT",
		"s3.access_key":              "EXPENSO_S3_ACCESS_KEY",
		"s3.secret_key":              "EXPENSO_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "EXPENSO_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":          "EXPENSO_S3_PRESIGN_EXPIRY",
		"log.level":                  "EXPENSO_LOG_LEVEL",
		"log.format":                 "EXPENSO_LOG_FORMAT",
		"cors.allowed_origins":       "EXPENSO_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":   "EXPENSO_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":          "EXPENSO_QUEUE_CONCURRENCY",
		"recon.confidence_threshold": "EXPENSO_RECON_CONFIDENCE_THRESHOLD",
		"recon.tie_margin":           "EXPENSO_RECON_TIE_MARGIN",
		"recon.amount_tolerance":     "EXPENSO_RECON_AMOUNT_TOLERANCE",
		"recon.max_candidates":       "EXPENSO_RECON_MAX_CANDIDATES",
		"recon.history_timeout_secs": "EXPENSO_RECON_HISTORY_TIMEOUT_SECS",
		"email.provider":             "EXPENSO_EMAIL_PROVIDER",
		"email.region":               "EXPENSO_EMAIL_REGION",
		"email.from_address":         "EXPENSO_EMAIL_FROM_ADDRESS",
		"email.from_name":            "EXPENSO_EMAIL_FROM_NAME",
		"email.frontend_url":         "EXPENSO_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if EXPENSO_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("EXPENSO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Recon = ReconConfig{
		ConfidenceThreshold: v.GetFloat64("recon.confidence_threshold"),
		TieMargin:           v.GetFloat64("recon.tie_margin"),
		AmountTolerance:     v.GetFloat64("recon.amount_tolerance"),
		MaxCandidates:       v.GetInt("recon.max_candidates"),
		HistoryTimeoutSecs:  v.GetInt("recon.history_timeout_secs"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
