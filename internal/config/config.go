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
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Analyzer AnalyzerConfig
	Repair   RepairConfig
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

// S3Config holds AWS S3 settings for report storage.
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

// AnalyzerProviderConfig holds settings for a single LLM analyzer provider.
type AnalyzerProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AnalyzerConfig holds LLM report analyzer settings with provider fallback.
type AnalyzerConfig struct {
	Primary   AnalyzerProviderConfig `mapstructure:"primary"`
	Secondary AnalyzerProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary analyzer config, or nil if not configured.
func (a *AnalyzerConfig) SecondaryConfig() *AnalyzerProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// RepairConfig holds output repair pipeline settings.
type RepairConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// Load reads configuration from environment variables with the LABVISTA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LABVISTA")
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
	v.SetDefault("db.user", "labvista")
	v.SetDefault("db.password", "labvista_secret")
	v.SetDefault("db.name", "labvista_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "labvista-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Analyzer defaults: local Ollama first, Claude as fallback when keyed
	v.SetDefault("analyzer.primary.provider", "ollama")
	v.SetDefault("analyzer.primary.api_key", "")
	v.SetDefault("analyzer.primary.base_url", "http://localhost:11434")
	v.SetDefault("analyzer.primary.default_model", "deepseek-r1:8b")
	v.SetDefault("analyzer.primary.timeout_secs", 120)
	v.SetDefault("analyzer.secondary.provider", "")
	v.SetDefault("analyzer.secondary.api_key", "")
	v.SetDefault("analyzer.secondary.base_url", "")
	v.SetDefault("analyzer.secondary.default_model", "")
	v.SetDefault("analyzer.secondary.timeout_secs", 120)

	// Repair defaults
	v.SetDefault("repair.max_retries", 2)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "LABVISTA_SERVER_PORT",
		"server.read_timeout":              "LABVISTA_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "LABVISTA_SERVER_WRITE_TIMEOUT",
		"server.environment":               "LABVISTA_SERVER_ENVIRONMENT",
		"db.host":                          "LABVISTA_DB_HOST",
		"db.port":                          "LABVISTA_DB_PORT",
		"db.user":                          "LABVISTA_DB_USER",
		"db.password":                      "LABVISTA_DB_PASSWORD",
		"db.name":                          "LABVISTA_DB_NAME",
		"db.sslmode":                       "LABVISTA_DB_SSLMODE",
		"db.max_open":                      "LABVISTA_DB_MAX_OPEN",
		"db.max_idle":                      "LABVISTA_DB_MAX_IDLE",
		"s3.region":                        "LABVISTA_S3_REGION",
		"s3.bucket":                        "LABVISTA_S3_BUCKET",
		"s3.endpoint":                      "LABVISTA_S3_ENDPOINT",
		"s3.access_key":                    "LABVISTA_S3_ACCESS_KEY",
		"s3.secret_key":                    "LABVISTA_S3_SECRET_KEY",
		"s3.max_file_size_mb":              "LABVISTA_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                "LABVISTA_S3_PRESIGN_EXPIRY",
		"log.level":                        "LABVISTA_LOG_LEVEL",
		"log.format":                       "LABVISTA_LOG_FORMAT",
		"cors.allowed_origins":             "LABVISTA_CORS_ALLOWED_ORIGINS",
		"analyzer.primary.provider":        "LABVISTA_ANALYZER_PRIMARY_PROVIDER",
		"analyzer.primary.api_key":         "LABVISTA_ANALYZER_PRIMARY_API_KEY",
		"analyzer.primary.base_url":        "LABVISTA_ANALYZER_PRIMARY_BASE_URL",
		"analyzer.primary.default_model":   "LABVISTA_ANALYZER_PRIMARY_DEFAULT_MODEL",
		"analyzer.primary.timeout_secs":    "LABVISTA_ANALYZER_PRIMARY_TIMEOUT_SECS",
		"analyzer.secondary.provider":      "LABVISTA_ANALYZER_SECONDARY_PROVIDER",
		"analyzer.secondary.api_key":       "LABVISTA_ANALYZER_SECONDARY_API_KEY",
		"analyzer.secondary.base_url":      "LABVISTA_ANALYZER_SECONDARY_BASE_URL",
		"analyzer.secondary.default_model": "LABVISTA_ANALYZER_SECONDARY_DEFAULT_MODEL",
		"analyzer.secondary.timeout_secs":  "LABVISTA_ANALYZER_SECONDARY_TIMEOUT_SECS",
		"repair.max_retries":               "LABVISTA_REPAIR_MAX_RETRIES",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LABVISTA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LABVISTA_SERVER_PORT") == "" {
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

	cfg.Analyzer = AnalyzerConfig{
		Primary: AnalyzerProviderConfig{
			Provider:     v.GetString("analyzer.primary.provider"),
			APIKey:       v.GetString("analyzer.primary.api_key"),
			BaseURL:      v.GetString("analyzer.primary.base_url"),
			DefaultModel: v.GetString("analyzer.primary.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.primary.timeout_secs"),
		},
		Secondary: AnalyzerProviderConfig{
			Provider:     v.GetString("analyzer.secondary.provider"),
			APIKey:       v.GetString("analyzer.secondary.api_key"),
			BaseURL:      v.GetString("analyzer.secondary.base_url"),
			DefaultModel: v.GetString("analyzer.secondary.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.secondary.timeout_secs"),
		},
	}

	cfg.Repair = RepairConfig{
		MaxRetries: v.GetInt("repair.max_retries"),
	}

	return cfg, nil
}
