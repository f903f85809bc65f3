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
	Server     ServerConfig
	DB         DBConfig
	Auth       AuthConfig
	Storage    StorageConfig
	S3         S3Config
	Log        LogConfig
	Parser     ParserConfig
	CORS       CORSConfig
	Comparison ComparisonConfig
	Retention  RetentionConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds document extraction settings. Secondary is optional.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds database connection settings. Driver is "postgres" or "sqlite".
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", d.Path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds bearer-token verification settings for the API.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
}

// StorageConfig selects the object store. Provider is "s3" or "local".
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	LocalRoot     string `mapstructure:"local_root"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ComparisonConfig holds field table and risk band settings.
type ComparisonConfig struct {
	FieldsFile string  `mapstructure:"fields_file"`
	RiskMedium float64 `mapstructure:"risk_medium"`
	RiskHigh   float64 `mapstructure:"risk_high"`
}

// RetentionConfig holds the session cleanup schedule.
type RetentionConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Schedule  string        `mapstructure:"schedule"`
	MaxAge    time.Duration `mapstructure:"max_age"`
	BatchSize int           `mapstructure:"batch_size"`
}

// Load reads configuration from environment variables with the TRADELENS_ prefix,
// and from the YAML file named by TRADELENS_CONFIG_FILE when set.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := os.Getenv("TRADELENS_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tradelens")
	v.SetDefault("db.password", "tradelens_secret")
	v.SetDefault("db.name", "tradelens_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "tradelens.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "tradelens")

	// Storage defaults
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_root", "file:///tmp/tradelens")
	v.SetDefault("storage.max_file_size_mb", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "tradelens-documents")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("log.level", "info")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parser defaults
	v.SetDefault("parser.primary.provider", "claude")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("parser.primary.max_retries", 2)
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.max_retries", 2)
	v.SetDefault("parser.secondary.timeout_secs", 120)

	// Comparison defaults
	v.SetDefault("comparison.fields_file", "")
	v.SetDefault("comparison.risk_medium", 0.15)
	v.SetDefault("comparison.risk_high", 0.40)

	// Retention defaults
	v.SetDefault("retention.enabled", true)
	v.SetDefault("retention.schedule", "@every 1h")
	v.SetDefault("retention.max_age", "72h")
	v.SetDefault("retention.batch_size", 100)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "TRADELENS_SERVER_PORT",
		"server.read_timeout":            "TRADELENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "TRADELENS_SERVER_WRITE_TIMEOUT",
		"server.environment":             "TRADELENS_SERVER_ENVIRONMENT",
		"db.driver":                      "TRADELENS_DB_DRIVER",
		"db.host":                        "TRADELENS_DB_HOST",
		"db.port":                        "TRADELENS_DB_PORT",
		"db.user":                        "TRADELENS_DB_USER",
		"db.password":                    "TRADELENS_DB_PASSWORD",
		"db.name":                        "TRADELENS_DB_NAME",
		"db.sslmode":                     "TRADELENS_DB_SSLMODE",
		"db.path":                        "TRADELENS_DB_PATH",
		"db.max_open":                    "TRADELENS_DB_MAX_OPEN",
		"db.max_idle":                    "TRADELENS_DB_MAX_IDLE",
		"auth.enabled":                   "TRADELENS_AUTH_ENABLED",
		"auth.secret":                    "TRADELENS_AUTH_SECRET",
		"auth.issuer":                    "TRADELENS_AUTH_ISSUER",
		"storage.provider":               "TRADELENS_STORAGE_PROVIDER",
		"storage.local_root":             "TRADELENS_STORAGE_LOCAL_ROOT",
		"storage.max_file_size_mb":       "TRADELENS_STORAGE_MAX_FILE_SIZE_MB",
		"s3.region":                      "TRADELENS_S3_REGION",
		"s3.bucket":                      "TRADELENS_S3_BUCKET",
		"s3.endpoint":                    "TRADELENS_S3_ENDPOINT",
		"s3.access_key":                  "TRADELENS_S3_ACCESS_KEY",
		"s3.secret_key":                  "TRADELENS_S3_SECRET_KEY",
		"log.level":                      "TRADELENS_LOG_LEVEL",
		"cors.allowed_origins":           "TRADELENS_CORS_ALLOWED_ORIGINS",
		"parser.primary.provider":        "TRADELENS_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "TRADELENS_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "TRADELENS_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "TRADELENS_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "TRADELENS_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "TRADELENS_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "TRADELENS_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "TRADELENS_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "TRADELENS_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "TRADELENS_PARSER_SECONDARY_TIMEOUT_SECS",
		"comparison.fields_file":         "TRADELENS_COMPARISON_FIELDS_FILE",
		"comparison.risk_medium":         "TRADELENS_COMPARISON_RISK_MEDIUM",
		"comparison.risk_high":           "TRADELENS_COMPARISON_RISK_HIGH",
		"retention.enabled":              "TRADELENS_RETENTION_ENABLED",
		"retention.schedule":             "TRADELENS_RETENTION_SCHEDULE",
		"retention.max_age":              "TRADELENS_RETENTION_MAX_AGE",
		"retention.batch_size":           "TRADELENS_RETENTION_BATCH_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it if TRADELENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TRADELENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:   v.GetString("db.driver"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		Path:     v.GetString("db.path"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		Enabled: v.GetBool("auth.enabled"),
		Secret:  v.GetString("auth.secret"),
		Issuer:  v.GetString("auth.issuer"),
	}
	cfg.Storage = StorageConfig{
		Provider:      v.GetString("storage.provider"),
		LocalRoot:     v.GetString("storage.local_root"),
		MaxFileSizeMB: v.GetInt64("storage.max_file_size_mb"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
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

	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			MaxRetries:   v.GetInt("parser.primary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			MaxRetries:   v.GetInt("parser.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
	}

	cfg.Comparison = ComparisonConfig{
		FieldsFile: v.GetString("comparison.fields_file"),
		RiskMedium: v.GetFloat64("comparison.risk_medium"),
		RiskHigh:   v.GetFloat64("comparison.risk_high"),
	}

	cfg.Retention = RetentionConfig{
		Enabled:   v.GetBool("retention.enabled"),
		Schedule:  v.GetString("retention.schedule"),
		MaxAge:    v.GetDuration("retention.max_age"),
		BatchSize: v.GetInt("retention.batch_size"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	switch c.Storage.Provider {
	case "s3", "local":
	default:
		return fmt.Errorf("config: unsupported storage.provider %q", c.Storage.Provider)
	}
	if c.Storage.MaxFileSizeMB <= 0 {
		return fmt.Errorf("config: storage.max_file_size_mb must be positive")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("config: auth.secret is required when auth is enabled")
	}
	if c.Retention.Enabled && c.Retention.MaxAge <= 0 {
		return fmt.Errorf("config: retention.max_age must be positive")
	}
	return nil
}
