package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"papertrail/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Log     LogConfig
	CORS    CORSConfig
	Custody CustodyConfig
	Authz   AuthzConfig
	Email   EmailConfig
}

// EmailConfig holds custody notice delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CustodyConfig holds the custody service settings.
type CustodyConfig struct {
	// TxTimeout bounds every custody transaction whose context has no deadline.
	TxTimeout    time.Duration       `mapstructure:"tx_timeout"`
	RollbackMode domain.RollbackMode `mapstructure:"rollback_mode"`
	MaxPageSize  int                 `mapstructure:"max_page_size"`
}

// AuthzConfig points at the casbin model and policy files.
type AuthzConfig struct {
	ModelPath  string `mapstructure:"model_path"`
	PolicyPath string `mapstructure:"policy_path"`
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

// JWTConfig holds the settings used to verify bearer tokens minted by the
// identity service.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig holds logging settings. Level "debug" also puts gin in debug mode.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from environment variables with the PAPERTRAIL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAPERTRAIL")
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
	v.SetDefault("db.user", "papertrail")
	v.SetDefault("db.password", "papertrail_secret")
	v.SetDefault("db.name", "papertrail_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "papertrail")

	// Log defaults
	v.SetDefault("log.level", "debug")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Custody defaults
	v.SetDefault("custody.tx_timeout", "5s")
	v.SetDefault("custody.rollback_mode", string(domain.RollbackDelete))
	v.SetDefault("custody.max_page_size", 100)

	v.SetDefault("authz.model_path", "config/access/model.conf")
	v.SetDefault("authz.policy_path", "config/access/policy.csv")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@papertrail.local")
	v.SetDefault("email.from_name", "Papertrail")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "PAPERTRAIL_SERVER_PORT",
		"server.read_timeout":   "PAPERTRAIL_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "PAPERTRAIL_SERVER_WRITE_TIMEOUT",
		"server.environment":    "PAPERTRAIL_SERVER_ENVIRONMENT",
		"db.host":               "PAPERTRAIL_DB_HOST",
		"db.port":               "PAPERTRAIL_DB_PORT",
		"db.user":               "PAPERTRAIL_DB_USER",
		"db.password":           "PAPERTRAIL_DB_PASSWORD",
		"db.name":               "PAPERTRAIL_DB_NAME",
		"db.sslmode":            "PAPERTRAIL_DB_SSLMODE",
		"db.max_open":           "PAPERTRAIL_DB_MAX_OPEN",
		"db.max_idle":           "PAPERTRAIL_DB_MAX_IDLE",
		"jwt.secret":            "PAPERTRAIL_JWT_SECRET",
		"jwt.issuer":            "PAPERTRAIL_JWT_ISSUER",
		"log.level":             "PAPERTRAIL_LOG_LEVEL",
		"cors.allowed_origins":  "PAPERTRAIL_CORS_ALLOWED_ORIGINS",
		"custody.tx_timeout":    "PAPERTRAIL_CUSTODY_TX_TIMEOUT",
		"custody.rollback_mode": "PAPERTRAIL_CUSTODY_ROLLBACK_MODE",
		"custody.max_page_size": "PAPERTRAIL_CUSTODY_MAX_PAGE_SIZE",
		"authz.model_path":      "PAPERTRAIL_AUTHZ_MODEL_PATH",
		"authz.policy_path":     "PAPERTRAIL_AUTHZ_POLICY_PATH",
		"email.provider":        "PAPERTRAIL_EMAIL_PROVIDER",
		"email.region":          "PAPERTRAIL_EMAIL_REGION",
		"email.from_address":    "PAPERTRAIL_EMAIL_FROM_ADDRESS",
		"email.from_name":       "PAPERTRAIL_EMAIL_FROM_NAME",
		"email.frontend_url":    "PAPERTRAIL_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PAPERTRAIL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PAPERTRAIL_SERVER_PORT") == "" {
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
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
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

	cfg.Custody = CustodyConfig{
		TxTimeout:    v.GetDuration("custody.tx_timeout"),
		RollbackMode: domain.RollbackMode(strings.ToLower(strings.TrimSpace(v.GetString("custody.rollback_mode")))),
		MaxPageSize:  v.GetInt("custody.max_page_size"),
	}
	switch cfg.Custody.RollbackMode {
	case domain.RollbackDelete, domain.RollbackCompensate:
	default:
		return nil, fmt.Errorf("invalid custody.rollback_mode %q (expected delete|compensate)", cfg.Custody.RollbackMode)
	}
	if cfg.Custody.TxTimeout <= 0 {
		return nil, fmt.Errorf("custody.tx_timeout must be positive, got %s", cfg.Custody.TxTimeout)
	}
	if cfg.Custody.MaxPageSize <= 0 {
		cfg.Custody.MaxPageSize = 100
	}

	cfg.Authz = AuthzConfig{
		ModelPath:  v.GetString("authz.model_path"),
		PolicyPath: v.GetString("authz.policy_path"),
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
