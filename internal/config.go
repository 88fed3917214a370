package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Mail          MailConfig          `mapstructure:"mail"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	FrontendURL       string        `mapstructure:"frontend_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	RefreshSecret        string        `mapstructure:"refresh_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	ResetTokenDuration   time.Duration `mapstructure:"reset_token_duration"`
	BCryptCost           int           `mapstructure:"bcrypt_cost"`
}

// StorageConfig points at an S3-compatible bucket (Cloudflare R2 in
// production). The backend only issues pre-signed URLs; file bytes go
// directly between the browser and the bucket.
type StorageConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccountID       string        `mapstructure:"account_id"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	UploadExpiry    time.Duration `mapstructure:"upload_expiry"`
	DownloadExpiry  time.Duration `mapstructure:"download_expiry"`
	UseSSL          bool          `mapstructure:"use_ssl"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- ENV FALLBACK -----------------

func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
			AllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			RefreshSecret:        getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			ResetTokenDuration:   time.Hour,
			BCryptCost:           getEnvAsInt("BCRYPT_COST", 10),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("R2_ENDPOINT", ""),
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET", ""),
			KeyPrefix:       getEnv("R2_KEY_PREFIX", "permisos"),
			UploadExpiry:    15 * time.Minute,
			DownloadExpiry:  time.Hour,
			UseSSL:          true,
		},
		Mail: MailConfig{
			Enabled:  getEnv("SMTP_HOST", "") != "",
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@permisos.local"),
			FromName: getEnv("MAIL_FROM_NAME", "Gestión de Permisos"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.RefreshSecret == "" {
		return errors.New("refresh_secret is required")
	}
	if c.BCryptCost != 0 && (c.BCryptCost < 10 || c.BCryptCost > 15) {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	// Storage may be left unconfigured in development; attachment endpoints
	// then refuse with an internal error rather than failing startup.
	if c.Endpoint == "" {
		return nil
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return errors.New("access credentials are required when endpoint is set")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required when endpoint is set")
	}
	return nil
}
