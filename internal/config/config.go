package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	AWS       AWSConfig       `yaml:"aws"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Push      PushConfig      `yaml:"push"`
	Images    ImagesConfig    `yaml:"images"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

// DatabaseConfig holds database configuration.
// URL takes precedence over the discrete fields when set.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Migrate  bool   `yaml:"migrate"`
}

// AWSConfig holds S3 configuration
type AWSConfig struct {
	Region        string `yaml:"region"`
	S3Bucket      string `yaml:"s3_bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Endpoint      string `yaml:"endpoint"`        // S3-compatible endpoint, optional
	PublicBaseURL string `yaml:"public_base_url"` // overrides the bucket URL in returned links
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// CORSConfig holds allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig limits anonymous SOS submissions per client IP
type RateLimitConfig struct {
	SOSRate string `yaml:"sos_rate"` // limiter format, e.g. "10-M"
}

// PushConfig holds APNs settings. Push is disabled when CertPath is empty.
type PushConfig struct {
	CertPath     string `yaml:"cert_path"`
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// ImagesConfig holds the local directory used by update endpoints
type ImagesConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides (a .env file is loaded first when present). A missing YAML
// file is not an error: the environment and defaults are enough to boot.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.JWT.Secret = getEnv("SECRET_KEY", c.JWT.Secret)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.AWS.S3Bucket = getEnv("AWS_BUCKET", c.AWS.S3Bucket)
	c.AWS.AccessKey = getEnv("AWS_ACCESS_KEY_ID", c.AWS.AccessKey)
	c.AWS.SecretKey = getEnv("AWS_SECRET_ACCESS_KEY", c.AWS.SecretKey)
	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if port, err := strconv.Atoi(getEnv("APP_PORT", "")); err == nil {
		c.Server.Port = port
	}
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = "Alert"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 24 * time.Hour
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.RateLimit.SOSRate == "" {
		c.RateLimit.SOSRate = "10-M"
	}
	if c.Images.Dir == "" {
		c.Images.Dir = "images"
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
