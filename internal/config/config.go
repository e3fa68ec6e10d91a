package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Security    SecurityConfig    `yaml:"security"`
	Session     SessionConfig     `yaml:"session"`
	CSRF        CSRFConfig        `yaml:"csrf"`
	DefaultUser DefaultUserConfig `yaml:"default_user"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Type   string       `yaml:"type"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

type SecurityConfig struct {
	BcryptCost int            `yaml:"bcrypt_cost"`
	Password   PasswordPolicy `yaml:"password"`
	Lockout    LockoutConfig  `yaml:"lockout"`
}

type PasswordPolicy struct {
	MinLength      int  `yaml:"min_length"`
	RequireUpper   bool `yaml:"require_upper"`
	RequireLower   bool `yaml:"require_lower"`
	RequireDigit   bool `yaml:"require_digit"`
	RequireSpecial bool `yaml:"require_special"`
}

type LockoutConfig struct {
	Threshold int    `yaml:"threshold"`
	Window    string `yaml:"window"`
	Duration  string `yaml:"duration"`
}

type SessionConfig struct {
	Timeout  string `yaml:"timeout"`
	Sliding  bool   `yaml:"sliding"`
	ResetTTL string `yaml:"reset_ttl"`
}

type CSRFConfig struct {
	Secret string `yaml:"secret"`
	TTL    string `yaml:"ttl"`
	Issuer string `yaml:"issuer"`
}

type DefaultUserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
}

// WindowDuration returns the sliding window for counting failed logins.
func (l LockoutConfig) WindowDuration() time.Duration {
	return parseDuration(l.Window, 15*time.Minute)
}

// LockDuration returns how long an identifier stays locked out.
func (l LockoutConfig) LockDuration() time.Duration {
	return parseDuration(l.Duration, 30*time.Minute)
}

// TimeoutDuration returns the session inactivity/lifetime timeout.
func (s SessionConfig) TimeoutDuration() time.Duration {
	return parseDuration(s.Timeout, time.Hour)
}

// ResetTTLDuration returns how long a password reset token stays valid.
func (s SessionConfig) ResetTTLDuration() time.Duration {
	return parseDuration(s.ResetTTL, time.Hour)
}

// TTLDuration returns the CSRF token lifetime.
func (c CSRFConfig) TTLDuration() time.Duration {
	return parseDuration(c.TTL, time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

var Global *Config

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	if csrfSecret := os.Getenv("TASKVILLE_CSRF_SECRET"); csrfSecret != "" {
		cfg.CSRF.Secret = csrfSecret
	}

	if dbType := os.Getenv("TASKVILLE_DB_TYPE"); dbType != "" {
		cfg.Database.Type = dbType
	}

	if dbPath := os.Getenv("TASKVILLE_DB_PATH"); dbPath != "" {
		cfg.Database.SQLite.Path = dbPath
	}

	if mysqlHost := os.Getenv("TASKVILLE_MYSQL_HOST"); mysqlHost != "" {
		cfg.Database.MySQL.Host = mysqlHost
	}

	if mysqlUser := os.Getenv("TASKVILLE_MYSQL_USER"); mysqlUser != "" {
		cfg.Database.MySQL.Username = mysqlUser
	}

	if mysqlPass := os.Getenv("TASKVILLE_MYSQL_PASSWORD"); mysqlPass != "" {
		cfg.Database.MySQL.Password = mysqlPass
	}

	if mysqlDB := os.Getenv("TASKVILLE_MYSQL_DATABASE"); mysqlDB != "" {
		cfg.Database.MySQL.Database = mysqlDB
	}

	if adminPass := os.Getenv("TASKVILLE_ADMIN_PASSWORD"); adminPass != "" {
		cfg.DefaultUser.Password = adminPass
	}

	cfg.applyDefaults()

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		dataDir := filepath.Dir(cfg.Database.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Validate MySQL configuration if MySQL is selected
	if cfg.Database.Type == "mysql" {
		if cfg.Database.MySQL.Username == "" {
			return nil, fmt.Errorf("MySQL username is required")
		}
		if cfg.Database.MySQL.Database == "" {
			return nil, fmt.Errorf("MySQL database name is required")
		}
	}

	Global = &cfg
	return &cfg, nil
}

// applyDefaults fills zero-valued policy knobs so a sparse config file
// still yields a working security posture.
func (c *Config) applyDefaults() {
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 12
	}
	if c.Security.Password.MinLength == 0 {
		c.Security.Password.MinLength = 8
	}
	if c.Security.Lockout.Threshold == 0 {
		c.Security.Lockout.Threshold = 5
	}
	if c.CSRF.Issuer == "" {
		c.CSRF.Issuer = "taskville"
	}
}
