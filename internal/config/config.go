// v0
// internal/config/config.go
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Database drivers understood by storage.Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config captures all runtime settings of the API server. It is built
// once at startup and handed to each component's constructor.
type Config struct {
	// ListenAddress defines the TCP address used by the HTTP server.
	ListenAddress string
	// LogFilePath is the absolute or relative path to the log file.
	LogFilePath string
	// HTTPReadTimeout bounds the time to read incoming requests.
	HTTPReadTimeout time.Duration
	// HTTPWriteTimeout bounds the time to write responses.
	HTTPWriteTimeout time.Duration
	// ShutdownTimeout limits graceful shutdown attempts.
	ShutdownTimeout time.Duration
	// PropertiesPath records the path used to load property values.
	PropertiesPath string
	// JWTSecret signs and verifies session tokens.
	JWTSecret string
	// TokenTTL is the lifetime of issued session tokens.
	TokenTTL time.Duration
	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string
	// Database holds the store connection settings.
	Database Database
}

// Database describes how to reach the telemetry store.
type Database struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const (
	defaultListenAddress = ":3000"
	defaultLogFile       = "logs/noc-api.log"
	defaultReadTimeout   = 5 * time.Second
	defaultWriteTimeout  = 10 * time.Second
	defaultShutdown      = 10 * time.Second
	defaultPropsPath     = "noc-api.properties"
	defaultTokenTTL      = 24 * time.Hour
	defaultDBHost        = "127.0.0.1"
	defaultDBPort        = 3306
	defaultDBUser        = "root"
	defaultDBName        = "suhu"
	defaultDBPath        = "noc.db"
	defaultMaxOpenConns  = 10
	defaultMaxIdleConns  = 5
	defaultConnLifetime  = 5 * time.Minute
)

// Load resolves configuration by layering defaults, an optional
// properties file, and finally environment variables. The properties
// file location can be overridden with NOC_PROPERTIES_PATH.
func Load() (Config, error) {
	cfg := Config{
		ListenAddress:      defaultListenAddress,
		LogFilePath:        filepath.Clean(defaultLogFile),
		HTTPReadTimeout:    defaultReadTimeout,
		HTTPWriteTimeout:   defaultWriteTimeout,
		ShutdownTimeout:    defaultShutdown,
		TokenTTL:           defaultTokenTTL,
		CORSAllowedOrigins: []string{"*"},
		Database: Database{
			Driver:          DriverMySQL,
			Host:            defaultDBHost,
			Port:            defaultDBPort,
			User:            defaultDBUser,
			Name:            defaultDBName,
			Path:            defaultDBPath,
			MaxOpenConns:    defaultMaxOpenConns,
			MaxIdleConns:    defaultMaxIdleConns,
			ConnMaxLifetime: defaultConnLifetime,
		},
	}

	propsPath := strings.TrimSpace(os.Getenv("NOC_PROPERTIES_PATH"))
	if propsPath == "" {
		propsPath = defaultPropsPath
	}
	cfg.PropertiesPath = propsPath

	if err := applyProperties(&cfg, propsPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("mysql requires DB_HOST and DB_NAME")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("sqlite requires DB_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

func applyProperties(cfg *Config, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, ";") {
			continue
		}
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid properties entry on line %d", line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := setProperty(cfg, key, value); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read properties: %w", err)
	}
	return nil
}

func setProperty(cfg *Config, key, value string) error {
	switch key {
	case "listen_address":
		if value == "" {
			return errors.New("listen_address cannot be empty")
		}
		cfg.ListenAddress = value
	case "log_path":
		if value == "" {
			return errors.New("log_path cannot be empty")
		}
		cfg.LogFilePath = filepath.Clean(value)
	case "http_read_timeout_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.HTTPReadTimeout = d
	case "http_write_timeout_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.HTTPWriteTimeout = d
	case "shutdown_timeout_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.ShutdownTimeout = d
	case "token_ttl_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.TokenTTL = d
	case "cors_allowed_origins":
		origins := splitAndTrim(value)
		if len(origins) == 0 {
			return errors.New("cors_allowed_origins cannot be empty")
		}
		cfg.CORSAllowedOrigins = origins
	case "db_driver":
		cfg.Database.Driver = strings.ToLower(value)
	case "db_host":
		cfg.Database.Host = value
	case "db_port":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.Database.Port = n
	case "db_user":
		cfg.Database.User = value
	case "db_name":
		cfg.Database.Name = value
	case "db_path":
		cfg.Database.Path = value
	case "db_max_open_conns":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.Database.MaxOpenConns = n
	case "db_max_idle_conns":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.Database.MaxIdleConns = n
	case "db_conn_max_lifetime_ms":
		d, err := parsePositiveMillis(value)
		if err != nil {
			return err
		}
		cfg.Database.ConnMaxLifetime = d
	default:
		// Secrets (db password, signing key) are accepted from the
		// environment only.
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnvTrimmed("PORT"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.ListenAddress = ":" + strconv.Itoa(n)
	}
	if v, ok := lookupEnvTrimmed("NOC_LISTEN_ADDRESS"); ok {
		if v == "" {
			return errors.New("NOC_LISTEN_ADDRESS cannot be empty")
		}
		cfg.ListenAddress = v
	}
	if v, ok := lookupEnvTrimmed("NOC_LOG_PATH"); ok {
		if v == "" {
			return errors.New("NOC_LOG_PATH cannot be empty")
		}
		cfg.LogFilePath = filepath.Clean(v)
	}
	if v, ok := lookupEnvTrimmed("NOC_HTTP_READ_TIMEOUT_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("NOC_HTTP_READ_TIMEOUT_MS: %w", err)
		}
		cfg.HTTPReadTimeout = d
	}
	if v, ok := lookupEnvTrimmed("NOC_HTTP_WRITE_TIMEOUT_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("NOC_HTTP_WRITE_TIMEOUT_MS: %w", err)
		}
		cfg.HTTPWriteTimeout = d
	}
	if v, ok := lookupEnvTrimmed("NOC_SHUTDOWN_TIMEOUT_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("NOC_SHUTDOWN_TIMEOUT_MS: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWTSecret = v
	}
	if v, ok := lookupEnvTrimmed("TOKEN_TTL_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL_MS: %w", err)
		}
		cfg.TokenTTL = d
	}
	if v, ok := lookupEnvTrimmed("CORS_ALLOWED_ORIGINS"); ok {
		origins := splitAndTrim(v)
		if len(origins) == 0 {
			return errors.New("CORS_ALLOWED_ORIGINS cannot be empty")
		}
		cfg.CORSAllowedOrigins = origins
	}
	if v, ok := lookupEnvTrimmed("DB_DRIVER"); ok {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v, ok := lookupEnvTrimmed("DB_HOST"); ok {
		cfg.Database.Host = v
	}
	if v, ok := lookupEnvTrimmed("DB_PORT"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		cfg.Database.Port = n
	}
	if v, ok := lookupEnvTrimmed("DB_USER"); ok {
		cfg.Database.User = v
	}
	if v, ok := os.LookupEnv("DB_PASSWORD"); ok {
		cfg.Database.Password = v
	}
	if v, ok := lookupEnvTrimmed("DB_NAME"); ok {
		cfg.Database.Name = v
	}
	if v, ok := lookupEnvTrimmed("DB_PATH"); ok {
		cfg.Database.Path = v
	}
	if v, ok := lookupEnvTrimmed("DB_MAX_OPEN_CONNS"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
		}
		cfg.Database.MaxOpenConns = n
	}
	if v, ok := lookupEnvTrimmed("DB_MAX_IDLE_CONNS"); ok {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
		}
		cfg.Database.MaxIdleConns = n
	}
	if v, ok := lookupEnvTrimmed("DB_CONN_MAX_LIFETIME_MS"); ok {
		d, err := parsePositiveMillis(v)
		if err != nil {
			return fmt.Errorf("DB_CONN_MAX_LIFETIME_MS: %w", err)
		}
		cfg.Database.ConnMaxLifetime = d
	}
	return nil
}

func lookupEnvTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func parsePositiveMillis(value string) (time.Duration, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %d", n)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive, got %d", n)
	}
	return n, nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
