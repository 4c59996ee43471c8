package config // package config loads application configuration from environment variables

import (
	"errors"  // errors defines the ErrConfig sentinel
	"fmt"     // fmt wraps configuration problems with the offending keys
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings joins the list of missing keys
	"time"    // time parses the query timeout
)

// ErrConfig is returned when required connection parameters are missing or
// malformed.  It is reported before any connection attempt so that users see
// which variable to set instead of an opaque driver error.
var ErrConfig = errors.New("configuration error")

// Supported values of DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port used by the serve command
	DBDriver        string        // mysql, postgres or sqlite3
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	DBPath          string        // database file for sqlite3
	DBMaxOpenConns  int           // connection pool size
	QueryTimeout    time.Duration // upper bound for every store call
	CaseInsensitive bool          // compare titles and emails with LOWER()
	RabbitURL       string        // AMQP broker; empty disables event publishing
}

// Load reads configuration values from environment variables and returns a
// Config.  Unlike a fatal exit, every missing or invalid key is collected and
// reported in a single ErrConfig so the caller decides how to terminate.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		DBDriver:        strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		DBPass:          envStr("DB_PASSWORD", os.Getenv("DB_PASS")), // DB_PASS is the older name
		DBMaxOpenConns:  l.intOr("DB_MAX_OPEN_CONNS", 10),
		QueryTimeout:    l.durOr("DB_QUERY_TIMEOUT", 5*time.Second),
		CaseInsensitive: envBool("LOOKUP_CASE_INSENSITIVE", false),
		RabbitURL:       envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case DriverSQLite:
		cfg.DBPath = l.must("DB_PATH")
	default:
		l.invalid = append(l.invalid, fmt.Sprintf("DB_DRIVER=%q (want mysql, postgres or sqlite3)", cfg.DBDriver))
	}

	if cfg.DBMaxOpenConns < 1 {
		l.invalid = append(l.invalid, fmt.Sprintf("DB_MAX_OPEN_CONNS=%d (must be positive)", cfg.DBMaxOpenConns))
	}
	if cfg.QueryTimeout <= 0 {
		l.invalid = append(l.invalid, fmt.Sprintf("DB_QUERY_TIMEOUT=%s (must be positive)", cfg.QueryTimeout))
	}

	if err := l.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BrokerConfig is the subset read by commands that only talk to RabbitMQ.
type BrokerConfig struct {
	URL     string
	LogPath string
}

// LoadBroker reads RABBITMQ_URL (or AMQP_URL) and EVENT_LOG_PATH.  The URL
// is required.
func LoadBroker() (BrokerConfig, error) {
	cfg := BrokerConfig{
		URL:     envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		LogPath: os.Getenv("EVENT_LOG_PATH"),
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return BrokerConfig{}, fmt.Errorf("%w: missing required env var(s): RABBITMQ_URL", ErrConfig)
	}
	return cfg, nil
}

// loader accumulates problems while reading variables.
type loader struct {
	missing []string
	invalid []string
}

// must retrieves the value of a required environment variable, recording it
// as missing when unset or empty.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.missing = append(l.missing, key)
		return ""
	}
	return v
}

func (l *loader) intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q (not an integer)", key, v))
		return def
	}
	return n
}

func (l *loader) durOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q (not a duration)", key, v))
		return def
	}
	return d
}

func (l *loader) err() error {
	var parts []string
	if len(l.missing) > 0 {
		parts = append(parts, "missing required env var(s): "+strings.Join(l.missing, ", "))
	}
	if len(l.invalid) > 0 {
		parts = append(parts, "invalid value(s): "+strings.Join(l.invalid, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrConfig, strings.Join(parts, "; "))
}
