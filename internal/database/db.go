package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/video-rental/internal/config"
)

// Open connects to the configured store and verifies the connection.  The
// returned pool is owned by the caller, who must Close it.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, Dialect, error) {
	d, err := ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, "", err
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, "", err
	}

	// Pool settings
	if d == SQLite {
		// one writer at a time, and ":memory:" databases live in a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping bounded like any other store call
	ctx, cancel := context.WithTimeout(ctx, pingTimeout(cfg))
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			// drivers do not always wrap the deadline they hit
			return nil, "", fmt.Errorf("connect %s: %w: %v", d, ctxErr, err)
		}
		return nil, "", fmt.Errorf("connect %s: %w", d, err)
	}
	return db, d, nil
}

// DefaultPingTimeout bounds the connection check when no query timeout is
// configured.
const DefaultPingTimeout = 5 * time.Second

func pingTimeout(cfg config.Config) time.Duration {
	if cfg.QueryTimeout > 0 {
		return cfg.QueryTimeout
	}
	return DefaultPingTimeout
}

// DSN builds the driver-specific connection string from cfg.
func DSN(cfg config.Config) (string, error) {
	d, err := ParseDialect(cfg.DBDriver)
	if err != nil {
		return "", err
	}
	switch d {
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		mc.DBName = cfg.DBName
		// parseTime=true -> DATE -> time.Time | loc=UTC keeps dates consistent
		mc.ParseTime = true
		mc.Loc = time.UTC
		// RowsAffected reports matched rows, so an update to the same value counts as 1
		mc.ClientFoundRows = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case Postgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
			Path:     "/" + cfg.DBName,
			RawQuery: "sslmode=prefer",
		}
		if cfg.DBPass != "" {
			u.User = url.UserPassword(cfg.DBUser, cfg.DBPass)
		} else {
			u.User = url.User(cfg.DBUser)
		}
		return u.String(), nil
	default:
		sep := "?"
		if strings.Contains(cfg.DBPath, "?") {
			sep = "&"
		}
		return cfg.DBPath + sep + "_foreign_keys=on", nil
	}
}
