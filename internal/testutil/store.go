// Package testutil provides helpers shared by store-backed tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/schema"
)

// SQLiteConfig returns a configuration for a fresh in-memory store.
func SQLiteConfig() config.Config {
	return config.Config{
		DBDriver:       config.DriverSQLite,
		DBPath:         ":memory:",
		DBMaxOpenConns: 1,
		QueryTimeout:   5 * time.Second,
	}
}

// NewStore opens an in-memory SQLite store with foreign keys enabled and the
// rental schema provisioned.  The pool is closed when the test ends.
func NewStore(t testing.TB) *sql.DB {
	t.Helper()
	db, d, err := database.Open(context.Background(), SQLiteConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, schema.NewManager(db, d).Provision(context.Background()))
	return db
}

// Date parses a YYYY-MM-DD literal or fails the test.
func Date(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	require.NoError(t, err)
	return d
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
