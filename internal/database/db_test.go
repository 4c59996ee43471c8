package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/config"
)

func TestRebind(t *testing.T) {
	testCases := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{MySQL, "SELECT * FROM film WHERE id = ?", "SELECT * FROM film WHERE id = ?"},
		{SQLite, "UPDATE client SET email_address = ? WHERE id = ?", "UPDATE client SET email_address = ? WHERE id = ?"},
		{Postgres, "UPDATE client SET email_address = ? WHERE id = ?", "UPDATE client SET email_address = $1 WHERE id = $2"},
		{Postgres, "SELECT '?' AS q, title FROM film WHERE title = ?", "SELECT '?' AS q, title FROM film WHERE title = $1"},
		{Postgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range testCases {
		assert.Equal(t, tt.want, tt.dialect.Rebind(tt.in))
	}
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"":           MySQL,
		"MySQL":      MySQL,
		"postgresql": Postgres,
		"pgx":        Postgres,
		"sqlite":     SQLite,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "sqlite3", SQLite.DriverName())
}

func TestDSN(t *testing.T) {
	mysqlDSN, err := DSN(config.Config{
		DBDriver: "mysql", DBUser: "rental", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "store",
	})
	require.NoError(t, err)
	assert.Contains(t, mysqlDSN, "rental:pw@tcp(db:3306)/store")
	assert.Contains(t, mysqlDSN, "parseTime=true")
	assert.Contains(t, mysqlDSN, "clientFoundRows=true")

	pgDSN, err := DSN(config.Config{
		DBDriver: "postgres", DBUser: "rental", DBHost: "db", DBPort: "5432", DBName: "store",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://rental@db:5432/store?sslmode=prefer", pgDSN)

	liteDSN, err := DSN(config.Config{DBDriver: "sqlite3", DBPath: "file:rental.db?cache=shared"})
	require.NoError(t, err)
	assert.Equal(t, "file:rental.db?cache=shared&_foreign_keys=on", liteDSN)
}

func TestOpenSQLiteMemory(t *testing.T) {
	db, d, err := Open(context.Background(), config.Config{DBDriver: "sqlite3", DBPath: ":memory:", DBMaxOpenConns: 4})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, SQLite, d)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestPingTimeoutFollowsQueryTimeout(t *testing.T) {
	assert.Equal(t, 750*time.Millisecond, pingTimeout(config.Config{QueryTimeout: 750 * time.Millisecond}))
	assert.Equal(t, DefaultPingTimeout, pingTimeout(config.Config{}))
}
