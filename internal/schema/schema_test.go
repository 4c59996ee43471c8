package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := database.Open(context.Background(), config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func objects(t *testing.T, db *sql.DB) map[string]int {
	t.Helper()
	rows, err := db.Query(`SELECT type, name FROM sqlite_master WHERE name NOT LIKE 'sqlite_%'`)
	require.NoError(t, err)
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var typ, name string
		require.NoError(t, rows.Scan(&typ, &name))
		out[typ+":"+name]++
	}
	require.NoError(t, rows.Err())
	return out
}

func TestProvisionIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	m := NewManager(db, database.SQLite)
	ctx := context.Background()

	require.NoError(t, m.Provision(ctx))
	first := objects(t, db)
	require.NoError(t, m.Provision(ctx))
	second := objects(t, db)

	assert.Equal(t, first, second)
	for _, name := range []string{
		"table:film", "table:client", "table:rental",
		"index:idx_film_title", "index:idx_client_email",
		"index:idx_rental_client", "index:idx_rental_film",
	} {
		assert.Equal(t, 1, second[name], name)
	}
}

func TestProvisionKeepsData(t *testing.T) {
	db := openSQLite(t)
	m := NewManager(db, database.SQLite)
	ctx := context.Background()
	require.NoError(t, m.Provision(ctx))

	_, err := db.Exec(`INSERT INTO film (title) VALUES ('Alien')`)
	require.NoError(t, err)
	require.NoError(t, m.Provision(ctx))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM film`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStatementsOrder(t *testing.T) {
	for _, d := range []database.Dialect{database.MySQL, database.Postgres, database.SQLite} {
		stmts, err := Statements(d)
		require.NoError(t, err)
		var tables []string
		for _, st := range stmts {
			if st.Name == "film" || st.Name == "client" || st.Name == "rental" {
				tables = append(tables, st.Name)
			}
		}
		assert.Equal(t, []string{"film", "client", "rental"}, tables, string(d))
	}
	_, err := Statements("oracle")
	assert.Error(t, err)
}
