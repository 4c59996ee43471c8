// Package schema provisions the film, client and rental tables.  Provision
// only ever creates what is absent, so it is safe to run against a store that
// already holds data.
package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/video-rental/internal/database"
)

// Statement is one named DDL step.
type Statement struct {
	Name string
	SQL  string
}

// Manager creates the rental schema on a store.
type Manager struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewManager constructs a Manager with the provided DB handle.
func NewManager(db *sql.DB, d database.Dialect) *Manager {
	return &Manager{db: db, dialect: d}
}

// Provision creates film, client and rental, in that order, together with
// the lookup indexes.  Rental comes last because it references the other two.
// Constraints (unique email, cascading foreign keys, the return date check)
// are declared here and enforced by the store.
func (m *Manager) Provision(ctx context.Context) error {
	stmts, err := Statements(m.dialect)
	if err != nil {
		return err
	}
	for _, st := range stmts {
		if _, err := m.db.ExecContext(ctx, st.SQL); err != nil {
			return fmt.Errorf("provision %s: %w", st.Name, err)
		}
	}
	return nil
}

// Statements returns the ordered DDL for a dialect.
func Statements(d database.Dialect) ([]Statement, error) {
	switch d {
	case database.MySQL:
		return mysqlSchema, nil
	case database.Postgres:
		return postgresSchema, nil
	case database.SQLite:
		return sqliteSchema, nil
	}
	return nil, fmt.Errorf("no schema for dialect %q", d)
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inside the
// table definitions.  utf8mb4_bin keeps title and email comparisons exact.
var mysqlSchema = []Statement{
	{"film", `CREATE TABLE IF NOT EXISTS film (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title         VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		release_year  INT NULL,
		category      VARCHAR(100) NULL,
		director_name VARCHAR(255) NULL,
		CONSTRAINT chk_film_title CHECK (title <> ''),
		INDEX idx_film_title (title)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"client", `CREATE TABLE IF NOT EXISTS client (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name     VARCHAR(100) NOT NULL,
		last_name      VARCHAR(100) NOT NULL,
		email_address  VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		contact_number TEXT NULL,
		CONSTRAINT chk_client_names CHECK (first_name <> '' AND last_name <> ''),
		CONSTRAINT chk_client_email CHECK (email_address <> ''),
		UNIQUE KEY idx_client_email (email_address)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"rental", `CREATE TABLE IF NOT EXISTS rental (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		client_id   BIGINT UNSIGNED NOT NULL,
		film_id     BIGINT UNSIGNED NOT NULL,
		rental_date DATE NOT NULL,
		return_date DATE NULL,
		CONSTRAINT chk_rental_dates CHECK (return_date IS NULL OR return_date >= rental_date),
		CONSTRAINT fk_rental_client FOREIGN KEY (client_id) REFERENCES client (id) ON DELETE CASCADE,
		CONSTRAINT fk_rental_film FOREIGN KEY (film_id) REFERENCES film (id) ON DELETE CASCADE,
		INDEX idx_rental_client (client_id),
		INDEX idx_rental_film (film_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

var postgresSchema = []Statement{
	{"film", `CREATE TABLE IF NOT EXISTS film (
		id            BIGSERIAL PRIMARY KEY,
		title         VARCHAR(255) NOT NULL CHECK (title <> ''),
		release_year  INT,
		category      VARCHAR(100),
		director_name VARCHAR(255)
	)`},
	{"idx_film_title", `CREATE INDEX IF NOT EXISTS idx_film_title ON film (title)`},
	{"client", `CREATE TABLE IF NOT EXISTS client (
		id             BIGSERIAL PRIMARY KEY,
		first_name     VARCHAR(100) NOT NULL CHECK (first_name <> ''),
		last_name      VARCHAR(100) NOT NULL CHECK (last_name <> ''),
		email_address  VARCHAR(255) NOT NULL UNIQUE CHECK (email_address <> ''),
		contact_number TEXT
	)`},
	{"idx_client_email", `CREATE INDEX IF NOT EXISTS idx_client_email ON client (email_address)`},
	{"rental", `CREATE TABLE IF NOT EXISTS rental (
		id          BIGSERIAL PRIMARY KEY,
		client_id   BIGINT NOT NULL REFERENCES client (id) ON DELETE CASCADE,
		film_id     BIGINT NOT NULL REFERENCES film (id) ON DELETE CASCADE,
		rental_date DATE NOT NULL,
		return_date DATE,
		CONSTRAINT chk_rental_dates CHECK (return_date IS NULL OR return_date >= rental_date)
	)`},
	{"idx_rental_client", `CREATE INDEX IF NOT EXISTS idx_rental_client ON rental (client_id)`},
	{"idx_rental_film", `CREATE INDEX IF NOT EXISTS idx_rental_film ON rental (film_id)`},
}

var sqliteSchema = []Statement{
	{"film", `CREATE TABLE IF NOT EXISTS film (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		title         TEXT NOT NULL CHECK (title <> ''),
		release_year  INTEGER,
		category      TEXT,
		director_name TEXT
	)`},
	{"idx_film_title", `CREATE INDEX IF NOT EXISTS idx_film_title ON film (title)`},
	{"client", `CREATE TABLE IF NOT EXISTS client (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name     TEXT NOT NULL CHECK (first_name <> ''),
		last_name      TEXT NOT NULL CHECK (last_name <> ''),
		email_address  TEXT NOT NULL UNIQUE CHECK (email_address <> ''),
		contact_number TEXT
	)`},
	{"idx_client_email", `CREATE INDEX IF NOT EXISTS idx_client_email ON client (email_address)`},
	{"rental", `CREATE TABLE IF NOT EXISTS rental (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id   INTEGER NOT NULL REFERENCES client (id) ON DELETE CASCADE,
		film_id     INTEGER NOT NULL REFERENCES film (id) ON DELETE CASCADE,
		rental_date DATE NOT NULL,
		return_date DATE,
		CHECK (return_date IS NULL OR return_date >= rental_date)
	)`},
	{"idx_rental_client", `CREATE INDEX IF NOT EXISTS idx_rental_client ON rental (client_id)`},
	{"idx_rental_film", `CREATE INDEX IF NOT EXISTS idx_rental_film ON rental (film_id)`},
}
