// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// service, the CLI and the HTTP handlers to distinguish between failure
// scenarios without inspecting driver-specific error objects.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/iliyamo/video-rental/internal/metrics"
)

// ErrNotFound is returned when the referenced id or key does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint, such
// as giving a client an email address another client already owns.
var ErrConflict = errors.New("conflict")

// ErrConstraint is returned when the store rejects a row through a CHECK,
// NOT NULL or foreign-key constraint (e.g. a return date before the rental
// date, or a rental referencing a missing film).
var ErrConstraint = errors.New("constraint violation")

// ErrTimeout is returned when a store call exceeds its deadline.
var ErrTimeout = errors.New("store timeout")

// ErrStore covers connectivity loss, malformed rows and any failure that
// cannot be classified more precisely.
var ErrStore = errors.New("store error")

// MySQL server error numbers.
const (
	mysqlDupEntry        = 1062
	mysqlBadNull         = 1048
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlCheckViolated   = 3819
	mariadbCheckViolated = 4025
)

// classify translates a driver error into the closest sentinel.  The driver
// error text is kept for the message but its type is not exposed.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := kindOf(err)
	metrics.DBQueryErrors.WithLabelValues(op, kindLabel(kind)).Inc()
	return fmt.Errorf("%w: %s: %v", kind, op, err)
}

// Classify is classify for callers outside the repositories, such as the
// connection check run before any repository exists.
func Classify(op string, err error) error {
	return classify(op, err)
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDupEntry:
			return ErrConflict
		case mysqlBadNull, mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlCheckViolated, mariadbCheckViolated:
			return ErrConstraint
		}
		return ErrStore
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrConflict
		case "23502", "23503", "23514": // not_null, foreign_key, check
			return ErrConstraint
		case "57014": // query_canceled, raised when the context deadline fires server side
			return ErrTimeout
		}
		return ErrStore
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrConflict
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintNotNull:
			return ErrConstraint
		}
		return ErrStore
	}
	return ErrStore
}

func kindLabel(kind error) string {
	switch kind {
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrConstraint:
		return "constraint"
	case ErrTimeout:
		return "timeout"
	}
	return "store"
}

// errMalformed reports a row that does not satisfy the entity invariants.
func errMalformed(op, reason string) error {
	metrics.DBQueryErrors.WithLabelValues(op, "malformed").Inc()
	return fmt.Errorf("%w: %s: malformed row: %s", ErrStore, op, reason)
}
