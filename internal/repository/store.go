package repository

import (
	"context"
	"database/sql"
	"iter"
	"time"

	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/metrics"
)

// Options tune how lookups compare text.
type Options struct {
	// CaseInsensitive compares titles and emails with LOWER() on both sides
	// instead of relying on the column collation.
	CaseInsensitive bool
}

// store is the state shared by every repository: the pool, the dialect used
// to rebind placeholders and the lookup options.
type store struct {
	db      *sql.DB
	dialect database.Dialect
	opts    Options
}

// match renders an exact-match predicate on col for one bound argument.
func (s store) match(col string) string {
	if s.opts.CaseInsensitive {
		return "LOWER(" + col + ") = LOWER(?)"
	}
	return col + " = ?"
}

// exec runs a statement and returns the number of affected rows.
func (s store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	defer metrics.ObserveQuery(op, time.Now())
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(op, err)
	}
	return n, nil
}

// insert runs an INSERT and returns the generated id.  PostgreSQL reads it
// through RETURNING because pgx does not implement LastInsertId.
func (s store) insert(ctx context.Context, op, query string, args ...any) (uint64, error) {
	defer metrics.ObserveQuery(op, time.Now())
	if s.dialect.SupportsReturning() {
		var id uint64
		if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, classify(op, err)
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, classify(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(op, err)
	}
	return uint64(id), nil
}

// each returns a lazy sequence over the rows of query.  Every range over the
// sequence issues the query again; the result set is closed when the loop
// ends, including when the consumer breaks early.
func each[T any](ctx context.Context, s store, op, query string, args []any, scan func(*sql.Rows) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		defer metrics.ObserveQuery(op, time.Now())
		rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
		if err != nil {
			yield(zero, classify(op, err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				yield(zero, errMalformed(op, err.Error()))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, classify(op, err))
		}
	}
}

// Collect drains a sequence into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// dateOnly strips the clock so DATE columns receive midnight UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*p), Valid: true}
}

func nullDate(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dateOnly(*p), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func intPtr(ni sql.NullInt32) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int32)
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}
