package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/model"
)

// FilmRepo encapsulates all database queries related to films.
type FilmRepo struct {
	store
}

// NewFilmRepo constructs a FilmRepo with the provided DB handle.
func NewFilmRepo(db *sql.DB, d database.Dialect, opts Options) *FilmRepo {
	return &FilmRepo{store{db: db, dialect: d, opts: opts}}
}

const filmColumns = "f.id, f.title, f.release_year, f.category, f.director_name"

// Create inserts a film and returns its generated id.
func (r *FilmRepo) Create(ctx context.Context, f model.NewFilm) (uint64, error) {
	const q = `INSERT INTO film (title, release_year, category, director_name) VALUES (?, ?, ?, ?)`
	return r.insert(ctx, "film.create", q, f.Title, nullInt(f.ReleaseYear), nullString(f.Category), nullString(f.DirectorName))
}

// ListAll returns every film ordered by id.
func (r *FilmRepo) ListAll(ctx context.Context) ([]model.Film, error) {
	const q = `SELECT ` + filmColumns + ` FROM film f ORDER BY f.id`
	return Collect(each(ctx, r.store, "film.list", q, nil, scanFilm))
}

// GetByID fetches a film by id.  It returns ErrNotFound if no row is found.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (model.Film, error) {
	const q = `SELECT ` + filmColumns + ` FROM film f WHERE f.id = ?`
	for f, err := range each(ctx, r.store, "film.get", q, []any{id}, scanFilm) {
		return f, err
	}
	return model.Film{}, fmt.Errorf("%w: film %d", ErrNotFound, id)
}

func scanFilm(rows *sql.Rows) (model.Film, error) {
	var (
		f        model.Film
		year     sql.NullInt32
		category sql.NullString
		director sql.NullString
	)
	if err := rows.Scan(&f.ID, &f.Title, &year, &category, &director); err != nil {
		return f, err
	}
	if strings.TrimSpace(f.Title) == "" {
		return f, fmt.Errorf("film %d has an empty title", f.ID)
	}
	f.ReleaseYear = intPtr(year)
	f.Category = stringPtr(category)
	f.DirectorName = stringPtr(director)
	return f, nil
}
