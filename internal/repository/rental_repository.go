package repository

import (
	"context"
	"database/sql"
	"iter"

	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/model"
)

// RentalRepo holds the rental inserts and the lookups that join rentals to
// films and clients.  Every join is an equi-join on the foreign keys and
// results come back in rental id order.
type RentalRepo struct {
	store
}

// NewRentalRepo constructs a RentalRepo with the provided DB handle.
func NewRentalRepo(db *sql.DB, d database.Dialect, opts Options) *RentalRepo {
	return &RentalRepo{store{db: db, dialect: d, opts: opts}}
}

const rentalJoins = `FROM rental r
	INNER JOIN film f ON r.film_id = f.id
	INNER JOIN client c ON r.client_id = c.id`

// Create inserts a rental and returns it as stored, dates truncated to the
// day.  A return date before the rental date, or a reference to a missing
// client or film, is rejected by the store with ErrConstraint.
func (r *RentalRepo) Create(ctx context.Context, nr model.NewRental) (model.Rental, error) {
	const q = `INSERT INTO rental (client_id, film_id, rental_date, return_date) VALUES (?, ?, ?, ?)`
	returned := nullDate(nr.ReturnDate)
	rental := model.Rental{
		ClientID:   nr.ClientID,
		FilmID:     nr.FilmID,
		RentalDate: dateOnly(nr.RentalDate),
		ReturnDate: timePtr(returned),
	}
	id, err := r.insert(ctx, "rental.create", q, rental.ClientID, rental.FilmID, rental.RentalDate, returned)
	if err != nil {
		return model.Rental{}, err
	}
	rental.ID = id
	return rental, nil
}

// FilmsRentedBy yields the film of every rental made by the client with the
// given email.  A film rented twice appears twice.
func (r *RentalRepo) FilmsRentedBy(ctx context.Context, email string) iter.Seq2[model.Film, error] {
	q := `SELECT ` + filmColumns + ` ` + rentalJoins + ` WHERE ` + r.match("c.email_address") + ` ORDER BY r.id`
	return each(ctx, r.store, "rental.films_by_client", q, []any{email}, scanFilm)
}

// RentersOf yields the name of the client of every rental of a title.
func (r *RentalRepo) RentersOf(ctx context.Context, title string) iter.Seq2[model.ClientName, error] {
	q := `SELECT c.first_name, c.last_name ` + rentalJoins + ` WHERE ` + r.match("f.title") + ` ORDER BY r.id`
	return each(ctx, r.store, "rental.clients_by_film", q, []any{title}, func(rows *sql.Rows) (model.ClientName, error) {
		var n model.ClientName
		err := rows.Scan(&n.FirstName, &n.LastName)
		return n, err
	})
}

// HistoryOf yields the dated rental log of a title.
func (r *RentalRepo) HistoryOf(ctx context.Context, title string) iter.Seq2[model.RentalRecord, error] {
	q := `SELECT r.rental_date, r.return_date, c.first_name, c.last_name ` + rentalJoins + ` WHERE ` + r.match("f.title") + ` ORDER BY r.id`
	return each(ctx, r.store, "rental.history", q, []any{title}, func(rows *sql.Rows) (model.RentalRecord, error) {
		var (
			rec      model.RentalRecord
			returned sql.NullTime
		)
		if err := rows.Scan(&rec.RentalDate, &returned, &rec.Client.FirstName, &rec.Client.LastName); err != nil {
			return rec, err
		}
		rec.RentalDate = rec.RentalDate.UTC()
		rec.ReturnDate = timePtr(returned)
		return rec, nil
	})
}

// ListOpen yields every rental whose film has not been returned.
func (r *RentalRepo) ListOpen(ctx context.Context) iter.Seq2[model.OpenRental, error] {
	const q = `SELECT f.title, c.first_name, c.last_name, r.rental_date ` + rentalJoins + ` WHERE r.return_date IS NULL ORDER BY r.id`
	return each(ctx, r.store, "rental.open", q, nil, func(rows *sql.Rows) (model.OpenRental, error) {
		var o model.OpenRental
		if err := rows.Scan(&o.FilmTitle, &o.Client.FirstName, &o.Client.LastName, &o.RentalDate); err != nil {
			return o, err
		}
		o.RentalDate = o.RentalDate.UTC()
		return o, nil
	})
}

// CountByClient returns how many rentals reference a client, returned or
// not.
func (r *RentalRepo) CountByClient(ctx context.Context, clientID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM rental WHERE client_id = ?`
	for n, err := range each(ctx, r.store, "rental.count_by_client", q, []any{clientID}, func(rows *sql.Rows) (int, error) {
		var n int
		err := rows.Scan(&n)
		return n, err
	}) {
		return n, err
	}
	return 0, nil
}
