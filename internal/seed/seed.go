// Package seed holds the fixed demonstration dataset: five films, five
// clients and ten rentals, four of them still open.  The third client has
// two of the open rentals.
package seed

import (
	"context"
	"fmt"

	"github.com/iliyamo/video-rental/internal/model"
)

// Loader is the write side the dataset is inserted through.
type Loader interface {
	AddFilm(ctx context.Context, f model.NewFilm) (uint64, error)
	AddClient(ctx context.Context, c model.NewClient) (uint64, error)
	AddRental(ctx context.Context, r model.NewRental) (uint64, error)
}

// Result counts the inserted rows.
type Result struct {
	Films   int
	Clients int
	Rentals int
}

// Rental references films and clients by their position in Films and
// Clients, so the dataset does not depend on the ids the store assigns.
type Rental struct {
	Client     int
	Film       int
	RentalDate string
	ReturnDate string // empty while the film is out
}

func ptr[T any](v T) *T { return &v }

var Films = []model.NewFilm{
	{Title: "The Shawshank Redemption", ReleaseYear: ptr(1994), Category: ptr("Drama"), DirectorName: ptr("Frank Darabont")},
	{Title: "The Godfather", ReleaseYear: ptr(1972), Category: ptr("Crime"), DirectorName: ptr("Francis Ford Coppola")},
	{Title: "Inception", ReleaseYear: ptr(2010), Category: ptr("Science Fiction"), DirectorName: ptr("Christopher Nolan")},
	{Title: "Pulp Fiction", ReleaseYear: ptr(1994), Category: ptr("Crime"), DirectorName: ptr("Quentin Tarantino")},
	{Title: "Spirited Away", ReleaseYear: ptr(2001), Category: ptr("Animation"), DirectorName: ptr("Hayao Miyazaki")},
}

var Clients = []model.NewClient{
	{FirstName: "Alice", LastName: "Johnson", EmailAddress: "alice.johnson@example.com", ContactNumber: ptr("555-0101")},
	{FirstName: "Bob", LastName: "Smith", EmailAddress: "bob.smith@example.com", ContactNumber: ptr("555-0102")},
	{FirstName: "Carol", LastName: "Martinez", EmailAddress: "carol.martinez@example.com", ContactNumber: ptr("555-0103")},
	{FirstName: "David", LastName: "Lee", EmailAddress: "david.lee@example.com"},
	{FirstName: "Emma", LastName: "Brown", EmailAddress: "emma.brown@example.com", ContactNumber: ptr("555-0105")},
}

var Rentals = []Rental{
	{Client: 0, Film: 0, RentalDate: "2024-01-05", ReturnDate: "2024-01-12"},
	{Client: 0, Film: 2, RentalDate: "2024-02-10", ReturnDate: "2024-02-15"},
	{Client: 1, Film: 1, RentalDate: "2024-01-20", ReturnDate: "2024-01-27"},
	{Client: 1, Film: 3, RentalDate: "2024-03-01"},
	{Client: 2, Film: 2, RentalDate: "2024-03-05"},
	{Client: 2, Film: 4, RentalDate: "2024-03-08"},
	{Client: 3, Film: 0, RentalDate: "2024-02-14", ReturnDate: "2024-02-21"},
	{Client: 3, Film: 1, RentalDate: "2024-02-28", ReturnDate: "2024-03-06"},
	{Client: 4, Film: 4, RentalDate: "2024-01-02", ReturnDate: "2024-01-09"},
	{Client: 4, Film: 0, RentalDate: "2024-03-10"},
}

// Load inserts the dataset in order: films, clients, then rentals.  There is
// no rollback: when an insert fails, the rows written before it stay and the
// partial Result is returned with the error.
func Load(ctx context.Context, l Loader) (Result, error) {
	var res Result
	filmIDs := make([]uint64, 0, len(Films))
	for _, f := range Films {
		id, err := l.AddFilm(ctx, f)
		if err != nil {
			return res, fmt.Errorf("film %q: %w", f.Title, err)
		}
		filmIDs = append(filmIDs, id)
		res.Films++
	}
	clientIDs := make([]uint64, 0, len(Clients))
	for _, c := range Clients {
		id, err := l.AddClient(ctx, c)
		if err != nil {
			return res, fmt.Errorf("client %s: %w", c.EmailAddress, err)
		}
		clientIDs = append(clientIDs, id)
		res.Clients++
	}
	for i, r := range Rentals {
		nr, err := r.resolve(clientIDs, filmIDs)
		if err != nil {
			return res, fmt.Errorf("rental %d: %w", i+1, err)
		}
		if _, err := l.AddRental(ctx, nr); err != nil {
			return res, fmt.Errorf("rental %d: %w", i+1, err)
		}
		res.Rentals++
	}
	return res, nil
}

func (r Rental) resolve(clientIDs, filmIDs []uint64) (model.NewRental, error) {
	from, err := model.ParseDate(r.RentalDate)
	if err != nil {
		return model.NewRental{}, err
	}
	nr := model.NewRental{ClientID: clientIDs[r.Client], FilmID: filmIDs[r.Film], RentalDate: from}
	if r.ReturnDate != "" {
		until, err := model.ParseDate(r.ReturnDate)
		if err != nil {
			return model.NewRental{}, err
		}
		nr.ReturnDate = &until
	}
	return nr, nil
}
