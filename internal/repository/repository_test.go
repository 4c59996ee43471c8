package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/testutil"
)

type repos struct {
	db      *sql.DB
	films   *FilmRepo
	clients *ClientRepo
	rentals *RentalRepo
}

func newRepos(t *testing.T, opts Options) repos {
	db := testutil.NewStore(t)
	return repos{
		db:      db,
		films:   NewFilmRepo(db, database.SQLite, opts),
		clients: NewClientRepo(db, database.SQLite, opts),
		rentals: NewRentalRepo(db, database.SQLite, opts),
	}
}

func (r repos) film(t *testing.T, title string) uint64 {
	id, err := r.films.Create(context.Background(), model.NewFilm{Title: title})
	require.NoError(t, err)
	return id
}

func (r repos) client(t *testing.T, first, email string) uint64 {
	id, err := r.clients.Create(context.Background(), model.NewClient{FirstName: first, LastName: "Tester", EmailAddress: email})
	require.NoError(t, err)
	return id
}

func (r repos) rent(t *testing.T, clientID, filmID uint64, from string, until *string) uint64 {
	nr := model.NewRental{ClientID: clientID, FilmID: filmID, RentalDate: testutil.Date(t, from)}
	if until != nil {
		nr.ReturnDate = testutil.Ptr(testutil.Date(t, *until))
	}
	rental, err := r.rentals.Create(context.Background(), nr)
	require.NoError(t, err)
	return rental.ID
}

func TestRentalCreateReturnsStoredRow(t *testing.T) {
	r := newRepos(t, Options{})
	f := r.film(t, "Heat")
	c := r.client(t, "Ann", "ann@example.com")

	from := testutil.Date(t, "2024-03-01").Add(15 * time.Hour)
	rental, err := r.rentals.Create(context.Background(), model.NewRental{ClientID: c, FilmID: f, RentalDate: from})
	require.NoError(t, err)
	assert.NotZero(t, rental.ID)
	assert.Equal(t, c, rental.ClientID)
	assert.Equal(t, f, rental.FilmID)
	assert.Equal(t, testutil.Date(t, "2024-03-01"), rental.RentalDate)
	assert.Nil(t, rental.ReturnDate)
}

func TestFilmCreateAndList(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()

	id, err := r.films.Create(ctx, model.NewFilm{
		Title:        "Heat",
		ReleaseYear:  testutil.Ptr(1995),
		Category:     testutil.Ptr("Crime"),
		DirectorName: testutil.Ptr("Michael Mann"),
	})
	require.NoError(t, err)
	bare := r.film(t, "Koyaanisqatsi")

	films, err := r.films.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, id, films[0].ID)
	assert.Equal(t, "Heat", films[0].Title)
	assert.Equal(t, 1995, *films[0].ReleaseYear)
	assert.Equal(t, "Crime", *films[0].Category)
	assert.Equal(t, "Michael Mann", *films[0].DirectorName)
	assert.Equal(t, bare, films[1].ID)
	assert.Nil(t, films[1].ReleaseYear)
	assert.Nil(t, films[1].Category)
	assert.Nil(t, films[1].DirectorName)

	got, err := r.films.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, films[0], got)

	_, err = r.films.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilmEmptyTitleRejectedByStore(t *testing.T) {
	r := newRepos(t, Options{})
	_, err := r.films.Create(context.Background(), model.NewFilm{Title: ""})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestReturnDateBeforeRentalDateFails(t *testing.T) {
	r := newRepos(t, Options{})
	f := r.film(t, "Heat")
	c := r.client(t, "Ann", "ann@example.com")

	testCases := []struct{ from, until string }{
		{"2024-03-10", "2024-03-09"},
		{"2024-01-01", "2023-12-31"},
		{"2024-02-29", "2020-02-29"},
	}
	for _, tt := range testCases {
		_, err := r.rentals.Create(context.Background(), model.NewRental{
			ClientID:   c,
			FilmID:     f,
			RentalDate: testutil.Date(t, tt.from),
			ReturnDate: testutil.Ptr(testutil.Date(t, tt.until)),
		})
		assert.ErrorIs(t, err, ErrConstraint, "%s -> %s", tt.from, tt.until)
	}

	same := "2024-03-10"
	r.rent(t, c, f, "2024-03-10", &same)
}

func TestRentalDanglingReferenceFails(t *testing.T) {
	r := newRepos(t, Options{})
	f := r.film(t, "Heat")
	_, err := r.rentals.Create(context.Background(), model.NewRental{ClientID: 42, FilmID: f, RentalDate: testutil.Date(t, "2024-01-01")})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	r := newRepos(t, Options{})
	r.client(t, "Ann", "ann@example.com")
	_, err := r.clients.Create(context.Background(), model.NewClient{FirstName: "Other", LastName: "Ann", EmailAddress: "ann@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateEmail(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()
	ann := r.client(t, "Ann", "ann@example.com")
	r.client(t, "Bob", "bob@example.com")

	n, err := r.clients.UpdateEmail(ctx, ann, "ann@example.org")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.clients.UpdateEmail(ctx, ann, "ann@example.org")
	require.NoError(t, err, "own address")
	assert.EqualValues(t, 1, n)

	_, err = r.clients.UpdateEmail(ctx, ann, "bob@example.com")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = r.clients.UpdateEmail(ctx, 999, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := r.clients.GetByID(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.org", c.EmailAddress)
}

func TestDeleteClientCascades(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()
	f := r.film(t, "Heat")
	ann := r.client(t, "Ann", "ann@example.com")
	bob := r.client(t, "Bob", "bob@example.com")
	r.rent(t, ann, f, "2024-01-01", nil)
	r.rent(t, ann, f, "2023-01-01", testutil.Ptr("2023-01-05"))
	r.rent(t, bob, f, "2024-01-02", nil)

	require.NoError(t, r.clients.Delete(ctx, ann))

	n, err := r.rentals.CountByClient(ctx, ann)
	require.NoError(t, err)
	assert.Zero(t, n)

	open, err := Collect(r.rentals.ListOpen(ctx))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Bob", open[0].Client.FirstName)

	assert.ErrorIs(t, r.clients.Delete(ctx, ann), ErrNotFound)
	_, err = r.clients.GetByID(ctx, ann)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFilmCascades(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()
	f := r.film(t, "Heat")
	ann := r.client(t, "Ann", "ann@example.com")
	r.rent(t, ann, f, "2024-01-01", nil)

	_, err := r.db.Exec(`DELETE FROM film WHERE id = ?`, f)
	require.NoError(t, err)

	n, err := r.rentals.CountByClient(ctx, ann)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJoinLookups(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()
	heat := r.film(t, "Heat")
	alien := r.film(t, "Alien")
	ann := r.client(t, "Ann", "ann@example.com")
	bob := r.client(t, "Bob", "bob@example.com")
	r.rent(t, ann, heat, "2024-01-01", testutil.Ptr("2024-01-03"))
	r.rent(t, bob, heat, "2024-02-01", nil)
	r.rent(t, ann, alien, "2024-02-05", nil)

	films, err := Collect(r.rentals.FilmsRentedBy(ctx, "ann@example.com"))
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, "Heat", films[0].Title)
	assert.Equal(t, "Alien", films[1].Title)

	renters, err := Collect(r.rentals.RentersOf(ctx, "Heat"))
	require.NoError(t, err)
	assert.Equal(t, []model.ClientName{{FirstName: "Ann", LastName: "Tester"}, {FirstName: "Bob", LastName: "Tester"}}, renters)

	history, err := Collect(r.rentals.HistoryOf(ctx, "Heat"))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, testutil.Date(t, "2024-01-01"), history[0].RentalDate)
	require.NotNil(t, history[0].ReturnDate)
	assert.Equal(t, testutil.Date(t, "2024-01-03"), *history[0].ReturnDate)
	assert.True(t, history[1].Open())

	open, err := Collect(r.rentals.ListOpen(ctx))
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "Heat", open[0].FilmTitle)
	assert.Equal(t, "Bob", open[0].Client.FirstName)
	assert.Equal(t, testutil.Date(t, "2024-02-01"), open[0].RentalDate)
	assert.Equal(t, "Alien", open[1].FilmTitle)
}

func TestLookupsAreExactAndCaseSensitiveByDefault(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()
	heat := r.film(t, "Heat")
	ann := r.client(t, "Ann", "ann@example.com")
	r.rent(t, ann, heat, "2024-01-01", nil)

	for _, title := range []string{"heat", "Hea", "Heat "} {
		renters, err := Collect(r.rentals.RentersOf(ctx, title))
		require.NoError(t, err)
		assert.Empty(t, renters, title)
	}
	films, err := Collect(r.rentals.FilmsRentedBy(ctx, "ANN@example.com"))
	require.NoError(t, err)
	assert.Empty(t, films)

	films, err = Collect(r.rentals.FilmsRentedBy(ctx, "nobody@example.com"))
	require.NoError(t, err)
	assert.Empty(t, films)
}

func TestLookupsCaseInsensitiveOption(t *testing.T) {
	r := newRepos(t, Options{CaseInsensitive: true})
	ctx := context.Background()
	heat := r.film(t, "Heat")
	ann := r.client(t, "Ann", "ann@example.com")
	r.rent(t, ann, heat, "2024-01-01", nil)

	renters, err := Collect(r.rentals.RentersOf(ctx, "HEAT"))
	require.NoError(t, err)
	assert.Len(t, renters, 1)

	films, err := Collect(r.rentals.FilmsRentedBy(ctx, "Ann@Example.com"))
	require.NoError(t, err)
	assert.Len(t, films, 1)
}

func TestSequencesAreRestartable(t *testing.T) {
	r := newRepos(t, Options{})
	ctx := context.Background()
	heat := r.film(t, "Heat")
	ann := r.client(t, "Ann", "ann@example.com")
	r.rent(t, ann, heat, "2024-01-01", nil)
	r.rent(t, ann, heat, "2024-02-01", nil)

	seq := r.rentals.FilmsRentedBy(ctx, "ann@example.com")
	first, err := Collect(seq)
	require.NoError(t, err)
	second, err := Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// stopping early releases the single pooled connection
	for range seq {
		break
	}
	films, err := r.films.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, films, 1)
}
