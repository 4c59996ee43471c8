package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/model"
)

type fakeLoader struct {
	films   []model.NewFilm
	clients []model.NewClient
	rentals []model.NewRental
	failAt  string // email of the client insert that fails
}

func (f *fakeLoader) AddFilm(_ context.Context, nf model.NewFilm) (uint64, error) {
	f.films = append(f.films, nf)
	return uint64(100 + len(f.films)), nil
}

func (f *fakeLoader) AddClient(_ context.Context, nc model.NewClient) (uint64, error) {
	if nc.EmailAddress == f.failAt {
		return 0, errors.New("duplicate")
	}
	f.clients = append(f.clients, nc)
	return uint64(200 + len(f.clients)), nil
}

func (f *fakeLoader) AddRental(_ context.Context, nr model.NewRental) (uint64, error) {
	f.rentals = append(f.rentals, nr)
	return uint64(len(f.rentals)), nil
}

func openCount() int {
	n := 0
	for _, r := range Rentals {
		if r.ReturnDate == "" {
			n++
		}
	}
	return n
}

func TestDatasetShape(t *testing.T) {
	assert.Len(t, Films, 5)
	assert.Len(t, Clients, 5)
	assert.Len(t, Rentals, 10)
	assert.Equal(t, 4, openCount())

	openByClient := map[int]int{}
	for _, r := range Rentals {
		if r.ReturnDate == "" {
			openByClient[r.Client]++
		} else {
			assert.GreaterOrEqual(t, r.ReturnDate, r.RentalDate)
		}
	}
	assert.Equal(t, 2, openByClient[2], "third client holds two open rentals")
}

func TestLoadMapsPositionsToIDs(t *testing.T) {
	l := &fakeLoader{}
	res, err := Load(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, Result{Films: 5, Clients: 5, Rentals: 10}, res)

	first := l.rentals[0]
	assert.EqualValues(t, 201, first.ClientID)
	assert.EqualValues(t, 101, first.FilmID)
	assert.Equal(t, "2024-01-05", first.RentalDate.Format(model.DateLayout))
	require.NotNil(t, first.ReturnDate)
	assert.Equal(t, "2024-01-12", first.ReturnDate.Format(model.DateLayout))

	carol := l.rentals[5]
	assert.EqualValues(t, 203, carol.ClientID)
	assert.EqualValues(t, 105, carol.FilmID)
	assert.Nil(t, carol.ReturnDate)
}

func TestLoadStopsWithoutRollback(t *testing.T) {
	l := &fakeLoader{failAt: Clients[2].EmailAddress}
	res, err := Load(context.Background(), l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), Clients[2].EmailAddress)
	assert.Equal(t, Result{Films: 5, Clients: 2}, res)
	assert.Empty(t, l.rentals)
}
