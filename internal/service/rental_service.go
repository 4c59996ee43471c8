// Package service implements the rental query service: one operation per
// command, with input validation ahead of any store call, a bounded timeout
// on every call and best-effort event publishing after successful writes.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/metrics"
	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/seed"
)

// ErrValidation is returned for malformed or missing input.  It is always
// raised before the store is contacted.
var ErrValidation = errors.New("validation error")

// DefaultTimeout bounds a store call when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Options configure a RentalService.
type Options struct {
	Timeout         time.Duration  // per store call
	CaseInsensitive bool           // title and email lookups ignore case
	Events          EventPublisher // nil disables publishing
}

// RentalService exposes typed operations over films, clients and rentals.
type RentalService struct {
	films   *repository.FilmRepo
	clients *repository.ClientRepo
	rentals *repository.RentalRepo
	events  EventPublisher
	timeout time.Duration
}

// New builds a RentalService on an open pool.  The caller keeps ownership of
// db and closes it after the last call.
func New(db *sql.DB, d database.Dialect, opts Options) *RentalService {
	ropts := repository.Options{CaseInsensitive: opts.CaseInsensitive}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RentalService{
		films:   repository.NewFilmRepo(db, d, ropts),
		clients: repository.NewClientRepo(db, d, ropts),
		rentals: repository.NewRentalRepo(db, d, ropts),
		events:  opts.Events,
		timeout: timeout,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MaxID is the largest id the stores can hold (a signed 64-bit key).
const MaxID = math.MaxInt64

func checkID(kind string, id uint64) error {
	if id == 0 || id > MaxID {
		return invalid("%s id %d out of range", kind, id)
	}
	return nil
}

// AddFilm inserts a film and returns its id.  The title must not be blank.
func (s *RentalService) AddFilm(ctx context.Context, f model.NewFilm) (uint64, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return 0, invalid("film title must not be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	id, err := s.films.Create(ctx, f)
	if err != nil {
		return 0, err
	}
	ev := queue.NewEvent(queue.FilmAdded)
	ev.FilmID, ev.FilmTitle = id, f.Title
	s.publish(ctx, ev)
	return id, nil
}

// ListFilms returns every film in id order.
func (s *RentalService) ListFilms(ctx context.Context) ([]model.Film, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.films.ListAll(ctx)
}

// GetFilm returns one film by id.
func (s *RentalService) GetFilm(ctx context.Context, id uint64) (model.Film, error) {
	if err := checkID("film", id); err != nil {
		return model.Film{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.films.GetByID(ctx, id)
}

// GetClient returns one client by id with its rental count.
func (s *RentalService) GetClient(ctx context.Context, id uint64) (model.ClientSummary, error) {
	if err := checkID("client", id); err != nil {
		return model.ClientSummary{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return model.ClientSummary{}, err
	}
	n, err := s.rentals.CountByClient(ctx, id)
	if err != nil {
		return model.ClientSummary{}, err
	}
	return model.ClientSummary{Client: c, Rentals: n}, nil
}

// AddClient inserts a client and returns its id.  Names and email must not
// be blank; a duplicate email is reported by the store as a conflict.
func (s *RentalService) AddClient(ctx context.Context, c model.NewClient) (uint64, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.EmailAddress = strings.TrimSpace(c.EmailAddress)
	switch {
	case c.FirstName == "" || c.LastName == "":
		return 0, invalid("client first and last name must not be empty")
	case c.EmailAddress == "":
		return 0, invalid("client email address must not be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.clients.Create(ctx, c)
}

// AddRental records a checkout.  Date ordering and the references are
// enforced by the store constraints, not here.
func (s *RentalService) AddRental(ctx context.Context, r model.NewRental) (uint64, error) {
	switch {
	case checkID("client", r.ClientID) != nil || checkID("film", r.FilmID) != nil:
		return 0, invalid("rental needs a client id and a film id")
	case r.RentalDate.IsZero():
		return 0, invalid("rental date is required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rental, err := s.rentals.Create(ctx, r)
	if err != nil {
		return 0, err
	}
	return rental.ID, nil
}

// UpdateClientEmail changes a client's email address and returns the number
// of affected rows.  Reusing the client's own address succeeds.
func (s *RentalService) UpdateClientEmail(ctx context.Context, clientID uint64, email string) (int64, error) {
	if err := checkID("client", clientID); err != nil {
		return 0, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, invalid("new email address must not be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.clients.UpdateEmail(ctx, clientID, email)
	if err != nil {
		return 0, err
	}
	ev := queue.NewEvent(queue.ClientEmailUpdated)
	ev.ClientID, ev.Email = clientID, email
	s.publish(ctx, ev)
	return n, nil
}

// RemoveClient deletes a client; the store cascades to its rentals.
func (s *RentalService) RemoveClient(ctx context.Context, clientID uint64) error {
	if err := checkID("client", clientID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.clients.Delete(ctx, clientID); err != nil {
		return err
	}
	ev := queue.NewEvent(queue.ClientRemoved)
	ev.ClientID = clientID
	s.publish(ctx, ev)
	return nil
}

// FindFilmsRentedBy returns the films rented by the client owning email.
// An unknown email yields an empty sequence.
func (s *RentalService) FindFilmsRentedBy(ctx context.Context, email string) (iter.Seq2[model.Film, error], error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email address must not be empty")
	}
	return bounded(ctx, s.timeout, func(ctx context.Context) iter.Seq2[model.Film, error] {
		return s.rentals.FilmsRentedBy(ctx, email)
	}), nil
}

// FindClientsWhoRented returns the names of the clients who rented a title.
func (s *RentalService) FindClientsWhoRented(ctx context.Context, title string) (iter.Seq2[model.ClientName, error], error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("film title must not be empty")
	}
	return bounded(ctx, s.timeout, func(ctx context.Context) iter.Seq2[model.ClientName, error] {
		return s.rentals.RentersOf(ctx, title)
	}), nil
}

// RentalHistory returns the dated rental log of a title.
func (s *RentalService) RentalHistory(ctx context.Context, title string) (iter.Seq2[model.RentalRecord, error], error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("film title must not be empty")
	}
	return bounded(ctx, s.timeout, func(ctx context.Context) iter.Seq2[model.RentalRecord, error] {
		return s.rentals.HistoryOf(ctx, title)
	}), nil
}

// ListOpenRentals returns every rental without a return date.
func (s *RentalService) ListOpenRentals(ctx context.Context) iter.Seq2[model.OpenRental, error] {
	return bounded(ctx, s.timeout, s.rentals.ListOpen)
}

// Seed inserts the demonstration dataset through the service's own write
// operations.  Rows inserted before a failure remain committed.
func (s *RentalService) Seed(ctx context.Context) (seed.Result, error) {
	return seed.Load(ctx, s)
}

// bounded runs each iteration of a sequence under its own deadline, so a
// restarted sequence gets a fresh timeout.
func bounded[T any](ctx context.Context, timeout time.Duration, open func(context.Context) iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		for v, err := range open(ctx) {
			if !yield(v, err) {
				return
			}
		}
	}
}

// publish hands ev to the broker without failing the calling operation.
func (s *RentalService) publish(ctx context.Context, ev queue.RentalEvent) {
	if s.events == nil {
		return
	}
	// publishing gets its own deadline, detached from the store call
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	status := "ok"
	if err := s.events.Publish(ctx, ev); err != nil {
		status = "error"
	}
	metrics.EventsPublished.WithLabelValues(ev.Type, status).Inc()
}
