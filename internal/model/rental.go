package model

import "time"

// Rental records one checkout of a film by a client.  A nil ReturnDate
// means the film has not been returned yet.  Rows disappear together with
// either parent through ON DELETE CASCADE.
//
// Fields:
//
//	ID         – primary key identifier.
//	ClientID   – client who rented the film.
//	FilmID     – film that was rented.
//	RentalDate – checkout date.
//	ReturnDate – return date (null while open); never before RentalDate.
type Rental struct {
	ID         uint64     // rental.id
	ClientID   uint64     // rental.client_id
	FilmID     uint64     // rental.film_id
	RentalDate time.Time  // rental.rental_date
	ReturnDate *time.Time // rental.return_date (nullable)
}

// NewRental carries the input of an insert.
type NewRental struct {
	ClientID   uint64
	FilmID     uint64
	RentalDate time.Time
	ReturnDate *time.Time
}

// RentalRecord is one line of a film's rental history.
type RentalRecord struct {
	RentalDate time.Time  `json:"rental_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Client     ClientName `json:"client"`
}

// Open reports whether the film is still out.
func (r RentalRecord) Open() bool { return r.ReturnDate == nil }

// OpenRental is a rental whose film has not been returned.
type OpenRental struct {
	FilmTitle  string     `json:"film_title"`
	Client     ClientName `json:"client"`
	RentalDate time.Time  `json:"rental_date"`
}

// DateLayout is the calendar-date format used for input and output.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
