package cli

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/seed"
)

// printSeq writes header and one formatted line per element.  An empty
// sequence is not an error and prints "(none)".
func printSeq[T any](w io.Writer, header string, seq iter.Seq2[T, error], format func(T) string) error {
	fmt.Fprintln(w, header)
	n := 0
	for v, err := range seq {
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "  "+format(v))
		n++
	}
	if n == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	return nil
}

func formatFilm(f model.Film) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", f.ID, f.Title)
	if f.ReleaseYear != nil {
		fmt.Fprintf(&b, " (%d)", *f.ReleaseYear)
	}
	if f.Category != nil {
		fmt.Fprintf(&b, " - %s", *f.Category)
	}
	if f.DirectorName != nil {
		fmt.Fprintf(&b, ", directed by %s", *f.DirectorName)
	}
	return b.String()
}

func formatRecord(r model.RentalRecord) string {
	until := "(not returned)"
	if !r.Open() {
		until = r.ReturnDate.Format(model.DateLayout)
	}
	return fmt.Sprintf("%s to %s: %s", r.RentalDate.Format(model.DateLayout), until, r.Client)
}

func formatOpenRental(o model.OpenRental) string {
	return fmt.Sprintf("%s rented by %s on %s", o.FilmTitle, o.Client, o.RentalDate.Format(model.DateLayout))
}

func formatSeedResult(r seed.Result) string {
	return fmt.Sprintf("%d films, %d clients, %d rentals", r.Films, r.Clients, r.Rentals)
}

func formatClient(c model.ClientSummary) string {
	line := fmt.Sprintf("%d. %s %s <%s>", c.ID, c.FirstName, c.LastName, c.EmailAddress)
	if c.ContactNumber != nil {
		line += ", " + *c.ContactNumber
	}
	return fmt.Sprintf("%s, %d rental(s)", line, c.Rentals)
}
