package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/model"
)

// ClientRepo encapsulates all database queries related to clients.
type ClientRepo struct {
	store
}

// NewClientRepo constructs a ClientRepo with the provided DB handle.
func NewClientRepo(db *sql.DB, d database.Dialect, opts Options) *ClientRepo {
	return &ClientRepo{store{db: db, dialect: d, opts: opts}}
}

// Create inserts a client and returns its id.  A duplicate email address
// yields ErrConflict.
func (r *ClientRepo) Create(ctx context.Context, c model.NewClient) (uint64, error) {
	const q = `INSERT INTO client (first_name, last_name, email_address, contact_number) VALUES (?, ?, ?, ?)`
	return r.insert(ctx, "client.create", q, c.FirstName, c.LastName, c.EmailAddress, nullString(c.ContactNumber))
}

// GetByID fetches a client by id, returning ErrNotFound when absent.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	const q = `SELECT id, first_name, last_name, email_address, contact_number FROM client WHERE id = ?`
	for c, err := range each(ctx, r.store, "client.get", q, []any{id}, scanClient) {
		return c, err
	}
	return model.Client{}, fmt.Errorf("%w: client %d", ErrNotFound, id)
}

// UpdateEmail sets the email address of a client and returns the number of
// matched rows.  ErrNotFound is returned when no client has the id and
// ErrConflict when another client already owns the address.  Setting a
// client's own current address matches one row and succeeds.
func (r *ClientRepo) UpdateEmail(ctx context.Context, id uint64, email string) (int64, error) {
	const q = `UPDATE client SET email_address = ? WHERE id = ?`
	n, err := r.exec(ctx, "client.update_email", q, email, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: client %d", ErrNotFound, id)
	}
	return n, nil
}

// Delete removes a client.  The store cascades the deletion to every rental
// of the client.  ErrNotFound is returned when no row matched.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM client WHERE id = ?`
	n, err := r.exec(ctx, "client.delete", q, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: client %d", ErrNotFound, id)
	}
	return nil
}

func scanClient(rows *sql.Rows) (model.Client, error) {
	var (
		c       model.Client
		contact sql.NullString
	)
	if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.EmailAddress, &contact); err != nil {
		return c, err
	}
	if strings.TrimSpace(c.EmailAddress) == "" {
		return c, fmt.Errorf("client %d has an empty email address", c.ID)
	}
	c.ContactNumber = stringPtr(contact)
	return c, nil
}
