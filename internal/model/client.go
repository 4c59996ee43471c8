package model

// Client represents a rental customer, one row of the `client` table.
// EmailAddress is globally unique and serves as an alternate lookup key.
type Client struct {
	ID            uint64  `json:"id"`                       // client.id
	FirstName     string  `json:"first_name"`               // client.first_name
	LastName      string  `json:"last_name"`                // client.last_name
	EmailAddress  string  `json:"email_address"`            // client.email_address (unique)
	ContactNumber *string `json:"contact_number,omitempty"` // client.contact_number (nullable)
}

// NewClient carries the input of an insert.
type NewClient struct {
	FirstName     string
	LastName      string
	EmailAddress  string
	ContactNumber *string
}

// ClientName is the (first_name, last_name) pair returned by renter lookups.
type ClientName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// String joins the two names with a space.
func (n ClientName) String() string {
	return n.FirstName + " " + n.LastName
}

// ClientSummary is a client together with the number of rentals on record.
type ClientSummary struct {
	Client
	Rentals int `json:"rentals"`
}
