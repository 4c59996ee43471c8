package model

// Film represents a rentable title as stored in the `film` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	Title        – non-empty title, exact-match lookup key.
//	ReleaseYear  – year of release (nullable).
//	Category     – genre label (nullable).
//	DirectorName – director (nullable).
type Film struct {
	ID           uint64  `json:"id"`                      // film.id
	Title        string  `json:"title"`                   // film.title
	ReleaseYear  *int    `json:"release_year,omitempty"`  // film.release_year (nullable)
	Category     *string `json:"category,omitempty"`      // film.category (nullable)
	DirectorName *string `json:"director_name,omitempty"` // film.director_name (nullable)
}

// NewFilm carries the input of an insert.  ID is assigned by the store.
type NewFilm struct {
	Title        string  `json:"title"`
	ReleaseYear  *int    `json:"release_year,omitempty"`
	Category     *string `json:"category,omitempty"`
	DirectorName *string `json:"director_name,omitempty"`
}
