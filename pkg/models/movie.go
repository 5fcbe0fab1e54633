package models

// Movie is a catalog item. Read-only during a recommendation request.
type Movie struct {
	ID            int64    `json:"id" db:"id"`
	Title         string   `json:"title" db:"title"`
	Genres        []string `json:"genres" db:"genres"`
	Directors     []string `json:"directors" db:"directors"`
	Actors        []string `json:"actors" db:"actors"`
	ReleaseYear   int      `json:"release_year" db:"release_year"`
	Runtime       int      `json:"runtime" db:"runtime"` // minutes
	AverageRating float64  `json:"average_rating" db:"average_rating"` // 0-10
	RatingCount   int      `json:"rating_count" db:"rating_count"`
	Popularity    float64  `json:"popularity" db:"popularity"` // 0-100
}
