package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// CatalogService reads the movie catalog. The candidate pool for scoring is
// the top of the catalog by popularity; beyond the pool size, the long tail
// only enters through explicit user history.
type CatalogService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewCatalogService(db DatabaseQuerier, logger *logrus.Logger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

// AvailableMovies returns up to limit movies ordered by popularity.
func (s *CatalogService) AvailableMovies(ctx context.Context, limit int) ([]models.Movie, error) {
	query := `
		SELECT id, title, genres, directors, actors, release_year, runtime,
		       average_rating, rating_count, popularity
		FROM movies
		WHERE available = true
		ORDER BY popularity DESC, id ASC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genres, &m.Directors, &m.Actors,
			&m.ReleaseYear, &m.Runtime, &m.AverageRating, &m.RatingCount, &m.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// GetMovie returns one movie by id.
func (s *CatalogService) GetMovie(ctx context.Context, itemID int64) (*models.Movie, error) {
	query := `
		SELECT id, title, genres, directors, actors, release_year, runtime,
		       average_rating, rating_count, popularity
		FROM movies
		WHERE id = $1`

	var m models.Movie
	err := s.db.QueryRow(ctx, query, itemID).Scan(&m.ID, &m.Title, &m.Genres,
		&m.Directors, &m.Actors, &m.ReleaseYear, &m.Runtime,
		&m.AverageRating, &m.RatingCount, &m.Popularity)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie %d: %w", itemID, err)
	}
	return &m, nil
}
