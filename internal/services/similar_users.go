package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// SimilarUserFinder reads precomputed SIMILAR_TO relationships from the user
// graph. The relationships themselves are maintained by the offline similarity
// job, not by the request path.
type SimilarUserFinder struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

func NewSimilarUserFinder(driver neo4j.DriverWithContext, logger *logrus.Logger) *SimilarUserFinder {
	return &SimilarUserFinder{driver: driver, logger: logger}
}

// FindSimilarUsers returns up to limit neighbors ordered by similarity.
func (f *SimilarUserFinder) FindSimilarUsers(ctx context.Context, userID string, limit int) ([]models.SimilarUser, error) {
	if f.driver == nil {
		return nil, nil
	}

	session := f.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	cypher := `
		MATCH (u:User {id: $user_id})-[s:SIMILAR_TO]-(similar:User)
		RETURN similar.id AS user_id, s.score AS similarity
		ORDER BY s.score DESC
		LIMIT $limit`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]interface{}{
			"user_id": userID,
			"limit":   limit,
		})
		if err != nil {
			return nil, err
		}

		var similar []models.SimilarUser
		for result.Next(ctx) {
			record := result.Record()
			id, _ := record.Get("user_id")
			score, _ := record.Get("similarity")

			idStr, ok := id.(string)
			if !ok {
				continue
			}
			similarity, ok := score.(float64)
			if !ok {
				continue
			}
			similar = append(similar, models.SimilarUser{
				UserID:     idStr,
				Similarity: similarity,
			})
		}
		return similar, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find similar users: %w", err)
	}

	similar, _ := result.([]models.SimilarUser)
	f.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"neighbors": len(similar),
	}).Debug("Similar user lookup")

	return similar, nil
}
