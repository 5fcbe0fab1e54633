package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/pkg/models"
)

// DatabaseQuerier is the pgx surface the services use, narrow enough for
// pgxmock in tests.
type DatabaseQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ActionPublisher forwards recorded actions to the event stream.
type ActionPublisher interface {
	PublishAction(ctx context.Context, action *models.Action) error
}

const publishTimeout = 10 * time.Second

// TrackingService is the system of record for user actions. Writes go to
// PostgreSQL first; Kafka publication is best effort and never fails the
// request.
type TrackingService struct {
	db        DatabaseQuerier
	publisher ActionPublisher
	validate  *validator.Validate
	logger    *logrus.Logger
	now       func() time.Time
}

func NewTrackingService(db DatabaseQuerier, publisher ActionPublisher, logger *logrus.Logger) *TrackingService {
	return &TrackingService{
		db:        db,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// RecordAction validates and persists a single action.
func (s *TrackingService) RecordAction(ctx context.Context, req *models.ActionRequest) (*models.Action, error) {
	if err := validateActionRequest(req); err != nil {
		return nil, err
	}

	action := &models.Action{
		ID:        uuid.New(),
		UserID:    req.UserID,
		ItemID:    *req.ItemID,
		Type:      req.Type,
		Timestamp: s.now(),
		SessionID: uuid.New(),
		Metadata:  req.Metadata,
	}
	if req.Value != nil {
		action.Value = *req.Value
	}
	if req.Timestamp != nil {
		action.Timestamp = *req.Timestamp
	}

	if err := s.validate.Struct(action); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	query := `
		INSERT INTO user_actions (id, user_id, item_id, action_type, value, timestamp, session_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.Exec(ctx, query,
		action.ID, action.UserID, action.ItemID, action.Type,
		action.Value, action.Timestamp, action.SessionID, action.Metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store action: %w", err)
	}

	s.publishAsync(action)

	s.logger.WithFields(logrus.Fields{
		"action_id":   action.ID,
		"user_id":     action.UserID,
		"item_id":     action.ItemID,
		"action_type": action.Type,
	}).Debug("Recorded action")

	return action, nil
}

// publishAsync mirrors the action onto the event stream without blocking the
// write path.
func (s *TrackingService) publishAsync(action *models.Action) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishAction(ctx, action); err != nil {
			s.logger.WithError(err).WithField("action_id", action.ID).
				Warn("Failed to publish action event")
		}
	}()
}

// GetUserActions returns up to limit actions for the user, newest first,
// optionally restricted to one action type.
func (s *TrackingService) GetUserActions(ctx context.Context, userID string, limit int, actionType string) ([]models.Action, error) {
	query := `
		SELECT id, user_id, item_id, action_type, value, timestamp, session_id, metadata
		FROM user_actions
		WHERE user_id = $1`
	args := []interface{}{userID}

	if actionType != "" {
		query += " AND action_type = $2"
		args = append(args, actionType)
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []models.Action
	for rows.Next() {
		var a models.Action
		if err := rows.Scan(&a.ID, &a.UserID, &a.ItemID, &a.Type, &a.Value,
			&a.Timestamp, &a.SessionID, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// GetRecentActions returns the sequence window of newest actions.
func (s *TrackingService) GetRecentActions(ctx context.Context, userID string) ([]models.Action, error) {
	return s.GetUserActions(ctx, userID, models.SequenceWindow, "")
}

// GetUserItemRating returns the user's most recent rating of the item, with
// rated=false when the user never rated it.
func (s *TrackingService) GetUserItemRating(ctx context.Context, userID string, itemID int64) (float64, bool, error) {
	query := `
		SELECT value FROM user_actions
		WHERE user_id = $1 AND item_id = $2 AND action_type = $3
		ORDER BY timestamp DESC LIMIT 1`

	var value float64
	err := s.db.QueryRow(ctx, query, userID, itemID, models.ActionRate).Scan(&value)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query rating: %w", err)
	}
	return value, true, nil
}

// GetActedItemIDs returns the distinct items the user touched with any of the
// given action types.
func (s *TrackingService) GetActedItemIDs(ctx context.Context, userID string, actionTypes ...string) (map[int64]bool, error) {
	if len(actionTypes) == 0 {
		return map[int64]bool{}, nil
	}

	query := `
		SELECT DISTINCT item_id FROM user_actions
		WHERE user_id = $1 AND action_type = ANY($2)`

	rows, err := s.db.Query(ctx, query, userID, actionTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to query acted items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64]bool)
	for rows.Next() {
		var itemID int64
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		items[itemID] = true
	}
	return items, rows.Err()
}

// validateActionRequest enforces the semantic rules the JSON schema cannot
// express: per-type value requirements and ranges.
func validateActionRequest(req *models.ActionRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidAction)
	}
	if req.ItemID == nil || *req.ItemID <= 0 {
		return fmt.Errorf("%w: item_id is required", ErrInvalidAction)
	}

	switch req.Type {
	case models.ActionRate:
		if req.Value == nil {
			return fmt.Errorf("%w: rate requires a value", ErrInvalidAction)
		}
		if *req.Value < 0 || *req.Value > 10 {
			return fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidAction)
		}
	case models.ActionWatchTime:
		if req.Value == nil || *req.Value < 0 {
			return fmt.Errorf("%w: watchTime requires a non-negative value in minutes", ErrInvalidAction)
		}
	case models.ActionAddWatchlist, models.ActionView, models.ActionClick:
		// No value required.
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, req.Type)
	}
	return nil
}
