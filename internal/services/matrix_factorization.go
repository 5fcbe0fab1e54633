package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/cinerec/cinerec/pkg/models"
)

// MatrixFactorizationModel serves rating predictions from latent factors
// trained offline. Factors are loaded into memory and refreshed wholesale;
// Predict is a pure dot product and never touches the database.
type MatrixFactorizationModel struct {
	mu          sync.RWMutex
	userFactors map[string]*mat.VecDense
	itemFactors map[int64]*mat.VecDense
	globalMean  float64

	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewMatrixFactorizationModel(db DatabaseQuerier, logger *logrus.Logger) *MatrixFactorizationModel {
	return &MatrixFactorizationModel{
		userFactors: make(map[string]*mat.VecDense),
		itemFactors: make(map[int64]*mat.VecDense),
		db:          db,
		logger:      logger,
	}
}

// LoadFactors replaces the in-memory factors with the latest trained set.
func (m *MatrixFactorizationModel) LoadFactors(ctx context.Context) error {
	userFactors, err := m.loadUserFactors(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user factors: %w", err)
	}
	itemFactors, globalMean, err := m.loadItemFactors(ctx)
	if err != nil {
		return fmt.Errorf("failed to load item factors: %w", err)
	}

	m.mu.Lock()
	m.userFactors = userFactors
	m.itemFactors = itemFactors
	m.globalMean = globalMean
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"users": len(userFactors),
		"items": len(itemFactors),
	}).Info("Loaded matrix factorization model")

	return nil
}

// Predict scores the given items for the user on the 1-10 rating scale. A
// user unknown to the model yields an empty result, which tells the caller
// to fall back.
func (m *MatrixFactorizationModel) Predict(ctx context.Context, userID string, itemIDs []int64) ([]Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userVec, ok := m.userFactors[userID]
	if !ok {
		return nil, nil
	}

	predictions := make([]Prediction, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		itemVec, ok := m.itemFactors[itemID]
		if !ok {
			continue
		}

		score := m.globalMean + mat.Dot(userVec, itemVec)
		if score < 1 {
			score = 1
		}
		if score > 10 {
			score = 10
		}
		predictions = append(predictions, Prediction{ItemID: itemID, Score: score})
	}
	return predictions, nil
}

// SetUserFactors installs factors for one user, used by the realtime update
// path and by tests.
func (m *MatrixFactorizationModel) SetUserFactors(userID string, factors []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userFactors[userID] = mat.NewVecDense(len(factors), factors)
}

// SetItemFactors installs factors for one item.
func (m *MatrixFactorizationModel) SetItemFactors(itemID int64, factors []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemFactors[itemID] = mat.NewVecDense(len(factors), factors)
}

// SetGlobalMean sets the rating baseline added to every prediction.
func (m *MatrixFactorizationModel) SetGlobalMean(mean float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalMean = mean
}

func (m *MatrixFactorizationModel) loadUserFactors(ctx context.Context) (map[string]*mat.VecDense, error) {
	query := `SELECT user_id, factors FROM user_latent_factors`

	rows, err := m.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	factors := make(map[string]*mat.VecDense)
	for rows.Next() {
		var userID string
		var values []float64
		if err := rows.Scan(&userID, &values); err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}
		factors[userID] = mat.NewVecDense(len(values), values)
	}
	return factors, rows.Err()
}

func (m *MatrixFactorizationModel) loadItemFactors(ctx context.Context) (map[int64]*mat.VecDense, float64, error) {
	query := `SELECT item_id, factors FROM item_latent_factors`

	rows, err := m.db.Query(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	factors := make(map[int64]*mat.VecDense)
	for rows.Next() {
		var itemID int64
		var values []float64
		if err := rows.Scan(&itemID, &values); err != nil {
			return nil, 0, err
		}
		if len(values) == 0 {
			continue
		}
		factors[itemID] = mat.NewVecDense(len(values), values)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var globalMean float64
	err = m.db.QueryRow(ctx, `SELECT COALESCE(AVG(value), 5.5) FROM user_actions WHERE action_type = $1`, models.ActionRate).
		Scan(&globalMean)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to compute global rating mean, using midpoint")
		globalMean = 5.5
	}

	return factors, globalMean, nil
}
