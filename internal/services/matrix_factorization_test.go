package services

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerec/cinerec/pkg/models"
)

func TestMatrixFactorizationModel_Predict(t *testing.T) {
	model := NewMatrixFactorizationModel(nil, testLogger())
	model.SetGlobalMean(6.0)
	model.SetUserFactors("user-1", []float64{0.5, -0.2, 1.0})
	model.SetItemFactors(1, []float64{1.0, 0.0, 0.5})
	model.SetItemFactors(2, []float64{-4.0, 1.0, -3.0})

	predictions, err := model.Predict(context.Background(), "user-1", []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	// 6.0 + (0.5*1.0 + -0.2*0.0 + 1.0*0.5) = 7.0
	assert.Equal(t, int64(1), predictions[0].ItemID)
	assert.InDelta(t, 7.0, predictions[0].Score, 1e-9)

	// 6.0 + (-2.0 - 0.2 - 3.0) = 0.8 clamps to the scale floor
	assert.Equal(t, int64(2), predictions[1].ItemID)
	assert.InDelta(t, 1.0, predictions[1].Score, 1e-9)
}

func TestMatrixFactorizationModel_Predict_ClampsHigh(t *testing.T) {
	model := NewMatrixFactorizationModel(nil, testLogger())
	model.SetGlobalMean(6.0)
	model.SetUserFactors("user-1", []float64{3.0})
	model.SetItemFactors(1, []float64{4.0})

	predictions, err := model.Predict(context.Background(), "user-1", []int64{1})
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.InDelta(t, 10.0, predictions[0].Score, 1e-9)
}

func TestMatrixFactorizationModel_Predict_UnknownUser(t *testing.T) {
	model := NewMatrixFactorizationModel(nil, testLogger())
	model.SetItemFactors(1, []float64{1.0})

	predictions, err := model.Predict(context.Background(), "stranger", []int64{1})
	require.NoError(t, err)
	assert.Empty(t, predictions)
}

func TestMatrixFactorizationModel_LoadFactors(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT user_id, factors FROM user_latent_factors").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "factors"}).
			AddRow("user-1", []float64{0.5, 0.5}).
			AddRow("user-2", []float64{}))

	mockDB.ExpectQuery("SELECT item_id, factors FROM item_latent_factors").
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "factors"}).
			AddRow(int64(1), []float64{1.0, 1.0}))

	mockDB.ExpectQuery("SELECT COALESCE").
		WithArgs(models.ActionRate).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(6.8))

	model := NewMatrixFactorizationModel(mockDB, testLogger())
	require.NoError(t, model.LoadFactors(context.Background()))

	// 6.8 + (0.5 + 0.5) = 7.8
	predictions, err := model.Predict(context.Background(), "user-1", []int64{1})
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.InDelta(t, 7.8, predictions[0].Score, 1e-9)

	// Empty factor rows are skipped during load
	predictions, err = model.Predict(context.Background(), "user-2", []int64{1})
	require.NoError(t, err)
	assert.Empty(t, predictions)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}
