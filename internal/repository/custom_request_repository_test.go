package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

func requestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "project_title", "description", "project_type",
		"required_features", "technical_requirements", "budget_paise", "expected_delivery_date",
		"status", "admin_notes", "quoted_price_paise", "estimated_days", "attachments",
		"created_at", "updated_at",
	})
}

func TestCustomRequestCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCustomRequestRepo(db)

	mock.ExpectExec("INSERT INTO custom_requests").
		WillReturnResult(sqlmock.NewResult(5, 1))

	cr := model.CustomRequest{
		UserID:           3,
		ProjectTitle:     "Inventory dashboard",
		Description:      "track stock levels",
		ProjectType:      model.CategoryWeb,
		RequiredFeatures: []string{"auth", "charts"},
		BudgetPaise:      2500000,
	}
	require.NoError(t, repo.Create(context.Background(), &cr))
	assert.Equal(t, uint64(5), cr.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomRequestGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCustomRequestRepo(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM custom_requests WHERE id=").
		WithArgs(uint64(5)).
		WillReturnRows(requestRows().AddRow(
			5, 3, "Inventory dashboard", "track stock levels", "web",
			"auth,charts", nil, 2500000, nil,
			"accepted", "quoted after call", 3000000, 21, nil, now, now))

	cr, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth", "charts"}, cr.RequiredFeatures)
	require.NotNil(t, cr.QuotedPricePaise)
	assert.Equal(t, int64(3000000), *cr.QuotedPricePaise)
	require.NotNil(t, cr.EstimatedDays)
	assert.Equal(t, 21, *cr.EstimatedDays)
	assert.False(t, cr.Deletable())
}

func TestCustomRequestStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCustomRequestRepo(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\),").
		WillReturnRows(sqlmock.NewRows(
			[]string{"total", "pending", "in_progress", "completed"}).
			AddRow(10, 4, 3, 2))

	s, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 4, s.Pending)
	assert.Equal(t, 3, s.InProgress)
	assert.Equal(t, 2, s.Completed)
}

func TestCustomRequestDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCustomRequestRepo(db)

	mock.ExpectExec("DELETE FROM custom_requests WHERE id=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 404), ErrNotFound)
}

func TestDeletableStates(t *testing.T) {
	for _, status := range []string{model.RequestStatusPending, model.RequestStatusCancelled} {
		assert.True(t, model.CustomRequest{Status: status}.Deletable(), status)
	}
	for _, status := range []string{
		model.RequestStatusInReview, model.RequestStatusAccepted,
		model.RequestStatusInProgress, model.RequestStatusCompleted,
		model.RequestStatusRejected,
	} {
		assert.False(t, model.CustomRequest{Status: status}.Deletable(), status)
	}
}
