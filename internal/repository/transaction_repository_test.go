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

func newMock(t *testing.T) (*TransactionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTransactionRepo(db), mock
}

func TestTransactionCreateDefaultsPending(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(11, 1))

	txn := model.Transaction{
		UserID:      3,
		Type:        model.TxnTypeProjectPurchase,
		AmountPaise: 49900,
		Currency:    "INR",
		Reference:   "TXNABC123",
	}
	require.NoError(t, repo.Create(context.Background(), &txn))
	assert.Equal(t, uint64(11), txn.ID)
	assert.Equal(t, model.TxnStatusPending, txn.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCreateDuplicateReference(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("INSERT INTO transactions").
		WillReturnError(&mysqlError{msg: "Error 1062 (23000): Duplicate entry 'TXNABC' for key 'reference'"})

	txn := model.Transaction{UserID: 3, Type: model.TxnTypeRefund, AmountPaise: 100, Reference: "TXNABC"}
	err := repo.Create(context.Background(), &txn)
	assert.ErrorIs(t, err, ErrConflict)
}

// mysqlError mimics the driver error text the duplicate check looks for.
type mysqlError struct{ msg string }

func (e *mysqlError) Error() string { return e.msg }

func TestMarkCompletedFiresOnce(t *testing.T) {
	repo, mock := newMock(t)

	// first call wins the guarded transition
	mock.ExpectExec("UPDATE transactions SET status=.+ WHERE id=.+ AND status IN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// second call finds the row already completed
	mock.ExpectExec("UPDATE transactions SET status=.+ WHERE id=.+ AND status IN").
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.MarkCompleted(context.Background(), 11, "pay_1", nil)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkCompleted(context.Background(), 11, "pay_1", nil)
	require.NoError(t, err)
	assert.False(t, again)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelStalePending(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("UPDATE transactions SET status=.+ WHERE status=.+ AND created_at <").
		WithArgs(model.TxnStatusCancelled, "payment window expired", model.TxnStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CancelStalePending(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsScopedToUser(t *testing.T) {
	repo, mock := newMock(t)

	uid := uint64(9)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\),").
		WithArgs(uid).
		WillReturnRows(sqlmock.NewRows(
			[]string{"total", "completed", "pending", "failed", "amount"}).
			AddRow(4, 2, 1, 1, 99800))

	s, err := repo.Stats(context.Background(), &uid)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, int64(99800), s.TotalAmountPaise)
}

func TestHistoryEndBoundExcludesNextMidnight(t *testing.T) {
	repo, mock := newMock(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	// a row created exactly at the end bound must not match
	mock.ExpectQuery(`SELECT .+ FROM transactions WHERE user_id=\? AND created_at >= \? AND created_at < \? ORDER BY created_at DESC`).
		WithArgs(uint64(3), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.History(context.Background(), 3, &start, &end)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
