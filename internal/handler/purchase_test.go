package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/repository"
)

func newPurchaseTest(t *testing.T) (*PurchaseHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPurchaseHandler(repository.NewPurchaseRepo(db)), mock
}

func mockPurchaseColumns() []string {
	return []string{
		"id", "user_id", "item_name", "item_description", "price_paise",
		"quantity", "total_paise", "status", "created_at", "updated_at",
	}
}

func TestCreatePurchaseComputesTotal(t *testing.T) {
	h, mock := newPurchaseTest(t)

	mock.ExpectExec("INSERT INTO purchases").
		WithArgs(uint64(3), "Portfolio template", nil, int64(250000), 3, int64(750000), "pending").
		WillReturnResult(sqlmock.NewResult(9, 1))

	c, rec := jsonCtx(http.MethodPost, "/v1/purchases",
		`{"item_name":"Portfolio template","price_paise":250000,"quantity":3}`)
	c.Set("user_id", uint64(3))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_paise":750000`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePurchaseRejectsMissingPrice(t *testing.T) {
	h, _ := newPurchaseTest(t)

	c, rec := jsonCtx(http.MethodPost, "/v1/purchases", `{"item_name":"Template"}`)
	c.Set("user_id", uint64(3))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPurchaseForbiddenForStranger(t *testing.T) {
	h, mock := newPurchaseTest(t)

	now := time.Now()
	rows := sqlmock.NewRows(mockPurchaseColumns()).
		AddRow(9, 3, "Portfolio template", nil, 250000, 1, 250000, "completed", now, now)
	mock.ExpectQuery("SELECT .+ FROM purchases WHERE id=").
		WithArgs(uint64(9)).
		WillReturnRows(rows)

	c, rec := jsonCtx(http.MethodGet, "/v1/purchases/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", uint64(5))
	c.Set("role", "user")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdatePurchaseStatusRejectsUnknownState(t *testing.T) {
	h, _ := newPurchaseTest(t)

	c, rec := jsonCtx(http.MethodPatch, "/v1/purchases/9/status", `{"status":"shipped"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", uint64(1))
	c.Set("role", "admin")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
