package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/payment"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
)

func newTxnTest(t *testing.T) (*TransactionHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewTransactionHandler(
		repository.NewTransactionRepo(db),
		repository.NewProjectRepo(db),
		repository.NewCustomRequestRepo(db),
		repository.NewPurchaseRepo(db),
		repository.NewWebhookEventRepo(db),
		payment.NewGateway("rzp_test_key", "key-secret", "hook-secret"),
	)
	return h, mock
}

func hmacHex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func mockTxnColumns() []string {
	return []string{
		"id", "user_id", "project_id", "custom_request_id", "type", "amount_paise", "currency",
		"status", "payment_method", "reference", "gateway_order_id", "gateway_payment_id",
		"description", "failure_reason", "metadata", "created_at", "updated_at",
	}
}

func pendingTxnRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(mockTxnColumns()).AddRow(
		11, 3, 2, nil, "project_purchase", 49900, "INR",
		"pending", nil, "TXNABC", "order_1", nil, nil, nil, nil, now, now)
}

func TestCreateOrderRequiresExactlyOneTarget(t *testing.T) {
	h, _ := newTxnTest(t)

	for _, body := range []string{
		`{}`,
		`{"project_id":2,"custom_request_id":5}`,
	} {
		c, rec := jsonCtx(http.MethodPost, "/v1/transactions/orders", body)
		c.Set("user_id", uint64(3))
		c.Set("role", "user")
		require.NoError(t, h.CreateOrder(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCreateOrderRejectsOwnProject(t *testing.T) {
	h, mock := newTxnTest(t)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM projects WHERE id=").
		WillReturnRows(sqlmock.NewRows(mockProjectColumns()).AddRow(
			2, 3, "Shop Kit", "storefront", "web", 49900, nil, nil,
			nil, nil, nil, nil, nil, 0, 0, 0, "active", now, now))

	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/orders", `{"project_id":2}`)
	c.Set("user_id", uint64(3)) // same as the seller
	c.Set("role", "user")

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot buy your own project")
}

func TestCreateOrderRejectsInactiveProject(t *testing.T) {
	h, mock := newTxnTest(t)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM projects WHERE id=").
		WillReturnRows(sqlmock.NewRows(mockProjectColumns()).AddRow(
			2, 5, "Shop Kit", "storefront", "web", 49900, nil, nil,
			nil, nil, nil, nil, nil, 0, 0, 0, "draft", now, now))

	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/orders", `{"project_id":2}`)
	c.Set("user_id", uint64(3))
	c.Set("role", "user")

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateOrderRejectsUnquotedRequest(t *testing.T) {
	h, mock := newTxnTest(t)

	mock.ExpectQuery("SELECT .+ FROM custom_requests WHERE id=").
		WillReturnRows(requestRow(sqlmock.NewRows(mockRequestColumns()), 5, 3, "pending"))

	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/orders", `{"custom_request_id":5}`)
	c.Set("user_id", uint64(3))
	c.Set("role", "user")

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not been quoted")
}

func TestVerifyRejectsForgedSignature(t *testing.T) {
	h, mock := newTxnTest(t)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE gateway_order_id=").
		WillReturnRows(pendingTxnRow())
	// the transaction flips to failed with the mismatch recorded
	mock.ExpectExec("UPDATE transactions SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/verify",
		`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"deadbeef"}`)
	c.Set("user_id", uint64(3))
	c.Set("role", "user")

	require.NoError(t, h.Verify(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid payment signature")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, _ := newTxnTest(t)

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`
	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/webhook", body)
	c.Request().Header.Set("X-Razorpay-Signature", hmacHex("wrong-secret", []byte(body)))

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookCapturedCompletesOnce(t *testing.T) {
	h, mock := newTxnTest(t)

	// fresh event: record, complete the transaction, bump sales, write the
	// purchase row and refetch
	mock.ExpectExec("INSERT INTO webhook_events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE gateway_order_id=").
		WillReturnRows(pendingTxnRow())
	mock.ExpectExec("UPDATE transactions SET status=.+ WHERE id=.+ AND status IN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE transactions SET payment_method=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE projects SET sales=sales\\+1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM projects WHERE id=").
		WillReturnRows(sqlmock.NewRows(mockProjectColumns()).AddRow(
			2, 5, "Shop Kit", "storefront", "web", 49900, nil, nil,
			nil, nil, nil, nil, nil, 0, 0, 1, "active", now, now))
	mock.ExpectExec("INSERT INTO purchases").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id=").
		WillReturnRows(sqlmock.NewRows(mockTxnColumns()).AddRow(
			11, 3, 2, nil, "project_purchase", 49900, "INR",
			"completed", "upi", "TXNABC", "order_1", "pay_1", nil, nil, nil, now, now))

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","method":"upi"}}}}`
	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/webhook", body)
	c.Request().Header.Set("X-Razorpay-Signature", hmacHex("hook-secret", []byte(body)))
	c.Request().Header.Set("X-Razorpay-Event-Id", "evt_1")

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDuplicateAcknowledgedWithoutProcessing(t *testing.T) {
	h, mock := newTxnTest(t)

	mock.ExpectExec("INSERT INTO webhook_events").
		WillReturnError(&fakeDupError{})

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`
	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/webhook", body)
	c.Request().Header.Set("X-Razorpay-Signature", hmacHex("hook-secret", []byte(body)))
	c.Request().Header.Set("X-Razorpay-Event-Id", "evt_1")

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate")
	// no further statements were expected: the event was not reprocessed
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundRequiresCompletedTransaction(t *testing.T) {
	h, mock := newTxnTest(t)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id=").
		WillReturnRows(pendingTxnRow())

	c, rec := jsonCtx(http.MethodPost, "/v1/transactions/11/refund", "")
	c.SetParamNames("id")
	c.SetParamValues("11")
	c.Set("user_id", uint64(1))
	c.Set("role", "admin")

	require.NoError(t, h.Refund(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransactionGetForbiddenForStranger(t *testing.T) {
	h, mock := newTxnTest(t)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id=").
		WillReturnRows(pendingTxnRow())

	c, rec := jsonCtx(http.MethodGet, "/v1/transactions/11", "")
	c.SetParamNames("id")
	c.SetParamValues("11")
	c.Set("user_id", uint64(99))
	c.Set("role", "user")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
