package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

// TransactionRepo persists payment attempts in the 'transactions' table.
// Status transitions that must fire side effects exactly once (the sales
// counter increment) are expressed as guarded UPDATEs whose affected-row
// count tells the caller whether the transition actually happened.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

const txnColumns = `id, user_id, project_id, custom_request_id, type, amount_paise, currency,
status, payment_method, reference, gateway_order_id, gateway_payment_id, description,
failure_reason, metadata, created_at, updated_at`

func scanTxn(row rowScanner) (model.Transaction, error) {
	var (
		t         model.Transaction
		projectID sql.NullInt64
		requestID sql.NullInt64
		method    sql.NullString
		orderID   sql.NullString
		paymentID sql.NullString
		desc      sql.NullString
		reason    sql.NullString
		metadata  sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &projectID, &requestID, &t.Type, &t.AmountPaise,
		&t.Currency, &t.Status, &method, &t.Reference, &orderID, &paymentID,
		&desc, &reason, &metadata, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Transaction{}, ErrNotFound
		}
		return model.Transaction{}, err
	}
	if projectID.Valid {
		id := uint64(projectID.Int64)
		t.ProjectID = &id
	}
	if requestID.Valid {
		id := uint64(requestID.Int64)
		t.CustomRequestID = &id
	}
	t.PaymentMethod = nullable(method)
	t.GatewayOrderID = nullable(orderID)
	t.GatewayPaymentID = nullable(paymentID)
	t.Description = nullable(desc)
	t.FailureReason = nullable(reason)
	t.Metadata = nullable(metadata)
	return t, nil
}

func collectTxns(rows *sql.Rows) ([]model.Transaction, error) {
	defer rows.Close()
	items := []model.Transaction{}
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Create inserts a transaction and populates its ID.  Status defaults to
// pending in the schema unless the caller set one explicitly.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	status := t.Status
	if status == "" {
		status = model.TxnStatusPending
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO transactions (user_id, project_id, custom_request_id, type, amount_paise,
currency, status, payment_method, reference, gateway_order_id, description)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		t.UserID, t.ProjectID, t.CustomRequestID, t.Type, t.AmountPaise,
		t.Currency, status, t.PaymentMethod, t.Reference, t.GatewayOrderID, t.Description)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = status
	return nil
}

// GetByID fetches a single transaction.
func (r *TransactionRepo) GetByID(ctx context.Context, id uint64) (model.Transaction, error) {
	return scanTxn(r.DB.QueryRowContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE id=? LIMIT 1", id))
}

// GetByGatewayOrderID looks a transaction up by the gateway's order id; the
// webhook handler uses this to reconcile pushed events.
func (r *TransactionRepo) GetByGatewayOrderID(ctx context.Context, orderID string) (model.Transaction, error) {
	return scanTxn(r.DB.QueryRowContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE gateway_order_id=? LIMIT 1", orderID))
}

// ListAll returns every transaction, newest first.  Admin-only path.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

// ListByUser returns one user's transactions, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

// ListByStatus returns all transactions in one state.
func (r *TransactionRepo) ListByStatus(ctx context.Context, status string) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE status=? ORDER BY created_at DESC", status)
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

// ListByProject returns all transactions referencing one project.
func (r *TransactionRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE project_id=? ORDER BY created_at DESC", projectID)
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

// History returns one user's transactions restricted to an optional date
// range, newest first.
func (r *TransactionRepo) History(ctx context.Context, userID uint64, start, end *time.Time) ([]model.Transaction, error) {
	q := "SELECT " + txnColumns + " FROM transactions WHERE user_id=?"
	args := []any{userID}
	if start != nil {
		q += " AND created_at >= ?"
		args = append(args, *start)
	}
	if end != nil {
		q += " AND created_at < ?"
		args = append(args, *end)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

// UpdateStatus force-sets a transaction's status, optionally recording a
// failure reason.  Used by the admin status endpoint and the failure paths
// of the payment flow.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uint64, status string, failureReason *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE transactions SET status=?, failure_reason=COALESCE(?, failure_reason) WHERE id=?",
		status, failureReason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr == ErrNotFound {
			return ErrNotFound
		}
	}
	return nil
}

// SetGatewayOrder stores the gateway order id on a freshly created
// transaction.
func (r *TransactionRepo) SetGatewayOrder(ctx context.Context, id uint64, orderID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE transactions SET gateway_order_id=? WHERE id=?", orderID, id)
	return err
}

// MarkCompleted transitions a transaction to completed, storing the gateway
// payment id and raw payment metadata.  The transition only fires from
// pending or processing; the returned bool reports whether this call
// performed it, which is what keeps the linked project's sales counter from
// incrementing twice for the same transaction.
func (r *TransactionRepo) MarkCompleted(ctx context.Context, id uint64, paymentID string, metadata *string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE transactions SET status=?, gateway_payment_id=?, metadata=COALESCE(?, metadata)
WHERE id=? AND status IN (?,?)`,
		model.TxnStatusCompleted, paymentID, metadata, id,
		model.TxnStatusPending, model.TxnStatusProcessing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetPaymentMethod records the method reported by the gateway.
func (r *TransactionRepo) SetPaymentMethod(ctx context.Context, id uint64, method string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE transactions SET payment_method=? WHERE id=?", method, id)
	return err
}

// MarkRefunded transitions a completed transaction to refunded.
func (r *TransactionRepo) MarkRefunded(ctx context.Context, id uint64) error {
	return r.UpdateStatus(ctx, id, model.TxnStatusRefunded, nil)
}

// CancelStalePending cancels transactions that have sat in pending longer
// than maxAge.  Orders the client abandoned before verification would
// otherwise stay pending forever.
func (r *TransactionRepo) CancelStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	reason := "payment window expired"
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE transactions SET status=?, failure_reason=? WHERE status=? AND created_at < ?",
		model.TxnStatusCancelled, reason, model.TxnStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats aggregates counts and the completed amount sum, optionally scoped to
// one user (nil means all users; admin view).
func (r *TransactionRepo) Stats(ctx context.Context, userID *uint64) (model.TxnStats, error) {
	q := `SELECT COUNT(*),
COALESCE(SUM(status='completed'),0),
COALESCE(SUM(status='pending'),0),
COALESCE(SUM(status='failed'),0),
COALESCE(SUM(CASE WHEN status='completed' THEN amount_paise ELSE 0 END),0)
FROM transactions`
	args := []any{}
	if userID != nil {
		q += " WHERE user_id=?"
		args = append(args, *userID)
	}
	var s model.TxnStats
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(
		&s.Total, &s.Completed, &s.Pending, &s.Failed, &s.TotalAmountPaise)
	return s, err
}
