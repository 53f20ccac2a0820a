package model

import "time"

// Transaction types.
const (
	TxnTypeProjectPurchase      = "project_purchase"
	TxnTypeCustomRequestPayment = "custom_request_payment"
	TxnTypeRefund               = "refund"
)

// Transaction statuses.  A row is created pending when a gateway order is
// opened; verification moves it to completed or failed, the refund endpoint
// to refunded, and the background sweep to cancelled when the payment window
// lapses.
const (
	TxnStatusPending    = "pending"
	TxnStatusProcessing = "processing"
	TxnStatusCompleted  = "completed"
	TxnStatusFailed     = "failed"
	TxnStatusCancelled  = "cancelled"
	TxnStatusRefunded   = "refunded"
)

// Payment methods reported by the gateway.
const (
	PaymentMethodUPI        = "upi"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
	PaymentMethodNetBanking = "net_banking"
	PaymentMethodWallet     = "wallet"
)

// ValidTxnType reports whether s is a known transaction type.
func ValidTxnType(s string) bool {
	switch s {
	case TxnTypeProjectPurchase, TxnTypeCustomRequestPayment, TxnTypeRefund:
		return true
	}
	return false
}

// ValidTxnStatus reports whether s is a known transaction status.
func ValidTxnStatus(s string) bool {
	switch s {
	case TxnStatusPending, TxnStatusProcessing, TxnStatusCompleted,
		TxnStatusFailed, TxnStatusCancelled, TxnStatusRefunded:
		return true
	}
	return false
}

// Transaction records a single payment attempt and its outcome.
// GatewayOrderID is written when the remote order is opened;
// GatewayPaymentID only after the payment signature has been verified (or a
// verified webhook reported the capture).  Metadata stores the raw gateway
// payment object as JSON for reconciliation.
type Transaction struct {
	ID               uint64    `json:"id"`
	UserID           uint64    `json:"user_id"`
	ProjectID        *uint64   `json:"project_id,omitempty"`
	CustomRequestID  *uint64   `json:"custom_request_id,omitempty"`
	Type             string    `json:"type"`
	AmountPaise      int64     `json:"amount_paise"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	PaymentMethod    *string   `json:"payment_method,omitempty"`
	Reference        string    `json:"reference"`
	GatewayOrderID   *string   `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string   `json:"gateway_payment_id,omitempty"`
	Description      *string   `json:"description,omitempty"`
	FailureReason    *string   `json:"failure_reason,omitempty"`
	Metadata         *string   `json:"metadata,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TxnStats aggregates transaction counts and the completed amount sum for
// the stats endpoint.
type TxnStats struct {
	Total            int   `json:"total"`
	Completed        int   `json:"completed"`
	Pending          int   `json:"pending"`
	Failed           int   `json:"failed"`
	TotalAmountPaise int64 `json:"total_amount_paise"`
}
