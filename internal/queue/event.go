// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentEventName routes all payment lifecycle messages.
const PaymentEventQueue = "payment.events"

// Kinds of payment events carried on the queue.
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
)

// PaymentEvent is published when a transaction reaches a terminal state.  It
// carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type PaymentEvent struct {
	Event           string  `json:"event"`
	TransactionID   uint64  `json:"transaction_id"`
	Reference       string  `json:"reference"`
	UserID          uint64  `json:"user_id"`
	ProjectID       *uint64 `json:"project_id,omitempty"`
	CustomRequestID *uint64 `json:"custom_request_id,omitempty"`
	Type            string  `json:"type"`
	AmountPaise     int64   `json:"amount_paise"`
	Currency        string  `json:"currency"`
	Reason          string  `json:"reason,omitempty"`
	OccurredAt      string  `json:"occurred_at"`
}
