package model

import "time"

// WebhookEvent persists a gateway webhook delivery after its signature has
// been verified.  EventID is the gateway's identifier and is unique, so a
// redelivered event is acknowledged without being processed twice.
type WebhookEvent struct {
	ID         uint64    `json:"id"`
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Payload    string    `json:"payload"`
	ReceivedAt time.Time `json:"received_at"`
}
