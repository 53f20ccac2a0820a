package repository

import (
	"context"
	"database/sql"
)

// WebhookEventRepo records verified gateway webhook deliveries.  The unique
// event id makes redeliveries detectable so they are acknowledged without
// being processed again.
type WebhookEventRepo struct{ DB *sql.DB }

func NewWebhookEventRepo(db *sql.DB) *WebhookEventRepo { return &WebhookEventRepo{DB: db} }

// Insert stores a webhook event.  It returns false for a duplicate event id,
// which callers treat as "already handled".
func (r *WebhookEventRepo) Insert(ctx context.Context, eventID, eventType, payload string) (bool, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO webhook_events (event_id, event_type, payload) VALUES (?,?,?)",
		eventID, eventType, payload)
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
