package model

import "time"

// Custom request lifecycle.  Transitions are set by admins through the status
// endpoint; owners may only delete while the request is still pending or
// cancelled.
const (
	RequestStatusPending    = "pending"
	RequestStatusInReview   = "in_review"
	RequestStatusAccepted   = "accepted"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusRejected   = "rejected"
	RequestStatusCancelled  = "cancelled"
)

// ValidRequestStatus reports whether s is a known custom request status.
func ValidRequestStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusInReview, RequestStatusAccepted,
		RequestStatusInProgress, RequestStatusCompleted, RequestStatusRejected,
		RequestStatusCancelled:
		return true
	}
	return false
}

// CustomRequest is a buyer-submitted proposal for bespoke development work.
// BudgetPaise is what the requester offers; QuotedPricePaise is the admin's
// counter-quote and is the amount charged when the request is paid through
// the payment flow.  UserID is immutable after creation.
type CustomRequest struct {
	ID                    uint64     `json:"id"`
	UserID                uint64     `json:"user_id"`
	ProjectTitle          string     `json:"project_title"`
	Description           string     `json:"description"`
	ProjectType           string     `json:"project_type"`
	RequiredFeatures      []string   `json:"required_features,omitempty"`
	TechnicalRequirements *string    `json:"technical_requirements,omitempty"`
	BudgetPaise           int64      `json:"budget_paise"`
	ExpectedDeliveryDate  *time.Time `json:"expected_delivery_date,omitempty"`
	Status                string     `json:"status"`
	AdminNotes            *string    `json:"admin_notes,omitempty"`
	QuotedPricePaise      *int64     `json:"quoted_price_paise,omitempty"`
	EstimatedDays         *int       `json:"estimated_days,omitempty"`
	Attachments           []string   `json:"attachments,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Deletable reports whether the owner may still delete the request.
func (r CustomRequest) Deletable() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusCancelled
}
