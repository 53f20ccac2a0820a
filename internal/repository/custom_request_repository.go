package repository

import (
	"context"
	"database/sql"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

// CustomRequestRepo provides CRUD operations for the 'custom_requests' table.
type CustomRequestRepo struct{ DB *sql.DB }

func NewCustomRequestRepo(db *sql.DB) *CustomRequestRepo { return &CustomRequestRepo{DB: db} }

const customRequestColumns = `id, user_id, project_title, description, project_type,
required_features, technical_requirements, budget_paise, expected_delivery_date, status,
admin_notes, quoted_price_paise, estimated_days, attachments, created_at, updated_at`

func scanCustomRequest(row rowScanner) (model.CustomRequest, error) {
	var (
		cr          model.CustomRequest
		features    sql.NullString
		techReq     sql.NullString
		delivery    sql.NullTime
		adminNotes  sql.NullString
		quoted      sql.NullInt64
		days        sql.NullInt64
		attachments sql.NullString
	)
	err := row.Scan(&cr.ID, &cr.UserID, &cr.ProjectTitle, &cr.Description, &cr.ProjectType,
		&features, &techReq, &cr.BudgetPaise, &delivery, &cr.Status,
		&adminNotes, &quoted, &days, &attachments, &cr.CreatedAt, &cr.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.CustomRequest{}, ErrNotFound
		}
		return model.CustomRequest{}, err
	}
	cr.RequiredFeatures = splitList(nullable(features))
	cr.TechnicalRequirements = nullable(techReq)
	if delivery.Valid {
		t := delivery.Time
		cr.ExpectedDeliveryDate = &t
	}
	cr.AdminNotes = nullable(adminNotes)
	if quoted.Valid {
		v := quoted.Int64
		cr.QuotedPricePaise = &v
	}
	if days.Valid {
		v := int(days.Int64)
		cr.EstimatedDays = &v
	}
	cr.Attachments = splitList(nullable(attachments))
	return cr, nil
}

func collectCustomRequests(rows *sql.Rows) ([]model.CustomRequest, error) {
	defer rows.Close()
	items := []model.CustomRequest{}
	for rows.Next() {
		cr, err := scanCustomRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cr)
	}
	return items, rows.Err()
}

// Create inserts a new request in pending status and populates its ID.
func (r *CustomRequestRepo) Create(ctx context.Context, cr *model.CustomRequest) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO custom_requests (user_id, project_title, description, project_type,
required_features, technical_requirements, budget_paise, expected_delivery_date, attachments)
VALUES (?,?,?,?,?,?,?,?,?)`,
		cr.UserID, cr.ProjectTitle, cr.Description, cr.ProjectType,
		joinList(cr.RequiredFeatures), cr.TechnicalRequirements, cr.BudgetPaise,
		cr.ExpectedDeliveryDate, joinList(cr.Attachments))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cr.ID = uint64(id)
	return nil
}

// GetByID fetches a single request.
func (r *CustomRequestRepo) GetByID(ctx context.Context, id uint64) (model.CustomRequest, error) {
	return scanCustomRequest(r.DB.QueryRowContext(ctx,
		"SELECT "+customRequestColumns+" FROM custom_requests WHERE id=? LIMIT 1", id))
}

// ListAll returns every request, newest first.  Admin-only path.
func (r *CustomRequestRepo) ListAll(ctx context.Context) ([]model.CustomRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customRequestColumns+" FROM custom_requests ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collectCustomRequests(rows)
}

// ListByUser returns the requests created by one user, newest first.
func (r *CustomRequestRepo) ListByUser(ctx context.Context, userID uint64) ([]model.CustomRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customRequestColumns+" FROM custom_requests WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collectCustomRequests(rows)
}

// ListByStatus returns all requests in one lifecycle state.
func (r *CustomRequestRepo) ListByStatus(ctx context.Context, status string) ([]model.CustomRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customRequestColumns+" FROM custom_requests WHERE status=? ORDER BY created_at DESC", status)
	if err != nil {
		return nil, err
	}
	return collectCustomRequests(rows)
}

// Update rewrites the requester-editable columns.  Ownership and status are
// checked by the handler; user_id never changes.
func (r *CustomRequestRepo) Update(ctx context.Context, cr *model.CustomRequest) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE custom_requests SET project_title=?, description=?, project_type=?,
required_features=?, technical_requirements=?, budget_paise=?, expected_delivery_date=?,
attachments=? WHERE id=?`,
		cr.ProjectTitle, cr.Description, cr.ProjectType, joinList(cr.RequiredFeatures),
		cr.TechnicalRequirements, cr.BudgetPaise, cr.ExpectedDeliveryDate,
		joinList(cr.Attachments), cr.ID)
	return err
}

// UpdateStatus moves a request through its lifecycle and records the admin's
// notes, quote and estimate when provided.
func (r *CustomRequestRepo) UpdateStatus(ctx context.Context, id uint64, status string, adminNotes *string, quotedPaise *int64, estimatedDays *int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE custom_requests SET status=?,
admin_notes=COALESCE(?, admin_notes),
quoted_price_paise=COALESCE(?, quoted_price_paise),
estimated_days=COALESCE(?, estimated_days)
WHERE id=?`,
		status, adminNotes, quotedPaise, estimatedDays, id)
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

// Delete removes a request row.
func (r *CustomRequestRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM custom_requests WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RequestStats aggregates request counts for the stats endpoint.
type RequestStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// Stats counts requests overall and in the states the dashboard cares about.
func (r *CustomRequestRepo) Stats(ctx context.Context) (RequestStats, error) {
	var s RequestStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
COALESCE(SUM(status='pending'),0),
COALESCE(SUM(status='in_progress'),0),
COALESCE(SUM(status='completed'),0)
FROM custom_requests`).Scan(&s.Total, &s.Pending, &s.InProgress, &s.Completed)
	return s, err
}
