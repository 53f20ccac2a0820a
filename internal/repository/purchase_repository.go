package repository

import (
	"context"
	"database/sql"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

// PurchaseRepo persists simple purchase history rows.
type PurchaseRepo struct{ DB *sql.DB }

func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{DB: db} }

const purchaseColumns = `id, user_id, item_name, item_description, price_paise, quantity,
total_paise, status, created_at, updated_at`

func scanPurchase(row rowScanner) (model.Purchase, error) {
	var (
		p    model.Purchase
		desc sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &p.ItemName, &desc, &p.PricePaise, &p.Quantity,
		&p.TotalPaise, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Purchase{}, ErrNotFound
		}
		return model.Purchase{}, err
	}
	p.ItemDescription = nullable(desc)
	return p, nil
}

// Create inserts a purchase record and populates its ID.
func (r *PurchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	if p.Status == "" {
		p.Status = "pending"
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO purchases (user_id, item_name, item_description, price_paise, quantity, total_paise, status)
VALUES (?,?,?,?,?,?,?)`,
		p.UserID, p.ItemName, p.ItemDescription, p.PricePaise, p.Quantity, p.TotalPaise, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a single purchase.
func (r *PurchaseRepo) GetByID(ctx context.Context, id uint64) (model.Purchase, error) {
	return scanPurchase(r.DB.QueryRowContext(ctx,
		"SELECT "+purchaseColumns+" FROM purchases WHERE id=? LIMIT 1", id))
}

// ListByUser returns one user's purchases, newest first.
func (r *PurchaseRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Purchase, error) {
	return r.list(ctx, "SELECT "+purchaseColumns+" FROM purchases WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListAll returns every purchase.  Admin-only path.
func (r *PurchaseRepo) ListAll(ctx context.Context) ([]model.Purchase, error) {
	return r.list(ctx, "SELECT "+purchaseColumns+" FROM purchases ORDER BY created_at DESC")
}

func (r *PurchaseRepo) list(ctx context.Context, q string, args ...any) ([]model.Purchase, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// UpdateStatus sets the free-text status of a purchase record.
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE purchases SET status=? WHERE id=?", status, id)
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
