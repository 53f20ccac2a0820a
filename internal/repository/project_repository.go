package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

// ProjectRepo provides CRUD and browse queries for the 'projects' table.
type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

const projectColumns = `id, seller_id, title, description, category, price_paise, image, images,
tags, features, tech_stack, demo_url, documentation_url, views, downloads, sales, status,
created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanProject(row rowScanner) (model.Project, error) {
	var (
		p        model.Project
		sellerID sql.NullInt64
		image    sql.NullString
		images   sql.NullString
		tags     sql.NullString
		features sql.NullString
		stack    sql.NullString
		demo     sql.NullString
		docs     sql.NullString
	)
	err := row.Scan(&p.ID, &sellerID, &p.Title, &p.Description, &p.Category, &p.PricePaise,
		&image, &images, &tags, &features, &stack, &demo, &docs,
		&p.Views, &p.Downloads, &p.Sales, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Project{}, ErrNotFound
		}
		return model.Project{}, err
	}
	if sellerID.Valid {
		id := uint64(sellerID.Int64)
		p.SellerID = &id
	}
	p.Image = nullable(image)
	p.Images = splitList(nullable(images))
	p.Tags = splitList(nullable(tags))
	p.Features = nullable(features)
	p.TechStack = nullable(stack)
	p.DemoURL = nullable(demo)
	p.DocumentationURL = nullable(docs)
	return p, nil
}

func collectProjects(rows *sql.Rows) ([]model.Project, error) {
	defer rows.Close()
	items := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Create inserts a project and populates the generated ID.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO projects (seller_id, title, description, category, price_paise, image, images,
tags, features, tech_stack, demo_url, documentation_url, status)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.SellerID, p.Title, p.Description, p.Category, p.PricePaise, p.Image,
		joinList(p.Images), joinList(p.Tags), p.Features, p.TechStack,
		p.DemoURL, p.DocumentationURL, p.Status)
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

// GetByID fetches a single project.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.Project, error) {
	return scanProject(r.DB.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id=? LIMIT 1", id))
}

// ProjectFilter captures the browse query parameters.  Nil price bounds mean
// unbounded; Status defaults to active in the handler so drafts stay hidden
// from public listings.
type ProjectFilter struct {
	Category string
	Status   string
	Search   string
	MinPaise *int64
	MaxPaise *int64
	Page     int
	Limit    int
}

// Filter returns one page of projects matching f plus the total match count.
func (r *ProjectRepo) Filter(ctx context.Context, f ProjectFilter) ([]model.Project, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Category != "" {
		where = append(where, "category=?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.MinPaise != nil {
		where = append(where, "price_paise >= ?")
		args = append(args, *f.MinPaise)
	}
	if f.MaxPaise != nil {
		where = append(where, "price_paise <= ?")
		args = append(args, *f.MaxPaise)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Page < 1 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit
	q := fmt.Sprintf("SELECT %s FROM projects WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		projectColumns, cond)
	rows, err := r.DB.QueryContext(ctx, q, append(args, f.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectProjects(rows)
	return items, total, err
}

// ListBySeller returns all projects owned by the given seller, newest first.
func (r *ProjectRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE seller_id=? ORDER BY created_at DESC", sellerID)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// Popular returns active projects ranked by sales then views.
func (r *ProjectRepo) Popular(ctx context.Context, limit int) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE status=? ORDER BY sales DESC, views DESC LIMIT ?",
		model.ProjectStatusActive, limit)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// Latest returns the most recently created active projects.
func (r *ProjectRepo) Latest(ctx context.Context, limit int) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE status=? ORDER BY created_at DESC LIMIT ?",
		model.ProjectStatusActive, limit)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// Update rewrites the mutable columns of a project.  Ownership is checked by
// the handler before this runs; seller_id is deliberately not part of the
// statement.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE projects SET title=?, description=?, category=?, price_paise=?, image=?, images=?,
tags=?, features=?, tech_stack=?, demo_url=?, documentation_url=?, status=? WHERE id=?`,
		p.Title, p.Description, p.Category, p.PricePaise, p.Image, joinList(p.Images),
		joinList(p.Tags), p.Features, p.TechStack, p.DemoURL, p.DocumentationURL, p.Status, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// id vanished between the ownership check and the update
		if _, getErr := r.GetByID(ctx, p.ID); getErr == ErrNotFound {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes a project row.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM projects WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter on read.
func (r *ProjectRepo) IncrementViews(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE projects SET views=views+1 WHERE id=?", id)
	return err
}

// IncrementDownloads bumps the download counter.
func (r *ProjectRepo) IncrementDownloads(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE projects SET downloads=downloads+1 WHERE id=?", id)
	return err
}

// IncrementSales bumps the sales counter.  Called only after a purchase
// transaction has been verified and transitioned to completed.
func (r *ProjectRepo) IncrementSales(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE projects SET sales=sales+1 WHERE id=?", id)
	return err
}
