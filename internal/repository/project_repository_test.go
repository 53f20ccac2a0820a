package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

func projectRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "seller_id", "title", "description", "category", "price_paise", "image", "images",
		"tags", "features", "tech_stack", "demo_url", "documentation_url",
		"views", "downloads", "sales", "status", "created_at", "updated_at",
	})
}

func TestProjectFilterByCategoryAndPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepo(db)

	now := time.Now()
	min := int64(10000)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects WHERE").
		WithArgs("web", model.ProjectStatusActive, min).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM projects WHERE .+ ORDER BY created_at DESC LIMIT").
		WithArgs("web", model.ProjectStatusActive, min, 10, 0).
		WillReturnRows(projectRows().AddRow(
			2, 5, "Shop Kit", "storefront starter", "web", 49900, nil, "a.png,b.png",
			"react,go", nil, nil, nil, nil, 12, 3, 1, "active", now, now))

	items, total, err := repo.Filter(context.Background(), ProjectFilter{
		Category: "web",
		Status:   model.ProjectStatusActive,
		MinPaise: &min,
		Page:     1,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Shop Kit", items[0].Title)
	assert.Equal(t, []string{"a.png", "b.png"}, items[0].Images)
	assert.Equal(t, []string{"react", "go"}, items[0].Tags)
	require.NotNil(t, items[0].SellerID)
	assert.Equal(t, uint64(5), *items[0].SellerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectIncrementSales(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepo(db)

	mock.ExpectExec("UPDATE projects SET sales=sales\\+1").
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementSales(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepo(db)

	mock.ExpectExec("DELETE FROM projects WHERE id=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 404), ErrNotFound)
}
