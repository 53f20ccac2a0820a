package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
	"github.com/Avinashkumar1307/project-grap/internal/storage"
)

// ProjectHandler serves the marketplace listing endpoints.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
	Store    *storage.Store
}

func NewProjectHandler(p *repository.ProjectRepo, s *storage.Store) *ProjectHandler {
	return &ProjectHandler{Projects: p, Store: s}
}

type projectReq struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	PricePaise       *int64   `json:"price_paise"`
	Image            *string  `json:"image"`
	Images           []string `json:"images"`
	Tags             []string `json:"tags"`
	Features         *string  `json:"features"`
	TechStack        *string  `json:"tech_stack"`
	DemoURL          *string  `json:"demo_url"`
	DocumentationURL *string  `json:"documentation_url"`
	Status           string   `json:"status"`
}

func (req *projectReq) validate(requireAll bool) (string, bool) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if requireAll {
		if req.Title == "" || req.Description == "" {
			return "title and description required", false
		}
		if req.Category == "" {
			return "category required", false
		}
		if req.PricePaise == nil {
			return "price_paise required", false
		}
	}
	if req.Category != "" && !model.ValidCategory(req.Category) {
		return "unknown category", false
	}
	if req.PricePaise != nil && *req.PricePaise < 0 {
		return "price must not be negative", false
	}
	if req.Status != "" && !model.ValidProjectStatus(req.Status) {
		return "unknown status", false
	}
	return "", true
}

// List returns one page of projects matching the query filters.  Public
// callers only see active listings unless they ask for a status explicitly.
func (h *ProjectHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	f := repository.ProjectFilter{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     page,
		Limit:    limit,
	}
	if f.Status == "" {
		f.Status = model.ProjectStatusActive
	}
	if v := c.QueryParam("min_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			f.MinPaise = &n
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			f.MaxPaise = &n
		}
	}
	if f.Category != "" && !model.ValidCategory(f.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	if !model.ValidProjectStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, total, err := h.Projects.Filter(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := (total + limit - 1) / limit
	return c.JSON(http.StatusOK, echo.Map{
		"projects":    items,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages,
	})
}

// Popular returns the best selling active projects.
func (h *ProjectHandler) Popular(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Projects.Popular(ctx, limitParam(c, 10, 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": items})
}

// Latest returns the newest active projects.
func (h *ProjectHandler) Latest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Projects.Latest(ctx, limitParam(c, 10, 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": items})
}

// Mine lists the caller's own projects regardless of status.
func (h *ProjectHandler) Mine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Projects.ListBySeller(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": items})
}

// Get fetches one project and bumps its view counter.
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// View tracking is best effort; a failed bump never blocks the read.
	if err := h.Projects.IncrementViews(ctx, id); err == nil {
		p.Views++
	}
	return c.JSON(http.StatusOK, p)
}

// Create lists a new project for sale by the caller.
func (h *ProjectHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(true); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	status := req.Status
	if status == "" {
		status = model.ProjectStatusActive
	}

	p := model.Project{
		SellerID:         &uid,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		PricePaise:       *req.PricePaise,
		Image:            req.Image,
		Images:           req.Images,
		Tags:             req.Tags,
		Features:         req.Features,
		TechStack:        req.TechStack,
		DemoURL:          req.DemoURL,
		DocumentationURL: req.DocumentationURL,
		Status:           status,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Projects.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create project failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update edits a project.  Only the selling user or an admin may modify it;
// the seller binding itself never changes.
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(false); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.SellerID == nil || !canModify(c, *p.SellerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your project"})
	}

	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.PricePaise != nil {
		p.PricePaise = *req.PricePaise
	}
	if req.Image != nil {
		p.Image = req.Image
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.Features != nil {
		p.Features = req.Features
	}
	if req.TechStack != nil {
		p.TechStack = req.TechStack
	}
	if req.DemoURL != nil {
		p.DemoURL = req.DemoURL
	}
	if req.DocumentationURL != nil {
		p.DocumentationURL = req.DocumentationURL
	}
	if req.Status != "" {
		p.Status = req.Status
	}

	if err := h.Projects.Update(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a project and its uploaded images.
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.SellerID == nil || !canModify(c, *p.SellerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your project"})
	}

	if err := h.Projects.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	// Orphaned objects are cleaned up best effort after the row is gone.
	if h.Store != nil {
		if p.Image != nil {
			_ = h.Store.Delete(ctx, *p.Image)
		}
		for _, u := range p.Images {
			_ = h.Store.Delete(ctx, u)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Download bumps the download counter and returns the artifact links.
func (h *ProjectHandler) Download(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Projects.IncrementDownloads(ctx, id); err == nil {
		p.Downloads++
	}
	return c.JSON(http.StatusOK, echo.Map{
		"project_id":        p.ID,
		"downloads":         p.Downloads,
		"demo_url":          p.DemoURL,
		"documentation_url": p.DocumentationURL,
	})
}
