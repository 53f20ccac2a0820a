package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
)

// CustomRequestHandler serves the bespoke development request endpoints.
type CustomRequestHandler struct {
	Requests *repository.CustomRequestRepo
}

func NewCustomRequestHandler(r *repository.CustomRequestRepo) *CustomRequestHandler {
	return &CustomRequestHandler{Requests: r}
}

type customRequestReq struct {
	ProjectTitle          string   `json:"project_title"`
	Description           string   `json:"description"`
	ProjectType           string   `json:"project_type"`
	RequiredFeatures      []string `json:"required_features"`
	TechnicalRequirements *string  `json:"technical_requirements"`
	BudgetPaise           *int64   `json:"budget_paise"`
	ExpectedDeliveryDate  *string  `json:"expected_delivery_date"` // YYYY-MM-DD
	Attachments           []string `json:"attachments"`
}

type requestStatusReq struct {
	Status           string  `json:"status"`
	AdminNotes       *string `json:"admin_notes"`
	QuotedPricePaise *int64  `json:"quoted_price_paise"`
	EstimatedDays    *int    `json:"estimated_days"`
}

func parseDeliveryDate(s *string) (*time.Time, string) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, ""
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*s))
	if err != nil {
		return nil, "expected_delivery_date must be YYYY-MM-DD"
	}
	return &t, ""
}

// Create submits a new request; it always starts out pending.
func (h *CustomRequestHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req customRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ProjectTitle = strings.TrimSpace(req.ProjectTitle)
	req.Description = strings.TrimSpace(req.Description)
	if req.ProjectTitle == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "project_title and description required"})
	}
	if !model.ValidCategory(req.ProjectType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown project_type"})
	}
	if req.BudgetPaise == nil || *req.BudgetPaise < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "budget must not be negative"})
	}
	due, msg := parseDeliveryDate(req.ExpectedDeliveryDate)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	cr := model.CustomRequest{
		UserID:                uid,
		ProjectTitle:          req.ProjectTitle,
		Description:           req.Description,
		ProjectType:           req.ProjectType,
		RequiredFeatures:      req.RequiredFeatures,
		TechnicalRequirements: req.TechnicalRequirements,
		BudgetPaise:           *req.BudgetPaise,
		ExpectedDeliveryDate:  due,
		Status:                model.RequestStatusPending,
		Attachments:           req.Attachments,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Requests.Create(ctx, &cr); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}
	return c.JSON(http.StatusCreated, cr)
}

// List returns requests scoped to the caller: admins see everything and may
// filter by ?status, everyone else sees only their own.
func (h *CustomRequestHandler) List(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		items []model.CustomRequest
		err   error
	)
	if isAdmin(c) {
		if status := c.QueryParam("status"); status != "" {
			if !model.ValidRequestStatus(status) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
			}
			items, err = h.Requests.ListByStatus(ctx, status)
		} else {
			items, err = h.Requests.ListAll(ctx)
		}
	} else {
		items, err = h.Requests.ListByUser(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}

// Mine lists only the caller's requests.
func (h *CustomRequestHandler) Mine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Requests.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}

// Stats returns dashboard counts.  Admin only.
func (h *CustomRequestHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Requests.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// ByStatus lists all requests in one state.  Admin only.
func (h *CustomRequestHandler) ByStatus(c echo.Context) error {
	status := c.Param("status")
	if !model.ValidRequestStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Requests.ListByStatus(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}

// Get fetches one request; only its owner or an admin may read it.
func (h *CustomRequestHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(c, cr.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
	}
	return c.JSON(http.StatusOK, cr)
}

// Update edits the request body fields.  The owner may edit only while the
// request is still pending; admins may edit at any time.  The owner binding
// and status are never touched here.
func (h *CustomRequestHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req customRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(c, cr.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
	}
	if !isAdmin(c) && cr.Status != model.RequestStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "request is already in review"})
	}

	if s := strings.TrimSpace(req.ProjectTitle); s != "" {
		cr.ProjectTitle = s
	}
	if s := strings.TrimSpace(req.Description); s != "" {
		cr.Description = s
	}
	if req.ProjectType != "" {
		if !model.ValidCategory(req.ProjectType) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown project_type"})
		}
		cr.ProjectType = req.ProjectType
	}
	if req.RequiredFeatures != nil {
		cr.RequiredFeatures = req.RequiredFeatures
	}
	if req.TechnicalRequirements != nil {
		cr.TechnicalRequirements = req.TechnicalRequirements
	}
	if req.BudgetPaise != nil {
		if *req.BudgetPaise < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "budget must not be negative"})
		}
		cr.BudgetPaise = *req.BudgetPaise
	}
	if req.ExpectedDeliveryDate != nil {
		due, msg := parseDeliveryDate(req.ExpectedDeliveryDate)
		if msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		cr.ExpectedDeliveryDate = due
	}
	if req.Attachments != nil {
		cr.Attachments = req.Attachments
	}

	if err := h.Requests.Update(ctx, &cr); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cr)
}

// UpdateStatus moves the request through its lifecycle and records the
// admin's notes, quote and estimate.  Admin only.
func (h *CustomRequestHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req requestStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidRequestStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if req.QuotedPricePaise != nil && *req.QuotedPricePaise < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quote must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Requests.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Requests.UpdateStatus(ctx, id, req.Status, req.AdminNotes, req.QuotedPricePaise, req.EstimatedDays); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	cr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cr)
}

// Delete removes a request.  Owners may only delete while it is still
// pending or cancelled; admins may delete at any point.
func (h *CustomRequestHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(c, cr.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
	}
	if !isAdmin(c) && !cr.Deletable() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "request can no longer be deleted"})
	}

	if err := h.Requests.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
