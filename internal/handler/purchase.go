package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
)

// PurchaseHandler serves the purchase history records.  The payment flow
// writes these automatically; the endpoints exist for manual entries and for
// the account history views.
type PurchaseHandler struct {
	Purchases *repository.PurchaseRepo
}

func NewPurchaseHandler(p *repository.PurchaseRepo) *PurchaseHandler {
	return &PurchaseHandler{Purchases: p}
}

type purchaseReq struct {
	ItemName        string  `json:"item_name"`
	ItemDescription *string `json:"item_description"`
	PricePaise      *int64  `json:"price_paise"`
	Quantity        int     `json:"quantity"`
}

var purchaseStatuses = map[string]bool{
	"pending":   true,
	"completed": true,
	"cancelled": true,
	"refunded":  true,
}

// Create records a purchase for the caller.
func (h *PurchaseHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if req.ItemName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_name required"})
	}
	if req.PricePaise == nil || *req.PricePaise < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	p := model.Purchase{
		UserID:          uid,
		ItemName:        req.ItemName,
		ItemDescription: req.ItemDescription,
		PricePaise:      *req.PricePaise,
		Quantity:        req.Quantity,
		TotalPaise:      *req.PricePaise * int64(req.Quantity),
		Status:          "pending",
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Purchases.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create purchase failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// List returns purchases scoped to the caller; admins see every record.
func (h *PurchaseHandler) List(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		items []model.Purchase
		err   error
	)
	if isAdmin(c) {
		items, err = h.Purchases.ListAll(ctx)
	} else {
		items, err = h.Purchases.ListByUser(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": items})
}

// Get fetches one purchase; only its owner or an admin may read it.
func (h *PurchaseHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Purchases.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(c, p.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your purchase"})
	}
	return c.JSON(http.StatusOK, p)
}

type purchaseStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus sets a purchase status.  Admin only.
func (h *PurchaseHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req purchaseStatusReq
	if err := c.Bind(&req); err != nil || !purchaseStatuses[req.Status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Purchases.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Purchases.UpdateStatus(ctx, id, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	p, err := h.Purchases.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, p)
}
