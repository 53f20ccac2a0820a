package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/model"
	"github.com/Avinashkumar1307/project-grap/internal/payment"
	"github.com/Avinashkumar1307/project-grap/internal/queue"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
	queue_publisher "github.com/Avinashkumar1307/project-grap/internal/service"
)

// TransactionHandler serves the transaction CRUD and the gateway payment
// flow: order creation, checkout verification, the webhook and refunds.
type TransactionHandler struct {
	Txns      *repository.TransactionRepo
	Projects  *repository.ProjectRepo
	Requests  *repository.CustomRequestRepo
	Purchases *repository.PurchaseRepo
	Events    *repository.WebhookEventRepo
	Gateway   *payment.Gateway
}

func NewTransactionHandler(t *repository.TransactionRepo, p *repository.ProjectRepo,
	r *repository.CustomRequestRepo, pu *repository.PurchaseRepo,
	e *repository.WebhookEventRepo, g *payment.Gateway) *TransactionHandler {
	return &TransactionHandler{Txns: t, Projects: p, Requests: r, Purchases: pu, Events: e, Gateway: g}
}

// newReference mints the unique reference stamped on every transaction.
func newReference() string {
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// paymentMethodFrom maps the gateway's method field onto the stored enum.
func paymentMethodFrom(p map[string]interface{}) *string {
	m, _ := p["method"].(string)
	var v string
	switch m {
	case "upi":
		v = model.PaymentMethodUPI
	case "card":
		v = model.PaymentMethodCreditCard
	case "netbanking":
		v = model.PaymentMethodNetBanking
	case "wallet":
		v = model.PaymentMethodWallet
	default:
		return nil
	}
	return &v
}

func (h *TransactionHandler) publishEvent(event string, t model.Transaction, reason string) {
	_ = queue_publisher.PublishPaymentEvent(context.Background(), queue.PaymentEvent{
		Event:           event,
		TransactionID:   t.ID,
		Reference:       t.Reference,
		UserID:          t.UserID,
		ProjectID:       t.ProjectID,
		CustomRequestID: t.CustomRequestID,
		Type:            t.Type,
		AmountPaise:     t.AmountPaise,
		Currency:        t.Currency,
		Reason:          reason,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// complete drives the completed transition and its side effects.  The guarded
// update in the repository means a concurrent webhook and checkout
// verification race still produces exactly one sales increment and one
// purchase record.
func (h *TransactionHandler) complete(ctx context.Context, t model.Transaction, paymentID string, paymentObj map[string]interface{}) (model.Transaction, error) {
	var metadata *string
	if len(paymentObj) > 0 {
		if raw, err := json.Marshal(paymentObj); err == nil {
			s := string(raw)
			metadata = &s
		}
	}

	first, err := h.Txns.MarkCompleted(ctx, t.ID, paymentID, metadata)
	if err != nil {
		return t, err
	}
	if first {
		if method := paymentMethodFrom(paymentObj); method != nil {
			_ = h.Txns.SetPaymentMethod(ctx, t.ID, *method)
		}
		if t.ProjectID != nil {
			_ = h.Projects.IncrementSales(ctx, *t.ProjectID)
			if p, err := h.Projects.GetByID(ctx, *t.ProjectID); err == nil {
				_ = h.Purchases.Create(ctx, &model.Purchase{
					UserID:          t.UserID,
					ItemName:        p.Title,
					ItemDescription: &p.Description,
					PricePaise:      t.AmountPaise,
					Quantity:        1,
					TotalPaise:      t.AmountPaise,
					Status:          "completed",
				})
			}
		}
		if t.CustomRequestID != nil {
			// a paid request moves straight into progress
			_ = h.Requests.UpdateStatus(ctx, *t.CustomRequestID,
				model.RequestStatusInProgress, nil, nil, nil)
		}
		if fresh, err := h.Txns.GetByID(ctx, t.ID); err == nil {
			t = fresh
		}
		h.publishEvent(queue.EventPaymentCompleted, t, "")
	}
	return t, nil
}

// ----- gateway flow -----

type createOrderReq struct {
	ProjectID       *uint64 `json:"project_id"`
	CustomRequestID *uint64 `json:"custom_request_id"`
	Currency        string  `json:"currency"`
}

// CreateOrder opens a gateway order for a project purchase or a quoted
// custom request payment and records the matching pending transaction.
func (h *TransactionHandler) CreateOrder(c echo.Context) error {
	if h.Gateway == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "payments not configured"})
	}
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if (req.ProjectID == nil) == (req.CustomRequestID == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of project_id or custom_request_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t := model.Transaction{
		UserID:    uid,
		Currency:  req.Currency,
		Reference: newReference(),
	}
	if t.Currency == "" {
		t.Currency = "INR"
	}

	var description string
	switch {
	case req.ProjectID != nil:
		p, err := h.Projects.GetByID(ctx, *req.ProjectID)
		if err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if p.Status != model.ProjectStatusActive {
			return c.JSON(http.StatusConflict, echo.Map{"error": "project is not for sale"})
		}
		if p.SellerID != nil && *p.SellerID == uid {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot buy your own project"})
		}
		t.ProjectID = req.ProjectID
		t.Type = model.TxnTypeProjectPurchase
		t.AmountPaise = p.PricePaise
		description = "Purchase of " + p.Title
	default:
		cr, err := h.Requests.GetByID(ctx, *req.CustomRequestID)
		if err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if cr.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
		}
		if cr.Status != model.RequestStatusAccepted || cr.QuotedPricePaise == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request has not been quoted yet"})
		}
		t.CustomRequestID = req.CustomRequestID
		t.Type = model.TxnTypeCustomRequestPayment
		t.AmountPaise = *cr.QuotedPricePaise
		description = "Payment for custom request: " + cr.ProjectTitle
	}
	if t.AmountPaise <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	t.Description = &description

	if err := h.Txns.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create transaction failed"})
	}

	order, err := h.Gateway.CreateOrder(t.AmountPaise, t.Currency, t.Reference, map[string]interface{}{
		"reference":      t.Reference,
		"transaction_id": t.ID,
	})
	if err != nil {
		reason := "gateway order creation failed"
		_ = h.Txns.UpdateStatus(ctx, t.ID, model.TxnStatusFailed, &reason)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "gateway order failed"})
	}
	if err := h.Txns.SetGatewayOrder(ctx, t.ID, order.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save order failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"key_id":         h.Gateway.KeyID(),
		"order_id":       order.ID,
		"amount_paise":   order.AmountPaise,
		"currency":       order.Currency,
		"reference":      t.Reference,
		"transaction_id": t.ID,
	})
}

type verifyReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify checks the checkout signature returned by the browser and, when it
// holds, completes the transaction.
func (h *TransactionHandler) Verify(c echo.Context) error {
	if h.Gateway == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "payments not configured"})
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order, payment and signature required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Txns.GetByGatewayOrderID(ctx, req.OrderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if uid, ok := getUserID(c); !ok || (t.UserID != uid && !isAdmin(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your transaction"})
	}

	if !h.Gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		reason := "signature mismatch"
		_ = h.Txns.UpdateStatus(ctx, t.ID, model.TxnStatusFailed, &reason)
		t.Status = model.TxnStatusFailed
		h.publishEvent(queue.EventPaymentFailed, t, reason)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment signature"})
	}

	// The payment object enriches the record but is not required for the
	// transition; the signature already proves the capture.
	paymentObj, _ := h.Gateway.FetchPayment(req.PaymentID)

	t, err = h.complete(ctx, t, req.PaymentID, paymentObj)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "complete transaction failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "verified", "transaction": t})
}

// webhookEnvelope is the subset of the gateway webhook body the handler
// reads.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity map[string]interface{} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook receives gateway event deliveries.  The signature is verified
// against the raw body, the event is persisted for idempotency, and captures
// or failures are applied to the matching transaction.  Redeliveries are
// acknowledged without reprocessing.
func (h *TransactionHandler) Webhook(c echo.Context) error {
	if h.Gateway == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "payments not configured"})
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "read body failed"})
	}
	sig := c.Request().Header.Get("X-Razorpay-Signature")
	if !h.Gateway.VerifyWebhookSignature(body, sig) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid webhook signature"})
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Event == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	entity := env.Payload.Payment.Entity
	paymentID, _ := entity["id"].(string)
	orderID, _ := entity["order_id"].(string)

	eventID := c.Request().Header.Get("X-Razorpay-Event-Id")
	if eventID == "" {
		eventID = env.Event + ":" + orderID + ":" + paymentID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fresh, err := h.Events.Insert(ctx, eventID, env.Event, string(body))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record event failed"})
	}
	if !fresh {
		return c.JSON(http.StatusOK, echo.Map{"status": "duplicate"})
	}

	switch env.Event {
	case "payment.captured":
		if orderID == "" {
			break
		}
		t, err := h.Txns.GetByGatewayOrderID(ctx, orderID)
		if err != nil {
			break // order not ours; event stays recorded
		}
		if _, err := h.complete(ctx, t, paymentID, entity); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "complete transaction failed"})
		}
	case "payment.failed":
		if orderID == "" {
			break
		}
		t, err := h.Txns.GetByGatewayOrderID(ctx, orderID)
		if err != nil {
			break
		}
		if t.Status == model.TxnStatusPending || t.Status == model.TxnStatusProcessing {
			reason, _ := entity["error_description"].(string)
			if reason == "" {
				reason = "payment failed"
			}
			_ = h.Txns.UpdateStatus(ctx, t.ID, model.TxnStatusFailed, &reason)
			t.Status = model.TxnStatusFailed
			h.publishEvent(queue.EventPaymentFailed, t, reason)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Refund refunds a completed transaction at the gateway and marks it
// refunded locally.  Admin only.
func (h *TransactionHandler) Refund(c echo.Context) error {
	if h.Gateway == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "payments not configured"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Txns.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t.Status != model.TxnStatusCompleted || t.GatewayPaymentID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only completed transactions can be refunded"})
	}

	refund, err := h.Gateway.CreateRefund(*t.GatewayPaymentID, t.AmountPaise)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "gateway refund failed"})
	}
	if err := h.Txns.MarkRefunded(ctx, t.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	t.Status = model.TxnStatusRefunded
	h.publishEvent(queue.EventPaymentRefunded, t, "")
	return c.JSON(http.StatusOK, echo.Map{"status": "refunded", "refund": refund, "transaction": t})
}

// ----- record CRUD -----

type transactionReq struct {
	UserID          uint64  `json:"user_id"`
	ProjectID       *uint64 `json:"project_id"`
	CustomRequestID *uint64 `json:"custom_request_id"`
	Type            string  `json:"type"`
	AmountPaise     int64   `json:"amount_paise"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	Description     *string `json:"description"`
}

type txnStatusReq struct {
	Status        string  `json:"status"`
	FailureReason *string `json:"failure_reason"`
}

// Create records a transaction directly, outside the gateway flow.  Admin
// only; used for manual corrections.
func (h *TransactionHandler) Create(c echo.Context) error {
	var req transactionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || !model.ValidTxnType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and valid type required"})
	}
	if req.AmountPaise <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	if req.Status != "" && !model.ValidTxnStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	t := model.Transaction{
		UserID:          req.UserID,
		ProjectID:       req.ProjectID,
		CustomRequestID: req.CustomRequestID,
		Type:            req.Type,
		AmountPaise:     req.AmountPaise,
		Currency:        req.Currency,
		Status:          req.Status,
		Reference:       newReference(),
		Description:     req.Description,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Txns.Create(ctx, &t); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate reference"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create transaction failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns all transactions, optionally filtered by ?status.  Admin only.
func (h *TransactionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		items []model.Transaction
		err   error
	)
	if status := c.QueryParam("status"); status != "" {
		if !model.ValidTxnStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		items, err = h.Txns.ListByStatus(ctx, status)
	} else {
		items, err = h.Txns.ListAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": items})
}

// Mine lists the caller's transactions.
func (h *TransactionHandler) Mine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Txns.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": items})
}

// History lists the caller's transactions inside an optional ?start/?end
// date window (YYYY-MM-DD, end exclusive of the following day).
func (h *TransactionHandler) History(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var start, end *time.Time
	if v := c.QueryParam("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be YYYY-MM-DD"})
		}
		start = &t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be YYYY-MM-DD"})
		}
		t = t.AddDate(0, 0, 1) // include the whole end day
		end = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Txns.History(ctx, uid, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": items})
}

// Stats aggregates counts and the completed amount.  Admins get the global
// view; everyone else gets their own numbers.
func (h *TransactionHandler) Stats(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var scope *uint64
	if !isAdmin(c) {
		scope = &uid
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Txns.Stats(ctx, scope)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// ByProject lists all transactions against one project.  Admin only.
func (h *TransactionHandler) ByProject(c echo.Context) error {
	id, err := parseID(c, "projectId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Txns.ListByProject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": items})
}

// Get fetches one transaction; only its owner or an admin may read it.
func (h *TransactionHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Txns.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(c, t.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your transaction"})
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateStatus sets a transaction status directly.  Admin only; the gateway
// flow normally owns these transitions.
func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req txnStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidTxnStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Txns.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Txns.UpdateStatus(ctx, id, req.Status, req.FailureReason); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	t, err := h.Txns.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, t)
}
