// Package payment wraps the Razorpay gateway.  The adapter keeps the rest of
// the application ignorant of the SDK's map-based responses and owns the two
// HMAC checks: the checkout payment signature and the webhook signature.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway is a thin client around the hosted payment API.  Amounts cross
// this boundary in paise, the gateway's own minor currency unit, so no
// conversion happens here.
type Gateway struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

// NewGateway builds a Gateway from API credentials.  The key secret doubles
// as the HMAC key for payment signature verification; the webhook secret is
// a separate value configured on the Razorpay dashboard.
func NewGateway(keyID, keySecret, webhookSecret string) *Gateway {
	return &Gateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// KeyID returns the public API key id, which the browser checkout needs.
func (g *Gateway) KeyID() string { return g.keyID }

// Order is the subset of a gateway order the application stores or returns
// to the checkout client.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
}

// CreateOrder opens a remote order for the given amount.  Notes are attached
// verbatim and come back on webhooks, which is how events are tied back to
// local records when the order id alone is not enough.
func (g *Gateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (Order, error) {
	if currency == "" {
		currency = "INR"
	}
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return orderFromBody(body), nil
}

// FetchOrder retrieves a previously created order.
func (g *Gateway) FetchOrder(orderID string) (map[string]interface{}, error) {
	body, err := g.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	return body, nil
}

// FetchPayment retrieves the raw payment object; stored as transaction
// metadata after verification.
func (g *Gateway) FetchPayment(paymentID string) (map[string]interface{}, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch payment: %w", err)
	}
	return body, nil
}

// CapturePayment captures an authorized payment for the given amount.
func (g *Gateway) CapturePayment(paymentID string, amountPaise int64, currency string) (map[string]interface{}, error) {
	if currency == "" {
		currency = "INR"
	}
	body, err := g.client.Payment.Capture(paymentID, int(amountPaise), map[string]interface{}{"currency": currency}, nil)
	if err != nil {
		return nil, fmt.Errorf("capture payment: %w", err)
	}
	return body, nil
}

// CreateRefund refunds a captured payment.  A zero amount refunds the full
// payment.
func (g *Gateway) CreateRefund(paymentID string, amountPaise int64) (map[string]interface{}, error) {
	body, err := g.client.Payment.Refund(paymentID, int(amountPaise), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return body, nil
}

// FetchRefund retrieves a refund object.
func (g *Gateway) FetchRefund(refundID string) (map[string]interface{}, error) {
	body, err := g.client.Refund.Fetch(refundID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch refund: %w", err)
	}
	return body, nil
}

// VerifyPaymentSignature checks that signature is the hex HMAC-SHA256 of
// "orderID|paymentID" keyed with the API secret.  A forged confirmation from
// the browser fails here; only the gateway knows the secret.
func (g *Gateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(g.keySecret, []byte(orderID+"|"+paymentID), signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw request body using the webhook secret.
func (g *Gateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(g.webhookSecret, body, signature)
}

func verifyHMAC(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	// hmac.Equal for a constant-time comparison of the hex strings
	return hmac.Equal([]byte(expected), []byte(signature))
}

func orderFromBody(body map[string]interface{}) Order {
	o := Order{}
	if v, ok := body["id"].(string); ok {
		o.ID = v
	}
	switch v := body["amount"].(type) {
	case float64:
		o.AmountPaise = int64(v)
	case int64:
		o.AmountPaise = v
	case int:
		o.AmountPaise = int64(v)
	}
	if v, ok := body["currency"].(string); ok {
		o.Currency = v
	}
	if v, ok := body["receipt"].(string); ok {
		o.Receipt = v
	}
	return o
}
