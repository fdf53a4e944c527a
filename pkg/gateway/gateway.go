// Package gateway wraps the external payment gateway. The settlement
// layer treats it as untrusted input: amounts and capture status are
// always re-derived server-side before an order is placed.
package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Payment statuses reported by the gateway.
const (
	StatusCaptured = "captured"
	StatusFailed   = "failed"
	StatusCreated  = "created"
)

// ErrSignatureMismatch is returned when a callback signature does not
// match the HMAC computed from the key secret.
var ErrSignatureMismatch = errors.New("payment signature verification failed")

// Payment is the gateway's view of a captured (or failed) payment.
type Payment struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"` // minor currency units
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// Client is the gateway surface the settlement layer depends on.
type Client interface {
	// CreateOrder registers an intended charge and returns the gateway's
	// order id, to be passed to the client-side checkout widget.
	CreateOrder(amountMinor int64, currency string) (string, error)
	// VerifySignature checks the HMAC signature posted back after a
	// client-side payment.
	VerifySignature(gatewayOrderID, paymentID, signature string) error
	// FetchPayment retrieves a payment's amount and capture status.
	FetchPayment(paymentID string) (*Payment, error)
}

// Config holds gateway credentials and endpoint.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

// HTTPClient talks to the gateway's REST API with basic auth and
// verifies callback signatures locally with HMAC-SHA256.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a gateway client.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder registers an order with the gateway.
func (c *HTTPClient) CreateOrder(amountMinor int64, currency string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":          amountMinor,
		"currency":        currency,
		"payment_capture": 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway order creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway order creation returned status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return created.ID, nil
}

// VerifySignature recomputes HMAC-SHA256(orderID|paymentID, keySecret)
// and compares it to the submitted signature in constant time.
func (c *HTTPClient) VerifySignature(gatewayOrderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(c.cfg.KeySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// FetchPayment retrieves a payment from the gateway.
func (c *HTTPClient) FetchPayment(paymentID string) (*Payment, error) {
	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway payment fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway payment fetch returned status %d", resp.StatusCode)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode gateway payment: %w", err)
	}
	return &payment, nil
}
