package services

import (
	"errors"
	"fmt"

	"parfum/internal/models"
)

// Sentinel errors surfaced to the request boundary.
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrCartEmpty              = errors.New("cart is empty")
	ErrCouponNotFound         = errors.New("invalid coupon code")
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrReturnAlreadyRequested = errors.New("return already requested for this order")
)

// InsufficientStockError reports an order line asking for more units than
// the product has.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// InsufficientBalanceError reports a wallet that cannot cover a charge.
type InsufficientBalanceError struct {
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance (required: %d, available: %d)",
		e.Required, e.Available)
}

// PaymentMethodNotAllowedError reports a payment method rejected for this
// order (e.g. cash on delivery above the threshold).
type PaymentMethodNotAllowedError struct {
	Reason string
}

func (e *PaymentMethodNotAllowedError) Error() string {
	return "payment method not allowed: " + e.Reason
}

// AmountMismatchError reports a client-submitted total that differs from
// the server-side recomputation.
type AmountMismatchError struct {
	Expected  int64
	Submitted int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch (expected: %d, submitted: %d)", e.Expected, e.Submitted)
}

// Coupon rejection reasons, in the order they are checked.
const (
	CouponInactive      = "coupon is not active"
	CouponNotStarted    = "coupon period has not started yet"
	CouponExpired       = "coupon has expired"
	CouponUsageExceeded = "coupon usage limit exceeded"
	CouponBelowMinimum  = "minimum purchase amount not reached"
)

// CouponInvalidError reports the first failing coupon eligibility check.
type CouponInvalidError struct {
	Code   string
	Reason string
}

func (e *CouponInvalidError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

// InvalidTransitionError reports an illegal order status transition.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %s to %s", e.From, e.To)
}

// ReturnWindowExpiredError reports a return request made after the
// configured window closed.
type ReturnWindowExpiredError struct {
	WindowDays int
}

func (e *ReturnWindowExpiredError) Error() string {
	return fmt.Sprintf("return window of %d days has expired", e.WindowDays)
}
