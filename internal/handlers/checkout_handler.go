package handlers

import (
	"time"

	"parfum/internal/middleware"
	"parfum/internal/models"
	"parfum/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles quoting, gateway initiation and order
// placement.
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	validate        *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers checkout routes on an authenticated group.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkout := router.Group("/checkout")
	checkout.Get("/quote", h.HandleQuote)
	checkout.Post("/payment", h.HandleInitiatePayment)
	checkout.Post("/place", h.HandlePlaceOrder)
	checkout.Post("/verify", h.HandleVerifyPayment)
}

// HandleQuote prices the current cart, with an optional coupon code
// query parameter. A coupon failure reports why without blocking the
// quote-less path.
func (h *CheckoutHandler) HandleQuote(c *fiber.Ctx) error {
	breakdown, lines, err := h.checkoutService.Quote(middleware.UserID(c), c.Query("coupon"), time.Now())
	if err != nil {
		return respondError(c, "Could not quote cart", err)
	}
	return c.JSON(fiber.Map{
		"items":     lines,
		"breakdown": breakdown,
	})
}

// InitiatePaymentRequest represents the request body for starting a
// gateway payment.
type InitiatePaymentRequest struct {
	CouponCode string `json:"coupon_code" validate:"omitempty,min=3,max=50"`
}

// HandleInitiatePayment registers the server-computed amount with the
// gateway and returns what the payment widget needs.
func (h *CheckoutHandler) HandleInitiatePayment(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	checkout, err := h.checkoutService.InitiateGatewayPayment(middleware.UserID(c), req.CouponCode)
	if err != nil {
		return respondError(c, "Could not initiate payment", err)
	}
	return c.JSON(checkout)
}

// PlaceOrderRequest represents the request body for placing a cash on
// delivery or wallet order.
type PlaceOrderRequest struct {
	Address       string `json:"address" validate:"required,min=10,max=500"`
	Phone         string `json:"phone" validate:"required,min=10,max=15"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cod wallet"`
	CouponCode    string `json:"coupon_code" validate:"omitempty,min=3,max=50"`
}

// HandlePlaceOrder places an order paid by cash on delivery or wallet.
// Gateway orders go through HandleVerifyPayment instead.
func (h *CheckoutHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	group, err := h.checkoutService.PlaceOrder(services.PlaceOrderInput{
		CustomerID:    middleware.UserID(c),
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		return respondError(c, "Could not place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed",
		"order":   group,
	})
}

// VerifyPaymentRequest represents the gateway callback payload.
type VerifyPaymentRequest struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	PaymentID      string `json:"payment_id" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
	Address        string `json:"address" validate:"required,min=10,max=500"`
	Phone          string `json:"phone" validate:"required,min=10,max=15"`
	CouponCode     string `json:"coupon_code" validate:"omitempty,min=3,max=50"`
}

// HandleVerifyPayment settles a gateway payment and places the order.
func (h *CheckoutHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	group, err := h.checkoutService.VerifyAndPlace(services.PlaceOrderInput{
		CustomerID:     middleware.UserID(c),
		Address:        req.Address,
		Phone:          req.Phone,
		CouponCode:     req.CouponCode,
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		return respondError(c, "Payment verification failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment verified, order placed",
		"order":   group,
	})
}
