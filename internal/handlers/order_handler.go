package handlers

import (
	"parfum/internal/middleware"
	"parfum/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles the customer-facing order lifecycle: history,
// cancellation, returns and ratings.
type OrderHandler struct {
	orderService *services.OrderService
	validate     *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers order routes on an authenticated group.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orders := router.Group("/orders")
	orders.Get("/", h.HandleListOrders)
	orders.Get("/:id", h.HandleGetOrder)
	orders.Post("/:id/cancel", h.HandleCancelOrder)
	orders.Post("/:id/return", h.HandleRequestReturn)
	orders.Post("/:id/rating", h.HandleRateOrder)
}

// HandleListOrders lists the authenticated customer's orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.OrdersByCustomer(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not list orders", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetOrder returns one of the customer's orders.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not get order", err)
	}
	return c.JSON(order)
}

// CancelOrderRequest represents the request body for a cancellation.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// HandleCancelOrder cancels a processing order and refunds the wallet.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	var req CancelOrderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return respondBadBody(c, err)
	}

	refund, err := h.orderService.Cancel(c.Params("id"), middleware.UserID(c), req.Reason)
	if err != nil {
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled, refund credited to wallet",
		"refund":  refund,
	})
}

// ReturnRequestBody represents the request body for a return request.
type ReturnRequestBody struct {
	Reason            string `json:"reason" validate:"required,max=255"`
	Description       string `json:"description" validate:"omitempty,max=1000"`
	Condition         string `json:"condition" validate:"omitempty,oneof=unused opened used damaged"`
	PreferredSolution string `json:"preferred_solution" validate:"omitempty,oneof=refund replacement exchange"`
}

// HandleRequestReturn opens a return request on a delivered order.
func (h *OrderHandler) HandleRequestReturn(c *fiber.Ctx) error {
	var req ReturnRequestBody
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	request, err := h.orderService.RequestReturn(
		c.Params("id"), middleware.UserID(c),
		req.Reason, req.Description, req.Condition, req.PreferredSolution,
	)
	if err != nil {
		return respondError(c, "Could not request return", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Return requested",
		"return_request": request,
	})
}

// RateOrderRequest represents the request body for rating an order.
type RateOrderRequest struct {
	Rating int `json:"rating" validate:"gte=0,lte=5"`
}

// HandleRateOrder records a rating on a delivered order.
func (h *OrderHandler) HandleRateOrder(c *fiber.Ctx) error {
	var req RateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.orderService.RateOrder(c.Params("id"), middleware.UserID(c), req.Rating); err != nil {
		return respondError(c, "Could not rate order", err)
	}
	return c.JSON(fiber.Map{"message": "Order rated"})
}
