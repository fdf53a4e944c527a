package handlers

import (
	"errors"
	"fmt"
	"log"

	"parfum/internal/repositories"
	"parfum/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto its HTTP status and renders the
// standard error envelope. Unknown errors become 500s with the detail
// logged rather than leaked.
func respondError(c *fiber.Ctx, message string, err error) error {
	var (
		stockErr      *services.InsufficientStockError
		balanceErr    *services.InsufficientBalanceError
		methodErr     *services.PaymentMethodNotAllowedError
		amountErr     *services.AmountMismatchError
		couponErr     *services.CouponInvalidError
		transitionErr *services.InvalidTransitionError
		windowErr     *services.ReturnWindowExpiredError
	)

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &stockErr), errors.As(err, &transitionErr),
		errors.Is(err, services.ErrReturnAlreadyRequested):
		status = fiber.StatusConflict
	case errors.As(err, &balanceErr):
		status = fiber.StatusPaymentRequired
	case errors.As(err, &methodErr), errors.As(err, &amountErr),
		errors.As(err, &couponErr), errors.As(err, &windowErr),
		errors.Is(err, services.ErrCartEmpty):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
		return c.Status(status).JSON(fiber.Map{
			"message": message,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// respondValidationError renders validator failures as a field -> reason
// map.
func respondValidationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// respondBadBody renders a body-parse failure.
func respondBadBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
