package handlers

import (
	"parfum/internal/middleware"
	"parfum/internal/models"
	"parfum/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WalletHandler handles the customer wallet surface: balance, ledger and
// top-ups.
type WalletHandler struct {
	walletService *services.WalletService
	validate      *validator.Validate
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers wallet routes on an authenticated group.
func (h *WalletHandler) RegisterRoutes(router fiber.Router) {
	wallet := router.Group("/wallet")
	wallet.Get("/", h.HandleGetWallet)
	wallet.Get("/transactions", h.HandleListTransactions)
	wallet.Post("/topup", h.HandleTopUp)
	wallet.Post("/withdraw", h.HandleWithdraw)
}

// HandleGetWallet returns the wallet balance.
func (h *WalletHandler) HandleGetWallet(c *fiber.Ctx) error {
	balance, err := h.walletService.Balance(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not load wallet", err)
	}
	return c.JSON(fiber.Map{"balance": balance})
}

// HandleListTransactions returns the wallet ledger, newest first.
func (h *WalletHandler) HandleListTransactions(c *fiber.Ctx) error {
	transactions, err := h.walletService.Transactions(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not load wallet transactions", err)
	}
	return c.JSON(fiber.Map{"transactions": transactions})
}

// TopUpRequest represents the request body for a wallet top-up.
type TopUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// HandleTopUp credits the wallet with store funds.
func (h *WalletHandler) HandleTopUp(c *fiber.Ctx) error {
	var req TopUpRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	txn, err := h.walletService.Deposit(middleware.UserID(c), req.Amount, models.TxnPrefixTopUp, "")
	if err != nil {
		return respondError(c, "Could not top up wallet", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Wallet topped up",
		"transaction": txn,
	})
}

// WithdrawRequest represents the request body for a wallet withdrawal.
type WithdrawRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// HandleWithdraw debits the wallet back to the customer.
func (h *WalletHandler) HandleWithdraw(c *fiber.Ctx) error {
	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	txn, err := h.walletService.Withdraw(middleware.UserID(c), req.Amount, models.TxnPrefixWithdraw, "")
	if err != nil {
		return respondError(c, "Could not withdraw from wallet", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Withdrawal completed",
		"transaction": txn,
	})
}
