package handlers

import (
	"parfum/internal/middleware"
	"parfum/internal/models"
	"parfum/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles the authenticated cart and wishlist surface.
type CartHandler struct {
	cartService     *services.CartService
	wishlistService *services.WishlistService
	validate        *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService, wishlistService *services.WishlistService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		wishlistService: wishlistService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers cart and wishlist routes on an authenticated
// group.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Post("/items", h.HandleAddItem)
	cart.Put("/items/:productId", h.HandleUpdateQuantity)
	cart.Delete("/items/:productId", h.HandleRemoveItem)
	cart.Delete("/", h.HandleClearCart)
	cart.Post("/merge", h.HandleMerge)

	wishlist := router.Group("/wishlist")
	wishlist.Get("/", h.HandleGetWishlist)
	wishlist.Post("/items", h.HandleAddWishlistItem)
	wishlist.Delete("/items/:productId", h.HandleRemoveWishlistItem)
}

// HandleGetCart returns the cart lines with resolved prices and the
// amount breakdown.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	breakdown, lines, err := h.cartService.PricedCart(userID)
	if err != nil {
		return respondError(c, "Could not load cart", err)
	}
	return c.JSON(fiber.Map{
		"items":     lines,
		"breakdown": breakdown,
	})
}

// AddItemRequest represents the request body for adding a cart line.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cartService.Add(middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, "Could not add to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Added to cart",
		"item":    item,
	})
}

// UpdateQuantityRequest represents the request body for a quantity change.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// HandleUpdateQuantity sets a cart line's quantity.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	item, err := h.cartService.UpdateQuantity(middleware.UserID(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return respondError(c, "Could not update cart", err)
	}
	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"item":    item,
	})
}

// HandleRemoveItem removes one product from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.cartService.Remove(middleware.UserID(c), c.Params("productId")); err != nil {
		return respondError(c, "Could not remove from cart", err)
	}
	return c.JSON(fiber.Map{"message": "Removed from cart"})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.cartService.Clear(middleware.UserID(c)); err != nil {
		return respondError(c, "Could not clear cart", err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// MergeRequest carries a guest cart to fold into the user's cart on
// login.
type MergeRequest struct {
	Items []struct {
		ProductID string `json:"product_id" validate:"required,uuid"`
		Quantity  int    `json:"quantity" validate:"gte=1"`
	} `json:"items" validate:"required,dive"`
}

// HandleMerge folds a guest cart into the authenticated cart.
func (h *CartHandler) HandleMerge(c *fiber.Ctx) error {
	var req MergeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	guestItems := make([]models.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		guestItems = append(guestItems, models.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if err := h.cartService.Merge(middleware.UserID(c), guestItems); err != nil {
		return respondError(c, "Could not merge cart", err)
	}

	breakdown, lines, err := h.cartService.PricedCart(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not load cart", err)
	}
	return c.JSON(fiber.Map{
		"message":   "Cart merged",
		"items":     lines,
		"breakdown": breakdown,
	})
}

// HandleGetWishlist returns the wishlist.
func (h *CartHandler) HandleGetWishlist(c *fiber.Ctx) error {
	items, err := h.wishlistService.Items(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not load wishlist", err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// WishlistItemRequest represents the request body for a wishlist add.
type WishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// HandleAddWishlistItem saves a product to the wishlist.
func (h *CartHandler) HandleAddWishlistItem(c *fiber.Ctx) error {
	var req WishlistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	item, err := h.wishlistService.Add(middleware.UserID(c), req.ProductID)
	if err != nil {
		return respondError(c, "Could not add to wishlist", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Added to wishlist",
		"item":    item,
	})
}

// HandleRemoveWishlistItem removes a product from the wishlist.
func (h *CartHandler) HandleRemoveWishlistItem(c *fiber.Ctx) error {
	if err := h.wishlistService.Remove(middleware.UserID(c), c.Params("productId")); err != nil {
		return respondError(c, "Could not remove from wishlist", err)
	}
	return c.JSON(fiber.Map{"message": "Removed from wishlist"})
}
