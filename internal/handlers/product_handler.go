package handlers

import (
	"parfum/internal/repositories"
	"parfum/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles the public catalog surface: product and
// category listings with offer-resolved prices.
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.HandleListProducts)
	products.Get("/:id", h.HandleGetProduct)

	router.Get("/categories", h.HandleListCategories)
}

// HandleListProducts lists catalog products, optionally filtered by
// category, brand or gender query parameters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		CategoryID: c.Query("category"),
		Brand:      c.Query("brand"),
		Gender:     c.Query("gender"),
	}
	views, err := h.productService.ListProducts(filter)
	if err != nil {
		return respondError(c, "Could not list products", err)
	}
	return c.JSON(fiber.Map{"products": views})
}

// HandleGetProduct returns one product with its current offer price.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	view, err := h.productService.GetProduct(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not get product", err)
	}
	return c.JSON(view)
}

// HandleListCategories lists all categories.
func (h *ProductHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.productService.ListCategories()
	if err != nil {
		return respondError(c, "Could not list categories", err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}
