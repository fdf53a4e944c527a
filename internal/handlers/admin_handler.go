package handlers

import (
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler is the back office: catalog, coupon and offer management,
// the order board, the returns queue and sales reports.
type AdminHandler struct {
	productService *services.ProductService
	orderService   *services.OrderService
	reportService  *services.ReportService
	couponRepo     repositories.CouponRepository
	offerRepo      repositories.OfferRepository
	validate       *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	productService *services.ProductService,
	orderService *services.OrderService,
	reportService *services.ReportService,
	couponRepo repositories.CouponRepository,
	offerRepo repositories.OfferRepository,
) *AdminHandler {
	return &AdminHandler{
		productService: productService,
		orderService:   orderService,
		reportService:  reportService,
		couponRepo:     couponRepo,
		offerRepo:      offerRepo,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the back office routes on an admin-gated
// group.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Post("/", h.HandleCreateProduct)
	products.Put("/:id", h.HandleUpdateProduct)
	products.Delete("/:id", h.HandleDeleteProduct)

	categories := router.Group("/categories")
	categories.Post("/", h.HandleCreateCategory)
	categories.Delete("/:id", h.HandleDeleteCategory)

	coupons := router.Group("/coupons")
	coupons.Get("/", h.HandleListCoupons)
	coupons.Post("/", h.HandleCreateCoupon)
	coupons.Put("/:id", h.HandleUpdateCoupon)
	coupons.Delete("/:id", h.HandleDeleteCoupon)

	offers := router.Group("/offers")
	offers.Get("/products", h.HandleListProductOffers)
	offers.Post("/products", h.HandleCreateProductOffer)
	offers.Delete("/products/:id", h.HandleDeleteProductOffer)
	offers.Get("/categories", h.HandleListCategoryOffers)
	offers.Post("/categories", h.HandleCreateCategoryOffer)
	offers.Delete("/categories/:id", h.HandleDeleteCategoryOffer)
	offers.Get("/referrals", h.HandleListReferralOffers)
	offers.Post("/referrals", h.HandleCreateReferralOffer)
	offers.Delete("/referrals/:id", h.HandleDeleteReferralOffer)

	orders := router.Group("/orders")
	orders.Get("/", h.HandleListAllOrders)
	orders.Put("/:id/status", h.HandleUpdateOrderStatus)
	orders.Post("/:id/cancel", h.HandleAdminCancelOrder)

	returns := router.Group("/returns")
	returns.Get("/", h.HandleListReturns)
	returns.Post("/:id/resolve", h.HandleResolveReturn)

	router.Get("/reports/sales", h.HandleSalesReport)
}

// HandleCreateProduct creates a catalog product.
func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(product); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.productService.CreateProduct(&product); err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates a catalog product.
func (h *AdminHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return respondBadBody(c, err)
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.productService.UpdateProduct(&product); err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a catalog product.
func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.productService.DeleteProduct(c.Params("id")); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// HandleCreateCategory creates a category.
func (h *AdminHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(category); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.productService.CreateCategory(&category); err != nil {
		return respondError(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleDeleteCategory deletes a category.
func (h *AdminHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.productService.DeleteCategory(c.Params("id")); err != nil {
		return respondError(c, "Could not delete category", err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// HandleListCoupons lists every coupon with its usage counts.
func (h *AdminHandler) HandleListCoupons(c *fiber.Ctx) error {
	coupons, err := h.couponRepo.GetAll()
	if err != nil {
		return respondError(c, "Could not list coupons", err)
	}
	return c.JSON(fiber.Map{"coupons": coupons})
}

// HandleCreateCoupon creates a coupon.
func (h *AdminHandler) HandleCreateCoupon(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return respondBadBody(c, err)
	}
	coupon.TimesUsed = 0
	if err := h.validate.Struct(coupon); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.couponRepo.Create(&coupon); err != nil {
		return respondError(c, "Could not create coupon", err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandleUpdateCoupon updates a coupon's terms. The usage counter is not
// editable through this endpoint.
func (h *AdminHandler) HandleUpdateCoupon(c *fiber.Ctx) error {
	existing, err := h.couponRepo.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not get coupon", err)
	}

	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return respondBadBody(c, err)
	}
	coupon.ID = existing.ID
	coupon.TimesUsed = existing.TimesUsed
	if err := h.validate.Struct(coupon); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.couponRepo.Update(&coupon); err != nil {
		return respondError(c, "Could not update coupon", err)
	}
	return c.JSON(coupon)
}

// HandleDeleteCoupon deletes a coupon.
func (h *AdminHandler) HandleDeleteCoupon(c *fiber.Ctx) error {
	if err := h.couponRepo.Delete(c.Params("id")); err != nil {
		return respondError(c, "Could not delete coupon", err)
	}
	return c.JSON(fiber.Map{"message": "Coupon deleted"})
}

// HandleListProductOffers lists product offers.
func (h *AdminHandler) HandleListProductOffers(c *fiber.Ctx) error {
	offers, err := h.offerRepo.ListProductOffers()
	if err != nil {
		return respondError(c, "Could not list product offers", err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

// HandleCreateProductOffer creates a product offer.
func (h *AdminHandler) HandleCreateProductOffer(c *fiber.Ctx) error {
	var offer models.ProductOffer
	if err := c.BodyParser(&offer); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(offer); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.offerRepo.CreateProductOffer(&offer); err != nil {
		return respondError(c, "Could not create product offer", err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// HandleDeleteProductOffer deletes a product offer.
func (h *AdminHandler) HandleDeleteProductOffer(c *fiber.Ctx) error {
	if err := h.offerRepo.DeleteProductOffer(c.Params("id")); err != nil {
		return respondError(c, "Could not delete product offer", err)
	}
	return c.JSON(fiber.Map{"message": "Product offer deleted"})
}

// HandleListCategoryOffers lists category offers.
func (h *AdminHandler) HandleListCategoryOffers(c *fiber.Ctx) error {
	offers, err := h.offerRepo.ListCategoryOffers()
	if err != nil {
		return respondError(c, "Could not list category offers", err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

// HandleCreateCategoryOffer creates a category offer.
func (h *AdminHandler) HandleCreateCategoryOffer(c *fiber.Ctx) error {
	var offer models.CategoryOffer
	if err := c.BodyParser(&offer); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(offer); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.offerRepo.CreateCategoryOffer(&offer); err != nil {
		return respondError(c, "Could not create category offer", err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// HandleDeleteCategoryOffer deletes a category offer.
func (h *AdminHandler) HandleDeleteCategoryOffer(c *fiber.Ctx) error {
	if err := h.offerRepo.DeleteCategoryOffer(c.Params("id")); err != nil {
		return respondError(c, "Could not delete category offer", err)
	}
	return c.JSON(fiber.Map{"message": "Category offer deleted"})
}

// HandleListReferralOffers lists referral offers.
func (h *AdminHandler) HandleListReferralOffers(c *fiber.Ctx) error {
	offers, err := h.offerRepo.ListReferralOffers()
	if err != nil {
		return respondError(c, "Could not list referral offers", err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

// HandleCreateReferralOffer creates a referral offer.
func (h *AdminHandler) HandleCreateReferralOffer(c *fiber.Ctx) error {
	var offer models.ReferralOffer
	if err := c.BodyParser(&offer); err != nil {
		return respondBadBody(c, err)
	}
	offer.TimesUsed = 0
	if err := h.validate.Struct(offer); err != nil {
		return respondValidationError(c, err)
	}
	if err := h.offerRepo.CreateReferralOffer(&offer); err != nil {
		return respondError(c, "Could not create referral offer", err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// HandleDeleteReferralOffer deletes a referral offer.
func (h *AdminHandler) HandleDeleteReferralOffer(c *fiber.Ctx) error {
	if err := h.offerRepo.DeleteReferralOffer(c.Params("id")); err != nil {
		return respondError(c, "Could not delete referral offer", err)
	}
	return c.JSON(fiber.Map{"message": "Referral offer deleted"})
}

// HandleListAllOrders lists every order.
func (h *AdminHandler) HandleListAllOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		return respondError(c, "Could not list orders", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// UpdateOrderStatusRequest represents the request body for a status
// update.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus sets an order's status directly, recording
// fulfillment progress. No stock or wallet side effects run here.
func (h *AdminHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.orderService.UpdateStatus(c.Params("id"), models.OrderStatus(req.Status)); err != nil {
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated"})
}

// HandleAdminCancelOrder cancels a processing order on the customer's
// behalf, with the same restock and refund effects as a customer
// cancellation.
func (h *AdminHandler) HandleAdminCancelOrder(c *fiber.Ctx) error {
	var req CancelOrderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return respondBadBody(c, err)
	}

	refund, err := h.orderService.Cancel(c.Params("id"), "", req.Reason)
	if err != nil {
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled, refund credited to wallet",
		"refund":  refund,
	})
}

// HandleListReturns lists return requests, optionally filtered by
// status.
func (h *AdminHandler) HandleListReturns(c *fiber.Ctx) error {
	statusParam := c.Query("status")
	if statusParam == "" {
		requests, err := h.orderService.AllReturns()
		if err != nil {
			return respondError(c, "Could not list return requests", err)
		}
		return c.JSON(fiber.Map{"return_requests": requests})
	}

	requests, err := h.orderService.ReturnsByStatus(models.ReturnStatus(statusParam))
	if err != nil {
		return respondError(c, "Could not list return requests", err)
	}
	return c.JSON(fiber.Map{"return_requests": requests})
}

// ResolveReturnRequest represents the request body for a return
// decision.
type ResolveReturnRequest struct {
	Action     string `json:"action" validate:"required,oneof=approve reject complete"`
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=1000"`
}

// HandleResolveReturn applies an admin decision to a return request.
func (h *AdminHandler) HandleResolveReturn(c *fiber.Ctx) error {
	var req ResolveReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	request, err := h.orderService.ResolveReturn(c.Params("id"), req.Action, req.AdminNotes)
	if err != nil {
		return respondError(c, "Could not resolve return request", err)
	}
	return c.JSON(fiber.Map{
		"message":        "Return request resolved",
		"return_request": request,
	})
}

// HandleSalesReport builds a bucketed sales report. Defaults to the last
// 30 days bucketed by day.
func (h *AdminHandler) HandleSalesReport(c *fiber.Ctx) error {
	period := c.Query("period", services.PeriodDay)
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid 'from' date, expected YYYY-MM-DD",
			})
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid 'to' date, expected YYYY-MM-DD",
			})
		}
		to = parsed.Add(24*time.Hour - time.Second)
	}

	report, err := h.reportService.Sales(from, to, period)
	if err != nil {
		return respondError(c, "Could not build sales report", err)
	}
	return c.JSON(report)
}
