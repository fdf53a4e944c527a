package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"parfum/internal/handlers"
	"parfum/internal/middleware"
	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/internal/services"
	"parfum/pkg/gateway"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires the full HTTP surface against an in-memory SQLite
// database, the way main.go wires it against Postgres.
type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp builds a Fiber app for testing with in-memory SQLite and all
// handlers/services. Each test gets its own named database so state does
// not leak between tests.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ToLower(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.ProductOffer{},
		&models.CategoryOffer{},
		&models.ReferralOffer{},
		&models.Coupon{},
		&models.Order{},
		&models.ReturnRequest{},
		&models.Wallet{},
		&models.WalletTransaction{},
	)
	assert.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	offerRepo := repositories.NewGORMOfferRepository(db)
	couponRepo := repositories.NewGORMCouponRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	returnRepo := repositories.NewGORMReturnRequestRepository(db)
	walletRepo := repositories.NewGORMWalletRepository(db)
	settlementStore := repositories.NewGORMSettlementStore(db)

	offerService := services.NewOfferService(offerRepo)
	couponService := services.NewCouponService(couponRepo)
	pricingService := services.NewPricingService(offerService, couponService, 99)
	walletService := services.NewWalletService(walletRepo, settlementStore)
	authService := services.NewAuthService(userRepo, walletService, offerService, jwtSecret)
	productService := services.NewProductService(productRepo, categoryRepo, offerService)
	cartService := services.NewCartService(cartRepo, wishlistRepo, productRepo, pricingService, 3)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)
	// The gateway client is never reached on the COD and wallet paths
	// exercised here.
	gatewayClient := gateway.NewHTTPClient(gateway.Config{BaseURL: "http://localhost:0", KeyID: "test", KeySecret: "test"})
	checkoutService := services.NewCheckoutService(
		settlementStore, cartRepo, pricingService, couponService,
		gatewayClient, "test", nil, 1000,
	)
	orderService := services.NewOrderService(orderRepo, returnRepo, settlementStore, walletService, nil, 99, 7)
	reportService := services.NewReportService(orderRepo)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, wishlistService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(productService, orderService, reportService, couponRepo, offerRepo)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	customer := apiV1.Group("/", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(customer)
	checkoutHandler.RegisterRoutes(customer)
	orderHandler.RegisterRoutes(customer)
	walletHandler.RegisterRoutes(customer)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	adminHandler.RegisterRoutes(admin)

	return &testEnv{app: app, db: db}
}

// seedProduct creates one catalog product and returns its generated ID.
func (e *testEnv) seedProduct(t *testing.T, name string, price int64, stock int) string {
	t.Helper()
	product := models.Product{Name: name, Brand: "Ajmal", Gender: "unisex", Price: price, Stock: stock}
	repo := repositories.NewGORMProductRepository(e.db)
	assert.NoError(t, repo.Create(&product))
	return product.ID
}

// register creates a user through the HTTP surface and returns a login
// token.
func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	status, _ := e.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := e.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// request performs one JSON request against the app and decodes the
// response body into a map.
func (e *testEnv) request(t *testing.T, method, target, token string, payload any) (int, map[string]any) {
	t.Helper()
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reqBody)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	if len(raw) > 0 {
		// Array-valued endpoints decode the response themselves.
		_ = json.Unmarshal(raw, &body)
	}
	return resp.StatusCode, body
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRegisterLoginAndDuplicateEmail(t *testing.T) {
	env := setupApp(t)

	status, body := env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", body["message"])
	// Password hash never leaves the server.
	user := body["user"].(map[string]any)
	assert.Empty(t, user["password"])

	status, _ = env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "test@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogIsPublicAndAppliesOffers(t *testing.T) {
	env := setupApp(t)
	productID := env.seedProduct(t, "Oud Royale", 1000, 5)
	env.seedProduct(t, "Citrus Noir", 500, 3)

	now := time.Now()
	offerRepo := repositories.NewGORMOfferRepository(env.db)
	assert.NoError(t, offerRepo.CreateProductOffer(&models.ProductOffer{
		OfferRule: models.OfferRule{
			Name: "Oud Week", DiscountPercentage: 10,
			ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true,
		},
		ProductID: productID,
	}))

	// No token needed for browsing.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Products []services.ProductView `json:"products"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	views := listing.Products
	assert.Len(t, views, 2)
	for _, view := range views {
		if view.Product.ID == productID {
			assert.Equal(t, int64(900), view.DiscountedPrice)
			assert.NotNil(t, view.Offer)
		} else {
			assert.Equal(t, view.Product.Price, view.DiscountedPrice)
		}
	}

	status, _ := env.request(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.request(t, http.MethodGet, "/api/v1/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartRequiresAuth(t *testing.T) {
	env := setupApp(t)

	status, _ := env.request(t, http.MethodGet, "/api/v1/cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.request(t, http.MethodGet, "/api/v1/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckoutCODFlowWithCancelRefund(t *testing.T) {
	env := setupApp(t)
	productID := env.seedProduct(t, "Citrus Noir", 400, 5)
	token := env.register(t, "Shopper", "shopper@example.com", "password123")

	// Add to cart.
	status, _ := env.request(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id": productID,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusCreated, status)

	// Quote: 400 cart total + 99 convenience fee.
	status, body := env.request(t, http.MethodGet, "/api/v1/checkout/quote", token, nil)
	assert.Equal(t, http.StatusOK, status)
	breakdown := body["breakdown"].(map[string]any)
	assert.Equal(t, float64(400), breakdown["cart_total"])
	assert.Equal(t, float64(99), breakdown["convenience_fee"])
	assert.Equal(t, float64(499), breakdown["final_total"])

	// Place as cash on delivery.
	status, body = env.request(t, http.MethodPost, "/api/v1/checkout/place", token, map[string]any{
		"address":        "12 Perfume Lane, Mumbai",
		"phone":          "9876543210",
		"payment_method": "cod",
	})
	assert.Equal(t, http.StatusCreated, status)
	group := body["order"].(map[string]any)
	orders := group["orders"].([]any)
	assert.Len(t, orders, 1)
	orderRowID := orders[0].(map[string]any)["id"].(string)

	// Placement empties the cart and decrements stock.
	status, body = env.request(t, http.MethodGet, "/api/v1/cart/", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])

	productRepo := repositories.NewGORMProductRepository(env.db)
	product, err := productRepo.GetByID(productID)
	assert.NoError(t, err)
	assert.Equal(t, 4, product.Stock)

	// Cancel: refund lands in the wallet and stock is restored.
	status, body = env.request(t, http.MethodPost, "/api/v1/orders/"+orderRowID+"/cancel", token, map[string]any{
		"reason": "changed my mind",
	})
	assert.Equal(t, http.StatusOK, status)
	refund := body["refund"].(map[string]any)
	assert.Equal(t, float64(499), refund["amount"])

	status, body = env.request(t, http.MethodGet, "/api/v1/wallet/", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(499), body["balance"])

	product, err = productRepo.GetByID(productID)
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock)

	// A second cancel is rejected.
	status, _ = env.request(t, http.MethodPost, "/api/v1/orders/"+orderRowID+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestCheckoutCODRejectedOverLimit(t *testing.T) {
	env := setupApp(t)
	productID := env.seedProduct(t, "Oud Royale", 950, 5)
	token := env.register(t, "Shopper", "shopper@example.com", "password123")

	status, _ := env.request(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusCreated, status)

	// 1900 + 99 = 1999 exceeds the cash on delivery limit of 1000.
	status, _ = env.request(t, http.MethodPost, "/api/v1/checkout/place", token, map[string]any{
		"address":        "12 Perfume Lane, Mumbai",
		"phone":          "9876543210",
		"payment_method": "cod",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Wallet covers it after a top-up.
	status, _ = env.request(t, http.MethodPost, "/api/v1/wallet/topup", token, map[string]any{
		"amount": 2500,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = env.request(t, http.MethodPost, "/api/v1/checkout/place", token, map[string]any{
		"address":        "12 Perfume Lane, Mumbai",
		"phone":          "9876543210",
		"payment_method": "wallet",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := env.request(t, http.MethodGet, "/api/v1/wallet/", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(501), body["balance"])
}

func TestCheckoutWalletInsufficientBalance(t *testing.T) {
	env := setupApp(t)
	productID := env.seedProduct(t, "Oud Royale", 950, 5)
	token := env.register(t, "Shopper", "shopper@example.com", "password123")

	status, _ := env.request(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = env.request(t, http.MethodPost, "/api/v1/checkout/place", token, map[string]any{
		"address":        "12 Perfume Lane, Mumbai",
		"phone":          "9876543210",
		"payment_method": "wallet",
	})
	assert.Equal(t, http.StatusPaymentRequired, status)

	// Nothing was charged and the order board stays empty.
	status, body := env.request(t, http.MethodGet, "/api/v1/orders/", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["orders"])
}

func TestAdminGateAndOrderBoard(t *testing.T) {
	env := setupApp(t)
	productID := env.seedProduct(t, "Citrus Noir", 400, 5)

	customerToken := env.register(t, "Shopper", "shopper@example.com", "password123")
	adminToken := env.register(t, "Back Office", "admin@example.com", "password123")
	// Admin rights are granted out of band.
	assert.NoError(t, env.db.Model(&models.User{}).
		Where("email = ?", "admin@example.com").
		Update("is_admin", true).Error)
	// Re-login so the token carries the admin claim.
	status, body := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	adminToken = body["token"].(string)

	// The back office is closed to customers.
	status, _ = env.request(t, http.MethodGet, "/api/v1/admin/orders/", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Place an order as the customer.
	status, _ = env.request(t, http.MethodPost, "/api/v1/cart/items", customerToken, map[string]any{
		"product_id": productID,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusCreated, status)
	status, body = env.request(t, http.MethodPost, "/api/v1/checkout/place", customerToken, map[string]any{
		"address":        "12 Perfume Lane, Mumbai",
		"phone":          "9876543210",
		"payment_method": "cod",
	})
	assert.Equal(t, http.StatusCreated, status)
	group := body["order"].(map[string]any)
	orderRowID := group["orders"].([]any)[0].(map[string]any)["id"].(string)

	// Admin sees it on the board and marks it delivered.
	status, body = env.request(t, http.MethodGet, "/api/v1/admin/orders/", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"].([]any), 1)

	status, _ = env.request(t, http.MethodPut, "/api/v1/admin/orders/"+orderRowID+"/status", adminToken, map[string]any{
		"status": "delivered",
	})
	assert.Equal(t, http.StatusOK, status)

	// The customer can now rate it and request a return.
	status, _ = env.request(t, http.MethodPost, "/api/v1/orders/"+orderRowID+"/rating", customerToken, map[string]any{
		"rating": 5,
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.request(t, http.MethodPost, "/api/v1/orders/"+orderRowID+"/return", customerToken, map[string]any{
		"reason":             "not as described",
		"condition":          "unused",
		"preferred_solution": "refund",
	})
	assert.Equal(t, http.StatusCreated, status)

	// Resolve it through approval to completion; the refund hits the
	// customer wallet.
	status, body = env.request(t, http.MethodGet, "/api/v1/admin/returns/?status=pending", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	returns := body["return_requests"].([]any)
	assert.Len(t, returns, 1)
	returnID := returns[0].(map[string]any)["id"].(string)

	status, _ = env.request(t, http.MethodPost, "/api/v1/admin/returns/"+returnID+"/resolve", adminToken, map[string]any{
		"action": "approve",
	})
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.request(t, http.MethodPost, "/api/v1/admin/returns/"+returnID+"/resolve", adminToken, map[string]any{
		"action": "complete",
	})
	assert.Equal(t, http.StatusOK, status)

	status, body = env.request(t, http.MethodGet, "/api/v1/wallet/", customerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(400), body["balance"])
}
