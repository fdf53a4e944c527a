package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/pkg/gateway"

	"github.com/stretchr/testify/assert"
)

// fakeGateway satisfies gateway.Client without network calls.
type fakeGateway struct {
	payment   *gateway.Payment
	sigErr    error
	createdID string
}

func (g *fakeGateway) CreateOrder(amountMinor int64, currency string) (string, error) {
	g.createdID = fmt.Sprintf("order_%d", amountMinor)
	return g.createdID, nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) error {
	return g.sigErr
}

func (g *fakeGateway) FetchPayment(paymentID string) (*gateway.Payment, error) {
	if g.payment == nil {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}
	return g.payment, nil
}

type checkoutFixture struct {
	store    *repositories.MemoryStore
	checkout *CheckoutService
	gateway  *fakeGateway
	now      time.Time
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	offers := NewOfferService(store)
	coupons := NewCouponService(store.Coupons())
	pricing := NewPricingService(offers, coupons, 99)
	gw := &fakeGateway{}
	checkout := NewCheckoutService(store, store.Carts(), pricing, coupons, gw, "key_test", nil, 1000)
	return &checkoutFixture{
		store:    store,
		checkout: checkout,
		gateway:  gw,
		now:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

// seedCart builds the worked-example cart: 2x500 without offer plus
// 1x1000 with a 10% offer, for a cart total of 1900 and a final total of
// 1999.
func (f *checkoutFixture) seedCart(t *testing.T) (plain, discounted models.Product) {
	t.Helper()
	plain = models.Product{ID: "11111111-1111-1111-1111-111111111111", Name: "Vetiver", Price: 500, Stock: 10}
	discounted = models.Product{ID: "22222222-2222-2222-2222-222222222222", Name: "Oud Royale", Price: 1000, Stock: 5}
	assert.NoError(t, f.store.Create(&plain))
	assert.NoError(t, f.store.Create(&discounted))

	from, to := testWindow(f.now)
	assert.NoError(t, f.store.CreateProductOffer(&models.ProductOffer{
		OfferRule: models.OfferRule{Name: "Summer", DiscountPercentage: 10, ValidFrom: from, ValidTo: to, Active: true},
		ProductID: discounted.ID,
	}))

	assert.NoError(t, f.store.Upsert(&models.CartItem{UserID: "cust-1", ProductID: plain.ID, Quantity: 2}))
	assert.NoError(t, f.store.Upsert(&models.CartItem{UserID: "cust-1", ProductID: discounted.ID, Quantity: 1}))
	return plain, discounted
}

func TestPlaceOrderCOD(t *testing.T) {
	f := newCheckoutFixture(t)
	plain, discounted := f.seedCart(t)

	// 1999 exceeds the COD limit of 1000.
	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCashOnDelivery,
	})
	var methodErr *PaymentMethodNotAllowedError
	assert.ErrorAs(t, err, &methodErr)

	// Shrink the cart under the limit: 1x500 + fee = 599.
	assert.NoError(t, f.store.DeleteCartItem("cust-1", discounted.ID))
	assert.NoError(t, f.store.Upsert(&models.CartItem{UserID: "cust-1", ProductID: plain.ID, Quantity: 1}))

	group, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCashOnDelivery,
	})
	assert.NoError(t, err)
	assert.Len(t, group.Orders, 1)
	assert.Equal(t, int64(599), group.Breakdown.FinalTotal)
	assert.Contains(t, group.OrderID, "COD-")
	assert.Equal(t, models.StatusProcessing, group.Orders[0].Status)

	// Stock decremented, cart cleared.
	updated, err := f.store.GetByID(plain.ID)
	assert.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	items, err := f.store.ItemsByUser("cust-1")
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlaceOrderWalletInsufficientBalance(t *testing.T) {
	f := newCheckoutFixture(t)
	plain, discounted := f.seedCart(t)

	assert.NoError(t, f.store.CreateWallet(&models.Wallet{UserID: "cust-1", Balance: 500}))

	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentWallet,
	})
	var balanceErr *InsufficientBalanceError
	assert.ErrorAs(t, err, &balanceErr)
	assert.Equal(t, int64(1999), balanceErr.Required)
	assert.Equal(t, int64(500), balanceErr.Available)

	// The whole transaction rolled back: stock untouched, no orders,
	// wallet unchanged, cart intact.
	p1, _ := f.store.GetByID(plain.ID)
	p2, _ := f.store.GetByID(discounted.ID)
	assert.Equal(t, 10, p1.Stock)
	assert.Equal(t, 5, p2.Stock)

	orders, err := f.store.AllOrders()
	assert.NoError(t, err)
	assert.Empty(t, orders)

	wallet, err := f.store.WalletByUser("cust-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(500), wallet.Balance)

	items, err := f.store.ItemsByUser("cust-1")
	assert.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPlaceOrderWalletSuccess(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)

	assert.NoError(t, f.store.CreateWallet(&models.Wallet{UserID: "cust-1", Balance: 2500}))

	group, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentWallet,
	})
	assert.NoError(t, err)
	assert.Len(t, group.Orders, 2)
	assert.Equal(t, int64(1999), group.Breakdown.FinalTotal)
	assert.Contains(t, group.OrderID, "WALLET-")

	wallet, err := f.store.WalletByUser("cust-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(501), wallet.Balance)

	txns, err := f.store.TransactionsByWallet(wallet.ID)
	assert.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, models.TransactionWithdrawal, txns[0].Type)
	assert.Equal(t, int64(1999), txns[0].Amount)
	assert.Equal(t, models.TransactionCompleted, txns[0].Status)
	assert.Contains(t, txns[0].TransactionID, "TXN-")
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	f := newCheckoutFixture(t)
	plain, discounted := f.seedCart(t)

	// Second line asks for more than the shelf holds.
	assert.NoError(t, f.store.Upsert(&models.CartItem{UserID: "cust-1", ProductID: discounted.ID, Quantity: 6}))

	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCashOnDelivery,
	})
	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Oud Royale", stockErr.ProductName)

	// The first line's decrement was rolled back with everything else.
	p1, _ := f.store.GetByID(plain.ID)
	assert.Equal(t, 10, p1.Stock)
	orders, _ := f.store.AllOrders()
	assert.Empty(t, orders)
}

func TestPlaceOrderFailpointRollsBackEverything(t *testing.T) {
	f := newCheckoutFixture(t)
	plain, _ := f.seedCart(t)

	// Fail the cart clearing, the final step, after stock decrements,
	// order creation and coupon redemption all succeeded.
	from, to := testWindow(f.now)
	assert.NoError(t, f.store.CreateCoupon(&models.Coupon{
		Code: "SAVE200", DiscountType: models.DiscountFixed, DiscountValue: 200,
		MinimumPurchase: 1000, ValidFrom: from, ValidTo: to, Active: true, UsageLimit: 5,
	}))
	f.store.FailOn("DeleteCartItems", errors.New("injected failure"))

	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCashOnDelivery,
		CouponCode:    "SAVE200",
	})
	assert.Error(t, err)

	p1, _ := f.store.GetByID(plain.ID)
	assert.Equal(t, 10, p1.Stock)
	orders, _ := f.store.AllOrders()
	assert.Empty(t, orders)
	coupon, _ := f.store.CouponByCode("SAVE200")
	assert.Equal(t, 0, coupon.TimesUsed)
	items, _ := f.store.ItemsByUser("cust-1")
	assert.Len(t, items, 2)
}

func TestPlaceOrderApportionsCouponAcrossLines(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)

	from, to := testWindow(f.now)
	assert.NoError(t, f.store.CreateCoupon(&models.Coupon{
		Code: "SAVE200", DiscountType: models.DiscountFixed, DiscountValue: 200,
		MinimumPurchase: 1000, ValidFrom: from, ValidTo: to, Active: true, UsageLimit: 5,
	}))
	assert.NoError(t, f.store.CreateWallet(&models.Wallet{UserID: "cust-1", Balance: 5000}))

	group, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentWallet,
		CouponCode:    "SAVE200",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1799), group.Breakdown.FinalTotal)

	// Shares are proportional to line totals (1000 and 900 of 1900) and
	// sum exactly to the discount.
	var totalShare int64
	for _, order := range group.Orders {
		totalShare += order.CouponDiscount
	}
	assert.Equal(t, int64(200), totalShare)

	coupon, _ := f.store.CouponByCode("SAVE200")
	assert.Equal(t, 1, coupon.TimesUsed)
}

func TestPlaceOrderCouponExhaustedInsideTransaction(t *testing.T) {
	f := newCheckoutFixture(t)
	plain, _ := f.seedCart(t)

	from, to := testWindow(f.now)
	// The eligibility check passes (times_used < limit is not checked
	// against concurrent redemptions), but the guarded increment finds
	// the coupon spent.
	assert.NoError(t, f.store.CreateCoupon(&models.Coupon{
		Code: "LAST1", DiscountType: models.DiscountFixed, DiscountValue: 100,
		ValidFrom: from, ValidTo: to, Active: true, UsageLimit: 1,
	}))
	f.store.FailOn("RedeemCoupon", fmt.Errorf("race: %w", repositories.ErrCouponExhausted))

	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCashOnDelivery,
		CouponCode:    "LAST1",
	})
	var couponErr *CouponInvalidError
	assert.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CouponUsageExceeded, couponErr.Reason)

	p1, _ := f.store.GetByID(plain.ID)
	assert.Equal(t, 10, p1.Stock)
	orders, _ := f.store.AllOrders()
	assert.Empty(t, orders)
}

func TestPlaceOrderRemovesOrderedProductsFromWishlist(t *testing.T) {
	f := newCheckoutFixture(t)
	plain, _ := f.seedCart(t)

	assert.NoError(t, f.store.AddWishlistItem(&models.WishlistItem{UserID: "cust-1", ProductID: plain.ID}))
	assert.NoError(t, f.store.CreateWallet(&models.Wallet{UserID: "cust-1", Balance: 5000}))

	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		Address:       "12 Rose Street, Springfield",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentWallet,
	})
	assert.NoError(t, err)

	wishlist, err := f.store.WishlistByUser("cust-1")
	assert.NoError(t, err)
	assert.Empty(t, wishlist)
}

func TestVerifyAndPlaceChecksSignatureAndAmount(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)

	in := PlaceOrderInput{
		CustomerID:     "cust-1",
		Address:        "12 Rose Street, Springfield",
		Phone:          "9876543210",
		GatewayOrderID: "order_199900",
		PaymentID:      "pay_123",
		Signature:      "sig",
	}

	// Bad signature.
	f.gateway.sigErr = gateway.ErrSignatureMismatch
	_, err := f.checkout.VerifyAndPlace(in)
	assert.ErrorIs(t, err, gateway.ErrSignatureMismatch)

	// Uncaptured payment.
	f.gateway.sigErr = nil
	f.gateway.payment = &gateway.Payment{ID: "pay_123", AmountMinor: 199900, Currency: "INR", Status: gateway.StatusCreated}
	_, err = f.checkout.VerifyAndPlace(in)
	assert.Error(t, err)

	// Captured but for the wrong amount (more than one minor unit off).
	f.gateway.payment = &gateway.Payment{ID: "pay_123", AmountMinor: 150000, Currency: "INR", Status: gateway.StatusCaptured}
	_, err = f.checkout.VerifyAndPlace(in)
	var amountErr *AmountMismatchError
	assert.ErrorAs(t, err, &amountErr)
	assert.Equal(t, int64(199900), amountErr.Expected)

	// Captured for the right amount: the order group reuses the gateway
	// identifiers.
	f.gateway.payment = &gateway.Payment{ID: "pay_123", AmountMinor: 199900, Currency: "INR", Status: gateway.StatusCaptured}
	group, err := f.checkout.VerifyAndPlace(in)
	assert.NoError(t, err)
	assert.Equal(t, "order_199900", group.OrderID)
	assert.Equal(t, "pay_123", group.PaymentID)
	assert.Equal(t, models.PaymentGateway, group.Orders[0].PaymentMethod)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.PlaceOrder(PlaceOrderInput{
		CustomerID:    "cust-1",
		PaymentMethod: models.PaymentCashOnDelivery,
	})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestInitiateGatewayPaymentUsesServerAmount(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)

	checkout, err := f.checkout.InitiateGatewayPayment("cust-1", "")
	assert.NoError(t, err)
	// 1999 whole units -> 199900 minor units.
	assert.Equal(t, int64(199900), checkout.AmountMinor)
	assert.Equal(t, "INR", checkout.Currency)
	assert.Equal(t, "key_test", checkout.KeyID)
	assert.Equal(t, "order_199900", checkout.GatewayOrderID)
}
