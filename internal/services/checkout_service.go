package services

import (
	"errors"
	"fmt"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/pkg/gateway"
	"parfum/pkg/rabbitmq"
)

// OrderGroup is the result of a successful checkout: one order row per
// cart line, correlated by a shared order id and payment id.
type OrderGroup struct {
	OrderID   string         `json:"order_id"`
	PaymentID string         `json:"payment_id"`
	Orders    []models.Order `json:"orders"`
	Breakdown Breakdown      `json:"breakdown"`
}

// PlaceOrderInput carries everything a checkout needs. The gateway
// fields are only set on the gateway path.
type PlaceOrderInput struct {
	CustomerID     string
	Address        string
	Phone          string
	PaymentMethod  models.PaymentMethod
	CouponCode     string
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// GatewayCheckout is what the client-side payment widget needs to start
// a gateway payment.
type GatewayCheckout struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key"`
}

// CheckoutService is the order placement transaction: it validates the
// cart against live stock, charges the chosen payment method and creates
// the order rows, all as one atomic unit. The same price computation is
// used here as on every display surface.
type CheckoutService struct {
	store      repositories.SettlementStore
	cartRepo   repositories.CartRepository
	pricing    *PricingService
	coupons    *CouponService
	gateway    gateway.Client
	gatewayKey string
	events     EventPublisher
	codLimit   int64
	currency   string
}

// NewCheckoutService creates a new CheckoutService. codLimit is the
// maximum final total eligible for cash on delivery.
func NewCheckoutService(
	store repositories.SettlementStore,
	cartRepo repositories.CartRepository,
	pricing *PricingService,
	coupons *CouponService,
	gw gateway.Client,
	gatewayKey string,
	events EventPublisher,
	codLimit int64,
) *CheckoutService {
	return &CheckoutService{
		store:      store,
		cartRepo:   cartRepo,
		pricing:    pricing,
		coupons:    coupons,
		gateway:    gw,
		gatewayKey: gatewayKey,
		events:     events,
		codLimit:   codLimit,
		currency:   "INR",
	}
}

// Quote prices the customer's current cart, optionally with a coupon
// code. Used by the cart page, the checkout page and the verification
// path alike.
func (s *CheckoutService) Quote(customerID, couponCode string, now time.Time) (Breakdown, []PricedLine, error) {
	items, err := s.cartRepo.ItemsByUser(customerID)
	if err != nil {
		return Breakdown{}, nil, err
	}
	if len(items) == 0 {
		return Breakdown{}, nil, ErrCartEmpty
	}
	var coupon *models.Coupon
	if couponCode != "" {
		coupon, err = s.coupons.GetByCode(couponCode)
		if err != nil {
			return Breakdown{}, nil, err
		}
	}
	return s.pricing.Quote(items, coupon, now)
}

// InitiateGatewayPayment re-derives the payable amount server-side and
// registers it with the payment gateway. The client never dictates the
// amount.
func (s *CheckoutService) InitiateGatewayPayment(customerID, couponCode string) (*GatewayCheckout, error) {
	breakdown, _, err := s.Quote(customerID, couponCode, time.Now())
	if err != nil {
		return nil, err
	}
	amountMinor := breakdown.FinalTotal * 100
	gatewayOrderID, err := s.gateway.CreateOrder(amountMinor, s.currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}
	return &GatewayCheckout{
		GatewayOrderID: gatewayOrderID,
		AmountMinor:    amountMinor,
		Currency:       s.currency,
		KeyID:          s.gatewayKey,
	}, nil
}

// VerifyAndPlace settles a gateway payment: it checks the callback
// signature, fetches the payment, rejects anything not captured or whose
// amount strays more than one minor unit from the server-side
// recomputation, then runs the placement transaction.
func (s *CheckoutService) VerifyAndPlace(in PlaceOrderInput) (*OrderGroup, error) {
	if err := s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature); err != nil {
		return nil, fmt.Errorf("payment rejected: %w", err)
	}

	payment, err := s.gateway.FetchPayment(in.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	if payment.Status != gateway.StatusCaptured {
		return nil, fmt.Errorf("payment %s not captured (status: %s)", in.PaymentID, payment.Status)
	}

	breakdown, _, err := s.Quote(in.CustomerID, in.CouponCode, time.Now())
	if err != nil {
		return nil, err
	}
	expectedMinor := breakdown.FinalTotal * 100
	if diff := payment.AmountMinor - expectedMinor; diff > 1 || diff < -1 {
		return nil, &AmountMismatchError{Expected: expectedMinor, Submitted: payment.AmountMinor}
	}

	in.PaymentMethod = models.PaymentGateway
	return s.PlaceOrder(in)
}

// PlaceOrder runs the settlement transaction. Either every effect
// commits (stock decrements, order rows, wishlist cleanup, coupon
// redemption, wallet withdrawal, cart clearing) or none do.
func (s *CheckoutService) PlaceOrder(in PlaceOrderInput) (*OrderGroup, error) {
	now := time.Now()

	items, err := s.cartRepo.ItemsByUser(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	var coupon *models.Coupon
	if in.CouponCode != "" {
		coupon, err = s.coupons.GetByCode(in.CouponCode)
		if err != nil {
			return nil, err
		}
	}

	breakdown, lines, err := s.pricing.Quote(items, coupon, now)
	if err != nil {
		return nil, err
	}

	if in.PaymentMethod == models.PaymentCashOnDelivery && breakdown.FinalTotal > s.codLimit {
		return nil, &PaymentMethodNotAllowedError{
			Reason: fmt.Sprintf("cash on delivery is limited to orders up to %d", s.codLimit),
		}
	}

	groupID, paymentID := s.groupIDs(in, now)
	couponShares := apportionCoupon(breakdown.CouponDiscount, lines)

	group := &OrderGroup{OrderID: groupID, PaymentID: paymentID, Breakdown: breakdown}
	err = s.store.InTransaction(func(tx repositories.SettlementTx) error {
		for i, line := range lines {
			product, err := tx.ProductForUpdate(line.Item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < line.Item.Quantity {
				return &InsufficientStockError{
					ProductName: product.Name,
					Requested:   line.Item.Quantity,
					Available:   product.Stock,
				}
			}
			product.Stock -= line.Item.Quantity
			if err := tx.SaveProduct(product); err != nil {
				return err
			}

			order := models.Order{
				ProductID:      product.ID,
				CustomerID:     in.CustomerID,
				Quantity:       line.Item.Quantity,
				Price:          line.UnitPrice,
				Address:        in.Address,
				Phone:          in.Phone,
				Status:         models.StatusProcessing,
				CouponDiscount: couponShares[i],
				PaymentMethod:  in.PaymentMethod,
				OrderID:        groupID,
				PaymentID:      paymentID,
			}
			if err := tx.CreateOrder(&order); err != nil {
				return err
			}
			group.Orders = append(group.Orders, order)

			if err := tx.DeleteWishlistItem(in.CustomerID, product.ID); err != nil {
				return err
			}
		}

		if coupon != nil {
			if err := tx.RedeemCoupon(coupon.ID); err != nil {
				if errors.Is(err, repositories.ErrCouponExhausted) {
					return &CouponInvalidError{Code: coupon.Code, Reason: CouponUsageExceeded}
				}
				return err
			}
		}

		if in.PaymentMethod == models.PaymentWallet {
			wallet, err := tx.WalletForUpdate(in.CustomerID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrWalletNotFound
				}
				return err
			}
			if wallet.Balance < breakdown.FinalTotal {
				return &InsufficientBalanceError{
					Required:  breakdown.FinalTotal,
					Available: wallet.Balance,
				}
			}
			txn := models.WalletTransaction{
				WalletID:      wallet.ID,
				TransactionID: models.NewTransactionID(models.TxnPrefixPayment, groupID),
				Type:          models.TransactionWithdrawal,
				Amount:        breakdown.FinalTotal,
				Status:        models.TransactionCompleted,
			}
			if err := tx.CreateWalletTransaction(&txn); err != nil {
				return err
			}
			wallet.Balance -= breakdown.FinalTotal
			if err := tx.SaveWallet(wallet); err != nil {
				return err
			}
		}

		return tx.DeleteCartItems(in.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(s.events, rabbitmq.RouteOrderPlaced, map[string]interface{}{
		"order_id":    group.OrderID,
		"payment_id":  group.PaymentID,
		"customer_id": in.CustomerID,
		"method":      in.PaymentMethod,
		"total":       breakdown.FinalTotal,
		"lines":       len(group.Orders),
	})
	return group, nil
}

// groupIDs picks the shared order and payment ids for the checkout. The
// gateway path reuses the gateway's own identifiers so a payment can be
// traced back to its orders.
func (s *CheckoutService) groupIDs(in PlaceOrderInput, now time.Time) (string, string) {
	switch in.PaymentMethod {
	case models.PaymentGateway:
		return in.GatewayOrderID, in.PaymentID
	case models.PaymentWallet:
		id := fmt.Sprintf("WALLET-%d", now.Unix())
		return id, id
	default:
		id := fmt.Sprintf("COD-%d", now.Unix())
		return id, id
	}
}

// apportionCoupon splits the checkout's coupon discount across lines in
// proportion to their totals, giving any rounding remainder to the last
// line so the shares always sum to the full discount.
func apportionCoupon(discount int64, lines []PricedLine) []int64 {
	shares := make([]int64, len(lines))
	if discount == 0 || len(lines) == 0 {
		return shares
	}
	var cartTotal int64
	for _, line := range lines {
		cartTotal += line.UnitPrice * int64(line.Item.Quantity)
	}
	if cartTotal == 0 {
		return shares
	}
	var allocated int64
	for i, line := range lines {
		shares[i] = discount * (line.UnitPrice * int64(line.Item.Quantity)) / cartTotal
		allocated += shares[i]
	}
	shares[len(shares)-1] += discount - allocated
	return shares
}
