package services

import (
	"time"

	"parfum/internal/models"
)

// Breakdown is the priced view of a cart. The same computation backs the
// cart page, the checkout page, the gateway amount and the placement-time
// revalidation, so the amount a user is shown is always the amount they
// are charged.
type Breakdown struct {
	Subtotal       int64 `json:"subtotal"`        // undiscounted Σ price*qty
	OfferDiscount  int64 `json:"offer_discount"`  // subtotal - cart_total
	CartTotal      int64 `json:"cart_total"`      // Σ discounted_price*qty
	CouponDiscount int64 `json:"coupon_discount"` // applied to cart_total, not subtotal
	ConvenienceFee int64 `json:"convenience_fee"`
	FinalTotal     int64 `json:"final_total"` // floored at zero
}

// PricedLine is one cart line with its resolved unit price.
type PricedLine struct {
	Item      models.CartItem      `json:"item"`
	UnitPrice int64                `json:"unit_price"` // offer-discounted
	Offer     *models.AppliedOffer `json:"offer,omitempty"`
}

// PricingService computes a cart's payable amount from the offer
// resolver, an optional coupon and the flat convenience fee.
type PricingService struct {
	offers         *OfferService
	coupons        *CouponService
	convenienceFee int64
}

// NewPricingService creates a new PricingService. convenienceFee is the
// flat surcharge added to every order regardless of size.
func NewPricingService(offers *OfferService, coupons *CouponService, convenienceFee int64) *PricingService {
	return &PricingService{
		offers:         offers,
		coupons:        coupons,
		convenienceFee: convenienceFee,
	}
}

// ConvenienceFee returns the configured flat surcharge.
func (s *PricingService) ConvenienceFee() int64 {
	return s.convenienceFee
}

// PriceLines resolves the offer-discounted unit price for each cart line.
func (s *PricingService) PriceLines(items []models.CartItem, now time.Time) ([]PricedLine, error) {
	lines := make([]PricedLine, 0, len(items))
	for _, item := range items {
		product := item.Product
		offer, err := s.offers.BestOffer(&product, now)
		if err != nil {
			return nil, err
		}
		lines = append(lines, PricedLine{
			Item:      item,
			UnitPrice: offerPrice(product.Price, offer),
			Offer:     offer,
		})
	}
	return lines, nil
}

// Quote prices a cart. The coupon may be nil; when present its eligibility
// is checked against the offer-discounted cart total.
func (s *PricingService) Quote(items []models.CartItem, coupon *models.Coupon, now time.Time) (Breakdown, []PricedLine, error) {
	lines, err := s.PriceLines(items, now)
	if err != nil {
		return Breakdown{}, nil, err
	}

	var b Breakdown
	for _, line := range lines {
		qty := int64(line.Item.Quantity)
		b.Subtotal += line.Item.Product.Price * qty
		b.CartTotal += line.UnitPrice * qty
	}
	b.OfferDiscount = b.Subtotal - b.CartTotal

	if coupon != nil {
		if err := s.coupons.Validate(coupon, b.CartTotal, now); err != nil {
			return Breakdown{}, nil, err
		}
		b.CouponDiscount = s.coupons.ComputeDiscount(coupon, b.CartTotal)
	}

	b.ConvenienceFee = s.convenienceFee
	b.FinalTotal = b.CartTotal - b.CouponDiscount + b.ConvenienceFee
	if b.FinalTotal < 0 {
		b.FinalTotal = 0
	}
	return b, lines, nil
}
