package services

import (
	"errors"
	"fmt"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// CouponService validates coupon eligibility and computes discounts.
// Redemption (incrementing times_used) happens inside the settlement
// transaction, never here.
type CouponService struct {
	couponRepo repositories.CouponRepository
}

// NewCouponService creates a new CouponService.
func NewCouponService(couponRepo repositories.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// GetByCode looks up a coupon by its code, case-insensitively.
func (s *CouponService) GetByCode(code string) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return coupon, nil
}

// Validate checks a coupon's eligibility for a cart amount at now. Checks
// run in a fixed order and the first failure wins: active flag, window
// start, window end, usage limit, minimum purchase.
func (s *CouponService) Validate(coupon *models.Coupon, cartAmount int64, now time.Time) error {
	if !coupon.Active {
		return &CouponInvalidError{Code: coupon.Code, Reason: CouponInactive}
	}
	if now.Before(coupon.ValidFrom) {
		return &CouponInvalidError{Code: coupon.Code, Reason: CouponNotStarted}
	}
	if now.After(coupon.ValidTo) {
		return &CouponInvalidError{Code: coupon.Code, Reason: CouponExpired}
	}
	if coupon.UsageLimit > 0 && coupon.TimesUsed >= coupon.UsageLimit {
		return &CouponInvalidError{Code: coupon.Code, Reason: CouponUsageExceeded}
	}
	if cartAmount < coupon.MinimumPurchase {
		return &CouponInvalidError{Code: coupon.Code, Reason: CouponBelowMinimum}
	}
	return nil
}

// ComputeDiscount returns the discount a coupon grants on an amount.
// Percentage coupons take their share of the amount; fixed coupons never
// exceed the amount being discounted.
func (s *CouponService) ComputeDiscount(coupon *models.Coupon, amount int64) int64 {
	if coupon.DiscountType == models.DiscountPercentage {
		return amount * coupon.DiscountValue / 100
	}
	if coupon.DiscountValue > amount {
		return amount
	}
	return coupon.DiscountValue
}
