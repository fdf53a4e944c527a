package services

import (
	"errors"
	"fmt"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// OfferService resolves the best active discount for a product. It is a
// pure function of the stored offers and the passed time; it never
// mutates anything.
type OfferService struct {
	offerRepo repositories.OfferRepository
}

// NewOfferService creates a new OfferService.
func NewOfferService(offerRepo repositories.OfferRepository) *OfferService {
	return &OfferService{offerRepo: offerRepo}
}

// BestOffer returns the highest-percentage offer valid for the product at
// now, or nil when none applies. A product offer wins over a category
// offer with the same percentage.
func (s *OfferService) BestOffer(product *models.Product, now time.Time) (*models.AppliedOffer, error) {
	productOffers, err := s.offerRepo.ActiveProductOffers(product.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product offers: %w", err)
	}
	var best *models.AppliedOffer
	if len(productOffers) > 0 {
		best = &models.AppliedOffer{Rule: productOffers[0].OfferRule, Kind: models.OfferKindProduct}
	}

	if product.CategoryID != "" {
		categoryOffers, err := s.offerRepo.ActiveCategoryOffers(product.CategoryID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category offers: %w", err)
		}
		if len(categoryOffers) > 0 {
			candidate := &models.AppliedOffer{Rule: categoryOffers[0].OfferRule, Kind: models.OfferKindCategory}
			if best == nil || candidate.Rule.DiscountPercentage > best.Rule.DiscountPercentage {
				best = candidate
			}
		}
	}
	return best, nil
}

// offerPrice applies an offer's percentage to a list price:
// price - floor(price * pct / 100). A nil offer leaves the price
// unchanged. Every surface that prices a product goes through this one
// formula.
func offerPrice(price int64, offer *models.AppliedOffer) int64 {
	if offer == nil {
		return price
	}
	return price - price*int64(offer.Rule.DiscountPercentage)/100
}

// DiscountedPrice returns the unit price after applying the best offer.
func (s *OfferService) DiscountedPrice(product *models.Product, now time.Time) (int64, error) {
	offer, err := s.BestOffer(product, now)
	if err != nil {
		return 0, err
	}
	return offerPrice(product.Price, offer), nil
}

// ValidateReferral looks up a referral code and checks it is inside its
// window and under its usage cap.
func (s *OfferService) ValidateReferral(code string, now time.Time) (*models.ReferralOffer, error) {
	offer, err := s.offerRepo.GetReferralByCode(code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &CouponInvalidError{Code: code, Reason: CouponInactive}
		}
		return nil, err
	}
	if !offer.Usable(now) {
		reason := CouponExpired
		if offer.MaxUses > 0 && offer.TimesUsed >= offer.MaxUses {
			reason = CouponUsageExceeded
		}
		return nil, &CouponInvalidError{Code: code, Reason: reason}
	}
	return offer, nil
}

// RedeemReferral consumes one use of a referral offer.
func (s *OfferService) RedeemReferral(id string) error {
	if err := s.offerRepo.IncrementReferralUse(id); err != nil {
		if errors.Is(err, repositories.ErrCouponExhausted) {
			return &CouponInvalidError{Code: id, Reason: CouponUsageExceeded}
		}
		return err
	}
	return nil
}
