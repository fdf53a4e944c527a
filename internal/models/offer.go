package models

import (
	"time"

	"gorm.io/gorm"
)

// OfferRule is the shared shape of all offer variants: a time-bounded
// percentage discount with an active flag.
type OfferRule struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name               string    `json:"name" validate:"required,min=2,max=100"`
	DiscountPercentage int       `json:"discount_percentage" validate:"gte=0,lte=100"`
	ValidFrom          time.Time `json:"valid_from" validate:"required"`
	ValidTo            time.Time `json:"valid_to" validate:"required,gtfield=ValidFrom"`
	Active             bool      `json:"active"`
	gorm.Model
}

// InWindow reports whether the rule is active and now falls inside its
// validity window (inclusive on both ends).
func (r OfferRule) InWindow(now time.Time) bool {
	return r.Active && !now.Before(r.ValidFrom) && !now.After(r.ValidTo)
}

// ProductOffer discounts one specific product.
type ProductOffer struct {
	OfferRule
	ProductID string  `json:"product_id" gorm:"type:varchar(36);index" validate:"required,uuid"`
	Product   Product `json:"product" gorm:"foreignKey:ProductID" validate:"-"`
}

// CategoryOffer discounts every product in a category.
type CategoryOffer struct {
	OfferRule
	CategoryID string   `json:"category_id" gorm:"type:varchar(36);index" validate:"required,uuid"`
	Category   Category `json:"category" gorm:"foreignKey:CategoryID" validate:"-"`
}

// ReferralOffer is a code-scoped percentage discount with a usage cap.
// MaxUses of 0 means unlimited.
type ReferralOffer struct {
	OfferRule
	Code      string `json:"code" gorm:"uniqueIndex;type:varchar(20)" validate:"required,min=3,max=20"`
	MaxUses   int    `json:"max_uses" validate:"gte=0"`
	TimesUsed int    `json:"times_used" validate:"gte=0"`
}

// Usable reports whether the referral offer is inside its window and still
// under its usage cap.
func (r ReferralOffer) Usable(now time.Time) bool {
	return r.InWindow(now) && (r.MaxUses == 0 || r.TimesUsed < r.MaxUses)
}

// AppliedOfferKind identifies which offer variant won for a product.
type AppliedOfferKind string

const (
	OfferKindProduct  AppliedOfferKind = "product"
	OfferKindCategory AppliedOfferKind = "category"
)

// AppliedOffer is the best offer the resolver found for a product.
type AppliedOffer struct {
	Rule OfferRule        `json:"rule"`
	Kind AppliedOfferKind `json:"kind"`
}
