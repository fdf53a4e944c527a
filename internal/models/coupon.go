package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType distinguishes percentage coupons from fixed-amount ones.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a user-entered code granting a cart-wide discount.
// UsageLimit of 0 means unlimited; TimesUsed never exceeds UsageLimit when
// the limit is set, because the increment happens inside the
// order-placement transaction with a guarded update.
type Coupon struct {
	ID              string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Code            string       `json:"code" gorm:"uniqueIndex;type:varchar(50)" validate:"required,min=3,max=50"`
	DiscountType    DiscountType `json:"discount_type" gorm:"type:varchar(10)" validate:"required,oneof=percentage fixed"`
	DiscountValue   int64        `json:"discount_value" validate:"required,gt=0"`
	MinimumPurchase int64        `json:"minimum_purchase" validate:"gte=0"`
	ValidFrom       time.Time    `json:"valid_from" validate:"required"`
	ValidTo         time.Time    `json:"valid_to" validate:"required,gtfield=ValidFrom"`
	Active          bool         `json:"active"`
	UsageLimit      int          `json:"usage_limit" validate:"gte=0"` // 0 means unlimited
	TimesUsed       int          `json:"times_used" validate:"gte=0"`
	gorm.Model
}
