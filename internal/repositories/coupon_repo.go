package repositories

import "parfum/internal/models"

// CouponRepository defines the interface for coupon data access. The
// usage counter is never incremented through this interface; redemption
// happens inside the settlement transaction via SettlementTx.RedeemCoupon.
type CouponRepository interface {
	GetByCode(code string) (*models.Coupon, error)
	GetByID(id string) (*models.Coupon, error)
	GetAll() ([]models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id string) error
}
