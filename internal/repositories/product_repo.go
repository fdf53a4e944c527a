package repositories

import (
	"errors"

	"parfum/internal/models"
)

// ErrNotFound is wrapped by repository errors when the requested row does
// not exist, so callers can errors.Is on it regardless of backend.
var ErrNotFound = errors.New("record not found")

// ErrCouponExhausted is returned by SettlementTx.RedeemCoupon when the
// guarded increment finds the coupon already at its usage limit.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

// ProductFilter narrows catalog listings. Zero fields match everything.
type ProductFilter struct {
	CategoryID string
	Brand      string
	Gender     string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(filter ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	Create(category *models.Category) error
	Delete(id string) error
}
