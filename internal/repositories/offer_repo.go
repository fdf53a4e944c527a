package repositories

import (
	"time"

	"parfum/internal/models"
)

// OfferRepository defines the interface for offer data access. The
// Active* methods return offers filtered to active rows whose validity
// window contains now, ordered by discount percentage descending.
type OfferRepository interface {
	ActiveProductOffers(productID string, now time.Time) ([]models.ProductOffer, error)
	ActiveCategoryOffers(categoryID string, now time.Time) ([]models.CategoryOffer, error)

	CreateProductOffer(offer *models.ProductOffer) error
	CreateCategoryOffer(offer *models.CategoryOffer) error
	CreateReferralOffer(offer *models.ReferralOffer) error
	ListProductOffers() ([]models.ProductOffer, error)
	ListCategoryOffers() ([]models.CategoryOffer, error)
	ListReferralOffers() ([]models.ReferralOffer, error)
	GetReferralByCode(code string) (*models.ReferralOffer, error)
	IncrementReferralUse(id string) error
	DeleteProductOffer(id string) error
	DeleteCategoryOffer(id string) error
	DeleteReferralOffer(id string) error
}
