package repositories

import (
	"fmt"
	"time"

	"parfum/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOfferRepository is a GORM implementation of OfferRepository.
type GORMOfferRepository struct {
	db *gorm.DB
}

// NewGORMOfferRepository creates a new instance of GORMOfferRepository.
func NewGORMOfferRepository(db *gorm.DB) *GORMOfferRepository {
	return &GORMOfferRepository{db: db}
}

// ActiveProductOffers retrieves product offers valid at now for one product.
func (r *GORMOfferRepository) ActiveProductOffers(productID string, now time.Time) ([]models.ProductOffer, error) {
	var offers []models.ProductOffer
	err := r.db.
		Where("product_id = ? AND active = ? AND valid_from <= ? AND valid_to >= ?",
			productID, true, now, now).
		Order("discount_percentage DESC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product offers for %s: %w", productID, err)
	}
	return offers, nil
}

// ActiveCategoryOffers retrieves category offers valid at now for one category.
func (r *GORMOfferRepository) ActiveCategoryOffers(categoryID string, now time.Time) ([]models.CategoryOffer, error) {
	var offers []models.CategoryOffer
	err := r.db.
		Where("category_id = ? AND active = ? AND valid_from <= ? AND valid_to >= ?",
			categoryID, true, now, now).
		Order("discount_percentage DESC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get category offers for %s: %w", categoryID, err)
	}
	return offers, nil
}

// CreateProductOffer creates a product offer.
func (r *GORMOfferRepository) CreateProductOffer(offer *models.ProductOffer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if err := r.db.Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create product offer: %w", err)
	}
	return nil
}

// CreateCategoryOffer creates a category offer.
func (r *GORMOfferRepository) CreateCategoryOffer(offer *models.CategoryOffer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if err := r.db.Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create category offer: %w", err)
	}
	return nil
}

// CreateReferralOffer creates a referral offer.
func (r *GORMOfferRepository) CreateReferralOffer(offer *models.ReferralOffer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if err := r.db.Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create referral offer: %w", err)
	}
	return nil
}

// ListProductOffers retrieves all product offers.
func (r *GORMOfferRepository) ListProductOffers() ([]models.ProductOffer, error) {
	var offers []models.ProductOffer
	if err := r.db.Preload("Product").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list product offers: %w", err)
	}
	return offers, nil
}

// ListCategoryOffers retrieves all category offers.
func (r *GORMOfferRepository) ListCategoryOffers() ([]models.CategoryOffer, error) {
	var offers []models.CategoryOffer
	if err := r.db.Preload("Category").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list category offers: %w", err)
	}
	return offers, nil
}

// ListReferralOffers retrieves all referral offers.
func (r *GORMOfferRepository) ListReferralOffers() ([]models.ReferralOffer, error) {
	var offers []models.ReferralOffer
	if err := r.db.Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list referral offers: %w", err)
	}
	return offers, nil
}

// GetReferralByCode retrieves a referral offer by its code,
// case-insensitively.
func (r *GORMOfferRepository) GetReferralByCode(code string) (*models.ReferralOffer, error) {
	var offer models.ReferralOffer
	if err := r.db.First(&offer, "LOWER(code) = LOWER(?)", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("referral offer %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get referral offer %s: %w", code, err)
	}
	return &offer, nil
}

// IncrementReferralUse bumps a referral offer's usage counter, guarded by
// its cap so concurrent uses cannot exceed max_uses.
func (r *GORMOfferRepository) IncrementReferralUse(id string) error {
	res := r.db.Model(&models.ReferralOffer{}).
		Where("id = ? AND (max_uses = 0 OR times_used < max_uses)", id).
		UpdateColumn("times_used", gorm.Expr("times_used + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment referral offer %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("referral offer %s: %w", id, ErrCouponExhausted)
	}
	return nil
}

// DeleteProductOffer deletes a product offer by ID.
func (r *GORMOfferRepository) DeleteProductOffer(id string) error {
	return r.deleteOffer(&models.ProductOffer{}, id)
}

// DeleteCategoryOffer deletes a category offer by ID.
func (r *GORMOfferRepository) DeleteCategoryOffer(id string) error {
	return r.deleteOffer(&models.CategoryOffer{}, id)
}

// DeleteReferralOffer deletes a referral offer by ID.
func (r *GORMOfferRepository) DeleteReferralOffer(id string) error {
	return r.deleteOffer(&models.ReferralOffer{}, id)
}

func (r *GORMOfferRepository) deleteOffer(model interface{}, id string) error {
	res := r.db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete offer %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("offer %s: %w", id, ErrNotFound)
	}
	return nil
}
