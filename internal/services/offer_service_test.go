package services

import (
	"testing"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestBestOfferPicksHighestPercentage(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewOfferService(store)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	from, to := testWindow(now)

	product := &models.Product{
		ID:         "11111111-1111-1111-1111-111111111111",
		Name:       "Oud Royale",
		Price:      1000,
		CategoryID: "cat-1",
	}

	assert.NoError(t, store.CreateProductOffer(&models.ProductOffer{
		OfferRule: models.OfferRule{Name: "Weak", DiscountPercentage: 5, ValidFrom: from, ValidTo: to, Active: true},
		ProductID: product.ID,
	}))
	assert.NoError(t, store.CreateCategoryOffer(&models.CategoryOffer{
		OfferRule:  models.OfferRule{Name: "Strong", DiscountPercentage: 20, ValidFrom: from, ValidTo: to, Active: true},
		CategoryID: product.CategoryID,
	}))

	offer, err := svc.BestOffer(product, now)
	assert.NoError(t, err)
	assert.NotNil(t, offer)
	assert.Equal(t, models.OfferKindCategory, offer.Kind)
	assert.Equal(t, 20, offer.Rule.DiscountPercentage)

	price, err := svc.DiscountedPrice(product, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(800), price)
}

func TestBestOfferProductWinsTie(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewOfferService(store)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	from, to := testWindow(now)

	product := &models.Product{
		ID:         "11111111-1111-1111-1111-111111111111",
		Name:       "Oud Royale",
		Price:      1000,
		CategoryID: "cat-1",
	}

	assert.NoError(t, store.CreateProductOffer(&models.ProductOffer{
		OfferRule: models.OfferRule{Name: "Product10", DiscountPercentage: 10, ValidFrom: from, ValidTo: to, Active: true},
		ProductID: product.ID,
	}))
	assert.NoError(t, store.CreateCategoryOffer(&models.CategoryOffer{
		OfferRule:  models.OfferRule{Name: "Category10", DiscountPercentage: 10, ValidFrom: from, ValidTo: to, Active: true},
		CategoryID: product.CategoryID,
	}))

	offer, err := svc.BestOffer(product, now)
	assert.NoError(t, err)
	assert.NotNil(t, offer)
	assert.Equal(t, models.OfferKindProduct, offer.Kind)
}

func TestBestOfferIgnoresInactiveAndExpired(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewOfferService(store)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	from, to := testWindow(now)

	product := &models.Product{ID: "11111111-1111-1111-1111-111111111111", Price: 1000}

	assert.NoError(t, store.CreateProductOffer(&models.ProductOffer{
		OfferRule: models.OfferRule{Name: "Inactive", DiscountPercentage: 50, ValidFrom: from, ValidTo: to, Active: false},
		ProductID: product.ID,
	}))
	assert.NoError(t, store.CreateProductOffer(&models.ProductOffer{
		OfferRule: models.OfferRule{
			Name: "Expired", DiscountPercentage: 50,
			ValidFrom: now.Add(-48 * time.Hour), ValidTo: now.Add(-24 * time.Hour), Active: true,
		},
		ProductID: product.ID,
	}))

	offer, err := svc.BestOffer(product, now)
	assert.NoError(t, err)
	assert.Nil(t, offer)

	price, err := svc.DiscountedPrice(product, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), price)
}

func TestValidateReferral(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewOfferService(store)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	from, to := testWindow(now)

	assert.NoError(t, store.CreateReferralOffer(&models.ReferralOffer{
		OfferRule: models.OfferRule{Name: "Friends", DiscountPercentage: 15, ValidFrom: from, ValidTo: to, Active: true},
		Code:      "FRIEND15",
		MaxUses:   1,
	}))

	offer, err := svc.ValidateReferral("friend15", now)
	assert.NoError(t, err)
	assert.Equal(t, "FRIEND15", offer.Code)

	assert.NoError(t, svc.RedeemReferral(offer.ID))

	// The cap is exhausted now.
	_, err = svc.ValidateReferral("FRIEND15", now)
	assert.Error(t, err)

	_, err = svc.ValidateReferral("NOPE", now)
	assert.Error(t, err)
}
