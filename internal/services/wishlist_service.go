package services

import (
	"errors"
	"fmt"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// WishlistService manages a customer's saved products.
type WishlistService struct {
	wishlistRepo repositories.WishlistRepository
	productRepo  repositories.ProductRepository
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlistRepo repositories.WishlistRepository, productRepo repositories.ProductRepository) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// Items returns the user's wishlist with products preloaded.
func (s *WishlistService) Items(userID string) ([]models.WishlistItem, error) {
	return s.wishlistRepo.ItemsByUser(userID)
}

// Add saves a product to the wishlist. Adding twice is a no-op.
func (s *WishlistService) Add(userID, productID string) (*models.WishlistItem, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, repositories.ErrNotFound)
		}
		return nil, err
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlistRepo.Add(item); err != nil {
		return nil, fmt.Errorf("failed to add product %s to wishlist: %w", productID, err)
	}
	item.Product = *product
	return item, nil
}

// Remove drops a product from the wishlist.
func (s *WishlistService) Remove(userID, productID string) error {
	return s.wishlistRepo.Remove(userID, productID)
}
