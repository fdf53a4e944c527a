package repositories

import "parfum/internal/models"

// CartRepository defines the interface for cart data access. The cart in
// the database is the single authoritative cart; there is no session
// cart consulted at settlement time.
type CartRepository interface {
	ItemsByUser(userID string) ([]models.CartItem, error)
	Get(userID, productID string) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	Delete(userID, productID string) error
	Clear(userID string) error
}

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	ItemsByUser(userID string) ([]models.WishlistItem, error)
	Add(item *models.WishlistItem) error
	Remove(userID, productID string) error
}
