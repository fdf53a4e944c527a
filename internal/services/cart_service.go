package services

import (
	"errors"
	"fmt"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// CartService manages the authoritative database cart. Quantities are
// clamped to the per-product cap and to current stock on every write, so
// a cart row never promises more than the shelf holds at write time.
type CartService struct {
	cartRepo         repositories.CartRepository
	wishlistRepo     repositories.WishlistRepository
	productRepo      repositories.ProductRepository
	pricing          *PricingService
	maxQtyPerProduct int
}

// NewCartService creates a new CartService.
func NewCartService(
	cartRepo repositories.CartRepository,
	wishlistRepo repositories.WishlistRepository,
	productRepo repositories.ProductRepository,
	pricing *PricingService,
	maxQtyPerProduct int,
) *CartService {
	return &CartService{
		cartRepo:         cartRepo,
		wishlistRepo:     wishlistRepo,
		productRepo:      productRepo,
		pricing:          pricing,
		maxQtyPerProduct: maxQtyPerProduct,
	}
}

// Add puts a product in the cart, or bumps its quantity if already
// there. The resulting quantity is silently clamped to
// min(cap, stock); adding a wishlisted product removes it from the
// wishlist.
func (s *CartService) Add(userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, repositories.ErrNotFound)
		}
		return nil, err
	}
	if product.Stock < 1 {
		return nil, &InsufficientStockError{
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	item, err := s.cartRepo.Get(userID, productID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if item == nil {
		item = &models.CartItem{UserID: userID, ProductID: productID}
	}
	item.Quantity = clampQuantity(item.Quantity+quantity, s.maxQtyPerProduct, product.Stock)

	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, fmt.Errorf("failed to add product %s to cart: %w", productID, err)
	}

	// Best effort; the wishlist row not existing is the common case.
	_ = s.wishlistRepo.Remove(userID, productID)

	item.Product = *product
	return item, nil
}

// UpdateQuantity sets a cart line's quantity explicitly. Unlike Add it
// refuses rather than clamps when the request exceeds stock, so the
// customer learns the shelf is short instead of silently getting less.
func (s *CartService) UpdateQuantity(userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > s.maxQtyPerProduct {
		quantity = s.maxQtyPerProduct
	}

	item, err := s.cartRepo.Get(userID, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s is not in the cart: %w", productID, repositories.ErrNotFound)
		}
		return nil, err
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, &InsufficientStockError{
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	item.Quantity = quantity
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, fmt.Errorf("failed to update cart quantity: %w", err)
	}
	item.Product = *product
	return item, nil
}

// Remove deletes one product from the cart.
func (s *CartService) Remove(userID, productID string) error {
	return s.cartRepo.Delete(userID, productID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID string) error {
	return s.cartRepo.Clear(userID)
}

// Items returns the raw cart rows with products preloaded.
func (s *CartService) Items(userID string) ([]models.CartItem, error) {
	return s.cartRepo.ItemsByUser(userID)
}

// PricedCart returns the cart lines with resolved offer prices and the
// full amount breakdown, without any coupon. This backs the cart page.
func (s *CartService) PricedCart(userID string) (Breakdown, []PricedLine, error) {
	items, err := s.cartRepo.ItemsByUser(userID)
	if err != nil {
		return Breakdown{}, nil, err
	}
	return s.pricing.Quote(items, nil, time.Now())
}

// Merge folds a guest cart into the user's cart on login. Quantities for
// products present on both sides are summed and then clamped the same
// way Add clamps.
func (s *CartService) Merge(userID string, guestItems []models.CartItem) error {
	for _, guest := range guestItems {
		if guest.Quantity < 1 {
			continue
		}
		if _, err := s.Add(userID, guest.ProductID, guest.Quantity); err != nil {
			var stockErr *InsufficientStockError
			if errors.As(err, &stockErr) {
				continue // out-of-stock guest lines are dropped, not fatal
			}
			return err
		}
	}
	return nil
}

func clampQuantity(q, limit, stock int) int {
	if q > limit {
		q = limit
	}
	if q > stock {
		q = stock
	}
	if q < 1 {
		q = 1
	}
	return q
}
