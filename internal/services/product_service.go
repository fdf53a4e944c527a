package services

import (
	"errors"
	"fmt"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// ProductView is a catalog product together with its currently winning
// offer price, if any.
type ProductView struct {
	Product         models.Product       `json:"product"`
	DiscountedPrice int64                `json:"discounted_price"`
	Offer           *models.AppliedOffer `json:"offer,omitempty"`
}

// ProductService handles business logic related to the perfume catalog.
type ProductService struct {
	repo         repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	offers       *OfferService
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, offers *OfferService) *ProductService {
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		offers:       offers,
	}
}

// ListProducts retrieves catalog products matching the filter, each with
// its offer-resolved price.
func (s *ProductService) ListProducts(filter repositories.ProductFilter) ([]ProductView, error) {
	products, err := s.repo.GetAll(filter)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]ProductView, 0, len(products))
	for i := range products {
		view, err := s.priceView(&products[i], now)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// GetProduct retrieves a single product with its offer-resolved price.
func (s *ProductService) GetProduct(id string) (*ProductView, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, repositories.ErrNotFound)
		}
		return nil, err
	}
	return s.priceView(product, time.Now())
}

func (s *ProductService) priceView(product *models.Product, now time.Time) (*ProductView, error) {
	offer, err := s.offers.BestOffer(product, now)
	if err != nil {
		return nil, err
	}
	return &ProductView{
		Product:         *product,
		DiscountedPrice: offerPrice(product.Price, offer),
		Offer:           offer,
	}, nil
}

// CreateProduct creates a new catalog product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.Price < 0 {
		return fmt.Errorf("product price cannot be negative")
	}
	if product.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product.Price < 0 {
		return fmt.Errorf("product price cannot be negative")
	}
	if product.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// ListCategories retrieves all categories.
func (s *ProductService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// CreateCategory creates a new category.
func (s *ProductService) CreateCategory(category *models.Category) error {
	return s.categoryRepo.Create(category)
}

// DeleteCategory deletes a category by its ID.
func (s *ProductService) DeleteCategory(id string) error {
	return s.categoryRepo.Delete(id)
}
