package repositories

import (
	"fmt"
	"time"

	"parfum/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Product").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Product").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ByCustomer retrieves a customer's orders, newest first.
func (r *GORMOrderRepository) ByCustomer(customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

// ByGroup retrieves every line placed under one checkout's order id.
func (r *GORMOrderRepository) ByGroup(orderGroupID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Product").
		Where("order_id = ?", orderGroupID).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for group %s: %w", orderGroupID, err)
	}
	return orders, nil
}

// Create creates a new order row.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update saves status/timestamp/rating changes to an order.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	res := r.db.Save(order)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for update: %w", order.ID, ErrNotFound)
	}
	return nil
}

// DeliveredBetween retrieves delivered orders whose delivery timestamp
// falls in [from, to), for reporting.
func (r *GORMOrderRepository) DeliveredBetween(from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Where("status = ? AND delivered_at >= ? AND delivered_at < ?",
			models.StatusDelivered, from, to).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get delivered orders: %w", err)
	}
	return orders, nil
}

// GORMReturnRequestRepository is a GORM implementation of
// ReturnRequestRepository.
type GORMReturnRequestRepository struct {
	db *gorm.DB
}

// NewGORMReturnRequestRepository creates a new instance of
// GORMReturnRequestRepository.
func NewGORMReturnRequestRepository(db *gorm.DB) *GORMReturnRequestRepository {
	return &GORMReturnRequestRepository{db: db}
}

// GetByID retrieves a return request by its ID.
func (r *GORMReturnRequestRepository) GetByID(id string) (*models.ReturnRequest, error) {
	var rr models.ReturnRequest
	if err := r.db.Preload("Order").First(&rr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("return request with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get return request by ID %s: %w", id, err)
	}
	return &rr, nil
}

// GetByOrder retrieves the return request for an order, if any.
func (r *GORMReturnRequestRepository) GetByOrder(orderID string) (*models.ReturnRequest, error) {
	var rr models.ReturnRequest
	if err := r.db.First(&rr, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("return request for order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get return request for order %s: %w", orderID, err)
	}
	return &rr, nil
}

// ByStatus retrieves return requests in one status, oldest first.
func (r *GORMReturnRequestRepository) ByStatus(status models.ReturnStatus) ([]models.ReturnRequest, error) {
	var rrs []models.ReturnRequest
	err := r.db.Preload("Order").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&rrs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get return requests by status %s: %w", status, err)
	}
	return rrs, nil
}

// GetAll retrieves all return requests, newest first.
func (r *GORMReturnRequestRepository) GetAll() ([]models.ReturnRequest, error) {
	var rrs []models.ReturnRequest
	if err := r.db.Preload("Order").Order("created_at DESC").Find(&rrs).Error; err != nil {
		return nil, fmt.Errorf("failed to get return requests: %w", err)
	}
	return rrs, nil
}
