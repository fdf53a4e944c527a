package repositories

import (
	"time"

	"parfum/internal/models"
)

// OrderRepository defines the interface for read access and simple
// updates to orders. Status changes with side effects (cancellation,
// returns) go through the settlement store instead.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	ByCustomer(customerID string) ([]models.Order, error)
	ByGroup(orderGroupID string) ([]models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	DeliveredBetween(from, to time.Time) ([]models.Order, error)
}

// ReturnRequestRepository defines the interface for return request reads.
// Creation and resolution happen inside settlement transactions.
type ReturnRequestRepository interface {
	GetByID(id string) (*models.ReturnRequest, error)
	GetByOrder(orderID string) (*models.ReturnRequest, error)
	ByStatus(status models.ReturnStatus) ([]models.ReturnRequest, error)
	GetAll() ([]models.ReturnRequest, error)
}
