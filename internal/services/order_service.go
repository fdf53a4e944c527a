package services

import (
	"errors"
	"fmt"
	"time"

	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/pkg/rabbitmq"
)

// OrderService owns every status mutation after placement: cancellation
// with refund and restock, the return flow, admin status updates and
// ratings. Transitions are checked against the declared state machine;
// side effects run inside settlement transactions.
type OrderService struct {
	orderRepo        repositories.OrderRepository
	returnRepo       repositories.ReturnRequestRepository
	store            repositories.SettlementStore
	wallets          *WalletService
	events           EventPublisher
	convenienceFee   int64
	returnWindowDays int
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	returnRepo repositories.ReturnRequestRepository,
	store repositories.SettlementStore,
	wallets *WalletService,
	events EventPublisher,
	convenienceFee int64,
	returnWindowDays int,
) *OrderService {
	return &OrderService{
		orderRepo:        orderRepo,
		returnRepo:       returnRepo,
		store:            store,
		wallets:          wallets,
		events:           events,
		convenienceFee:   convenienceFee,
		returnWindowDays: returnWindowDays,
	}
}

// GetAllOrders retrieves all orders (admin surface).
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// OrdersByCustomer retrieves a customer's orders, newest first.
func (s *OrderService) OrdersByCustomer(customerID string) ([]models.Order, error) {
	return s.orderRepo.ByCustomer(customerID)
}

// GetOrder retrieves one order, scoped to the customer when customerID
// is non-empty.
func (s *OrderService) GetOrder(orderID, customerID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if customerID != "" && order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Cancel cancels a processing order: status moves to cancelled, the
// ordered quantity returns to stock, and the customer's wallet receives
// price*quantity + convenience fee - coupon discount as one completed
// deposit. All of it commits or none of it does. customerID is empty for
// admin-initiated cancellation.
func (s *OrderService) Cancel(orderID, customerID, reason string) (*models.WalletTransaction, error) {
	order, err := s.GetOrder(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.wallets.EnsureWallet(order.CustomerID); err != nil {
		return nil, err
	}

	var refund models.WalletTransaction
	err = s.store.InTransaction(func(tx repositories.SettlementTx) error {
		locked, err := tx.OrderForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked.Status != models.StatusProcessing {
			return &InvalidTransitionError{From: locked.Status, To: models.StatusCancelled}
		}

		product, err := tx.ProductForUpdate(locked.ProductID)
		if err != nil {
			return err
		}
		product.Stock += locked.Quantity
		if err := tx.SaveProduct(product); err != nil {
			return err
		}

		wallet, err := tx.WalletForUpdate(locked.CustomerID)
		if err != nil {
			return err
		}
		amount := locked.LineTotal() + s.convenienceFee - locked.CouponDiscount
		refund = models.WalletTransaction{
			WalletID:      wallet.ID,
			TransactionID: models.NewTransactionID(models.TxnPrefixCancel, locked.ID),
			Type:          models.TransactionDeposit,
			Amount:        amount,
			Status:        models.TransactionCompleted,
		}
		if err := tx.CreateWalletTransaction(&refund); err != nil {
			return err
		}
		wallet.Balance += amount
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}

		now := time.Now()
		locked.Status = models.StatusCancelled
		locked.CancelledAt = &now
		locked.CancelReason = reason
		return tx.SaveOrder(locked)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(s.events, rabbitmq.RouteOrderCancelled, map[string]interface{}{
		"order_id":    orderID,
		"customer_id": order.CustomerID,
		"refund":      refund.Amount,
	})
	return &refund, nil
}

// RequestReturn opens a return request on a delivered order within the
// return window, moving the order to return_requested.
func (s *OrderService) RequestReturn(orderID, customerID, reason, description, condition, solution string) (*models.ReturnRequest, error) {
	order, err := s.GetOrder(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusDelivered {
		return nil, &InvalidTransitionError{From: order.Status, To: models.StatusReturnRequested}
	}
	if order.DeliveredAt == nil ||
		time.Since(*order.DeliveredAt) > time.Duration(s.returnWindowDays)*24*time.Hour {
		return nil, &ReturnWindowExpiredError{WindowDays: s.returnWindowDays}
	}
	if existing, err := s.returnRepo.GetByOrder(orderID); err == nil && existing != nil {
		return nil, ErrReturnAlreadyRequested
	}

	var request models.ReturnRequest
	err = s.store.InTransaction(func(tx repositories.SettlementTx) error {
		locked, err := tx.OrderForUpdate(orderID)
		if err != nil {
			return err
		}
		if !locked.Status.CanTransition(models.StatusReturnRequested) {
			return &InvalidTransitionError{From: locked.Status, To: models.StatusReturnRequested}
		}

		request = models.ReturnRequest{
			OrderID:           orderID,
			Reason:            reason,
			Description:       description,
			Condition:         condition,
			PreferredSolution: solution,
			Status:            models.ReturnPending,
		}
		if err := tx.CreateReturnRequest(&request); err != nil {
			return err
		}

		locked.Status = models.StatusReturnRequested
		return tx.SaveOrder(locked)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Return resolution actions available to admins.
const (
	ReturnActionApprove  = "approve"
	ReturnActionReject   = "reject"
	ReturnActionComplete = "complete"
)

// ResolveReturn applies an admin decision to a return request. Approve
// and reject resolve a pending request; complete closes an approved one,
// restocks the product and, when the customer asked for a refund,
// deposits price*quantity - coupon discount to their wallet. Resolution
// states are terminal for the request.
func (s *OrderService) ResolveReturn(requestID, action, adminNotes string) (*models.ReturnRequest, error) {
	current, err := s.returnRepo.GetByID(requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("return request %s: %w", requestID, repositories.ErrNotFound)
		}
		return nil, err
	}
	if action == ReturnActionComplete {
		order, err := s.GetOrder(current.OrderID, "")
		if err != nil {
			return nil, err
		}
		if _, err := s.wallets.EnsureWallet(order.CustomerID); err != nil {
			return nil, err
		}
	}

	var resolved *models.ReturnRequest
	err = s.store.InTransaction(func(tx repositories.SettlementTx) error {
		request, err := tx.ReturnRequestForUpdate(requestID)
		if err != nil {
			return err
		}
		order, err := tx.OrderForUpdate(request.OrderID)
		if err != nil {
			return err
		}
		now := time.Now()

		switch action {
		case ReturnActionApprove:
			if request.Status != models.ReturnPending {
				return fmt.Errorf("return request %s is already %s", requestID, request.Status)
			}
			if !order.Status.CanTransition(models.StatusReturnApproved) {
				return &InvalidTransitionError{From: order.Status, To: models.StatusReturnApproved}
			}
			request.Status = models.ReturnApproved
			order.Status = models.StatusReturnApproved

		case ReturnActionReject:
			if request.Status != models.ReturnPending {
				return fmt.Errorf("return request %s is already %s", requestID, request.Status)
			}
			if !order.Status.CanTransition(models.StatusReturnRejected) {
				return &InvalidTransitionError{From: order.Status, To: models.StatusReturnRejected}
			}
			request.Status = models.ReturnRejected
			order.Status = models.StatusReturnRejected

		case ReturnActionComplete:
			if request.Status != models.ReturnApproved {
				return fmt.Errorf("return request %s must be approved before completion (currently %s)",
					requestID, request.Status)
			}
			if !order.Status.CanTransition(models.StatusReturned) {
				return &InvalidTransitionError{From: order.Status, To: models.StatusReturned}
			}
			request.Status = models.ReturnCompleted
			order.Status = models.StatusReturned

			product, err := tx.ProductForUpdate(order.ProductID)
			if err != nil {
				return err
			}
			product.Stock += order.Quantity
			if err := tx.SaveProduct(product); err != nil {
				return err
			}

			if request.PreferredSolution == models.SolutionRefund {
				wallet, err := tx.WalletForUpdate(order.CustomerID)
				if err != nil {
					return err
				}
				amount := order.LineTotal() - order.CouponDiscount
				refund := models.WalletTransaction{
					WalletID:      wallet.ID,
					TransactionID: models.NewTransactionID(models.TxnPrefixRefund, order.ID),
					Type:          models.TransactionDeposit,
					Amount:        amount,
					Status:        models.TransactionCompleted,
				}
				if err := tx.CreateWalletTransaction(&refund); err != nil {
					return err
				}
				wallet.Balance += amount
				if err := tx.SaveWallet(wallet); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("unknown return action: %s", action)
		}

		request.AdminNotes = adminNotes
		request.ProcessedDate = &now
		if err := tx.SaveReturnRequest(request); err != nil {
			return err
		}
		if err := tx.SaveOrder(order); err != nil {
			return err
		}
		resolved = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action == ReturnActionComplete && resolved.PreferredSolution == models.SolutionRefund {
		publishEvent(s.events, rabbitmq.RouteRefundIssued, map[string]interface{}{
			"order_id":          resolved.OrderID,
			"return_request_id": resolved.ID,
		})
	}
	return resolved, nil
}

// UpdateStatus is the admin direct status update: any declared status is
// accepted, delivered and cancelled stamp their timestamps, and no stock
// or wallet side effects run. This path records external fulfillment
// truth; refundable cancellation goes through Cancel instead.
func (s *OrderService) UpdateStatus(orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status: %s", status)
	}
	order, err := s.GetOrder(orderID, "")
	if err != nil {
		return err
	}

	now := time.Now()
	switch status {
	case models.StatusDelivered:
		order.DeliveredAt = &now
	case models.StatusCancelled:
		order.CancelledAt = &now
	}
	order.Status = status
	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}
	return nil
}

// RateOrder records a 0-5 rating on a delivered order.
func (s *OrderService) RateOrder(orderID, customerID string, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5, got %d", rating)
	}
	order, err := s.GetOrder(orderID, customerID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusDelivered {
		return fmt.Errorf("only delivered orders can be rated (currently %s)", order.Status)
	}
	order.Rating = rating
	return s.orderRepo.Update(order)
}

// ReturnsByStatus lists return requests in one status (admin queue).
func (s *OrderService) ReturnsByStatus(status models.ReturnStatus) ([]models.ReturnRequest, error) {
	return s.returnRepo.ByStatus(status)
}

// AllReturns lists every return request.
func (s *OrderService) AllReturns() ([]models.ReturnRequest, error) {
	return s.returnRepo.GetAll()
}
