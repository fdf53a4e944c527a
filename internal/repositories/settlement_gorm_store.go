package repositories

import (
	"fmt"

	"parfum/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSettlementStore is a GORM implementation of SettlementStore backed
// by database transactions with SELECT ... FOR UPDATE row locks.
type GORMSettlementStore struct {
	db *gorm.DB
}

// NewGORMSettlementStore creates a new instance of GORMSettlementStore.
func NewGORMSettlementStore(db *gorm.DB) *GORMSettlementStore {
	return &GORMSettlementStore{db: db}
}

// InTransaction runs fn inside one database transaction. Any error from
// fn rolls back every write made through the SettlementTx.
func (s *GORMSettlementStore) InTransaction(fn func(tx SettlementTx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormSettlementTx{tx: tx})
	})
}

type gormSettlementTx struct {
	tx *gorm.DB
}

// locked returns the transaction handle with a FOR UPDATE clause where
// the dialect supports one. SQLite serializes writers itself and rejects
// the syntax.
func (t *gormSettlementTx) locked() *gorm.DB {
	if t.tx.Dialector.Name() == "sqlite" {
		return t.tx
	}
	return t.tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormSettlementTx) ProductForUpdate(id string) (*models.Product, error) {
	var product models.Product
	if err := t.locked().First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock product %s: %w", id, err)
	}
	return &product, nil
}

func (t *gormSettlementTx) SaveProduct(product *models.Product) error {
	if err := t.tx.Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return nil
}

func (t *gormSettlementTx) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := t.tx.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (t *gormSettlementTx) OrderForUpdate(id string) (*models.Order, error) {
	var order models.Order
	if err := t.locked().First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock order %s: %w", id, err)
	}
	return &order, nil
}

func (t *gormSettlementTx) SaveOrder(order *models.Order) error {
	if err := t.tx.Save(order).Error; err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return nil
}

func (t *gormSettlementTx) RedeemCoupon(couponID string) error {
	res := t.tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR times_used < usage_limit)", couponID).
		UpdateColumn("times_used", gorm.Expr("times_used + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", couponID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s: %w", couponID, ErrCouponExhausted)
	}
	return nil
}

func (t *gormSettlementTx) WalletForUpdate(userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := t.locked().First(&wallet, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("wallet for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

func (t *gormSettlementTx) SaveWallet(wallet *models.Wallet) error {
	if err := t.tx.Save(wallet).Error; err != nil {
		return fmt.Errorf("failed to save wallet %s: %w", wallet.ID, err)
	}
	return nil
}

func (t *gormSettlementTx) CreateWalletTransaction(txn *models.WalletTransaction) error {
	if err := t.tx.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create wallet transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

func (t *gormSettlementTx) SaveWalletTransaction(txn *models.WalletTransaction) error {
	if err := t.tx.Save(txn).Error; err != nil {
		return fmt.Errorf("failed to save wallet transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

func (t *gormSettlementTx) CreateReturnRequest(rr *models.ReturnRequest) error {
	if rr.ID == "" {
		rr.ID = uuid.New().String()
	}
	if err := t.tx.Create(rr).Error; err != nil {
		return fmt.Errorf("failed to create return request: %w", err)
	}
	return nil
}

func (t *gormSettlementTx) ReturnRequestForUpdate(id string) (*models.ReturnRequest, error) {
	var rr models.ReturnRequest
	if err := t.locked().First(&rr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("return request with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock return request %s: %w", id, err)
	}
	return &rr, nil
}

func (t *gormSettlementTx) SaveReturnRequest(rr *models.ReturnRequest) error {
	if err := t.tx.Save(rr).Error; err != nil {
		return fmt.Errorf("failed to save return request %s: %w", rr.ID, err)
	}
	return nil
}

func (t *gormSettlementTx) DeleteCartItems(userID string) error {
	if err := t.tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}

func (t *gormSettlementTx) DeleteWishlistItem(userID, productID string) error {
	err := t.tx.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}
