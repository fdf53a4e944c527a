package repositories

import "parfum/internal/models"

// SettlementStore runs multi-row settlement mutations as one atomic unit.
// Order placement, cancellation, returns and wallet adjustments all go
// through it: either every write in the callback commits or none do.
type SettlementStore interface {
	InTransaction(fn func(tx SettlementTx) error) error
}

// SettlementTx is the set of reads and writes available inside a
// settlement transaction. The *ForUpdate methods take row-level locks so
// two checkouts racing for the last unit of stock, or two refunds against
// one wallet, serialize instead of both reading the same stale row.
type SettlementTx interface {
	ProductForUpdate(id string) (*models.Product, error)
	SaveProduct(product *models.Product) error

	CreateOrder(order *models.Order) error
	OrderForUpdate(id string) (*models.Order, error)
	SaveOrder(order *models.Order) error

	// RedeemCoupon increments times_used by one, guarded by the usage
	// limit. Returns ErrCouponExhausted when the limit was already hit.
	RedeemCoupon(couponID string) error

	WalletForUpdate(userID string) (*models.Wallet, error)
	SaveWallet(wallet *models.Wallet) error
	CreateWalletTransaction(txn *models.WalletTransaction) error
	SaveWalletTransaction(txn *models.WalletTransaction) error

	CreateReturnRequest(rr *models.ReturnRequest) error
	ReturnRequestForUpdate(id string) (*models.ReturnRequest, error)
	SaveReturnRequest(rr *models.ReturnRequest) error

	DeleteCartItems(userID string) error
	DeleteWishlistItem(userID, productID string) error
}
