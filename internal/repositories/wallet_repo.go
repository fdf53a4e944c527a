package repositories

import "parfum/internal/models"

// WalletRepository defines the interface for wallet reads. Balance
// mutations always run inside a settlement transaction so the ledger row
// and the balance move together.
type WalletRepository interface {
	GetByUser(userID string) (*models.Wallet, error)
	Create(wallet *models.Wallet) error
	TransactionsByWallet(walletID string) ([]models.WalletTransaction, error)
}
