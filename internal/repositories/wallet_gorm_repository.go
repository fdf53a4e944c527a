package repositories

import (
	"fmt"

	"parfum/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMWalletRepository is a GORM implementation of WalletRepository.
type GORMWalletRepository struct {
	db *gorm.DB
}

// NewGORMWalletRepository creates a new instance of GORMWalletRepository.
func NewGORMWalletRepository(db *gorm.DB) *GORMWalletRepository {
	return &GORMWalletRepository{db: db}
}

// GetByUser retrieves a user's wallet.
func (r *GORMWalletRepository) GetByUser(userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("wallet for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

// Create creates a wallet with a zero balance.
func (r *GORMWalletRepository) Create(wallet *models.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	if err := r.db.Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// TransactionsByWallet retrieves a wallet's ledger, newest first.
func (r *GORMWalletRepository) TransactionsByWallet(walletID string) ([]models.WalletTransaction, error) {
	var txns []models.WalletTransaction
	err := r.db.Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for wallet %s: %w", walletID, err)
	}
	return txns, nil
}
