package services

import (
	"errors"
	"fmt"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// WalletService manages store-credit balances. Every balance change is
// paired with exactly one ledger row in the same transaction, and the
// balance moves only when the row is marked completed.
type WalletService struct {
	walletRepo repositories.WalletRepository
	store      repositories.SettlementStore
}

// NewWalletService creates a new WalletService.
func NewWalletService(walletRepo repositories.WalletRepository, store repositories.SettlementStore) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		store:      store,
	}
}

// EnsureWallet returns the user's wallet, creating an empty one if none
// exists yet.
func (s *WalletService) EnsureWallet(userID string) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUser(userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	wallet = &models.Wallet{UserID: userID}
	if err := s.walletRepo.Create(wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// Balance returns the user's current balance (zero for a fresh wallet).
func (s *WalletService) Balance(userID string) (int64, error) {
	wallet, err := s.EnsureWallet(userID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Transactions returns the user's ledger, newest first.
func (s *WalletService) Transactions(userID string) ([]models.WalletTransaction, error) {
	wallet, err := s.EnsureWallet(userID)
	if err != nil {
		return nil, err
	}
	return s.walletRepo.TransactionsByWallet(wallet.ID)
}

// Deposit credits the wallet and records a completed deposit row with an
// id built from prefix and ref (e.g. CANCEL-{orderID}-XXXXXX).
func (s *WalletService) Deposit(userID string, amount int64, prefix, ref string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive, got %d", amount)
	}
	if _, err := s.EnsureWallet(userID); err != nil {
		return nil, err
	}

	var txn *models.WalletTransaction
	err := s.store.InTransaction(func(tx repositories.SettlementTx) error {
		wallet, err := tx.WalletForUpdate(userID)
		if err != nil {
			return err
		}
		txn = &models.WalletTransaction{
			WalletID:      wallet.ID,
			TransactionID: models.NewTransactionID(prefix, ref),
			Type:          models.TransactionDeposit,
			Amount:        amount,
			Status:        models.TransactionPending,
		}
		if err := tx.CreateWalletTransaction(txn); err != nil {
			return err
		}
		wallet.Balance += amount
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}
		txn.Status = models.TransactionCompleted
		return tx.SaveWalletTransaction(txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Withdraw debits the wallet, failing with InsufficientBalanceError when
// the balance cannot cover the amount. The balance check happens against
// the locked row, so concurrent withdrawals cannot overdraw.
func (s *WalletService) Withdraw(userID string, amount int64, prefix, ref string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive, got %d", amount)
	}
	if _, err := s.EnsureWallet(userID); err != nil {
		return nil, err
	}

	var txn *models.WalletTransaction
	err := s.store.InTransaction(func(tx repositories.SettlementTx) error {
		wallet, err := tx.WalletForUpdate(userID)
		if err != nil {
			return err
		}
		if wallet.Balance < amount {
			return &InsufficientBalanceError{Required: amount, Available: wallet.Balance}
		}
		txn = &models.WalletTransaction{
			WalletID:      wallet.ID,
			TransactionID: models.NewTransactionID(prefix, ref),
			Type:          models.TransactionWithdrawal,
			Amount:        amount,
			Status:        models.TransactionPending,
		}
		if err := tx.CreateWalletTransaction(txn); err != nil {
			return err
		}
		wallet.Balance -= amount
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}
		txn.Status = models.TransactionCompleted
		return tx.SaveWalletTransaction(txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}
