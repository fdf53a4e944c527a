package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the direction of a wallet movement.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus tracks a wallet transaction's settlement. Balance
// changes apply only once a transaction is completed.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Wallet transaction id prefixes. The prefix plus embedded order id lets
// a transaction be reverse-correlated to its origin.
const (
	TxnPrefixRefund   = "REFUND"
	TxnPrefixCancel   = "CANCEL"
	TxnPrefixPayment  = "TXN"
	TxnPrefixTopUp    = "WALLET"
	TxnPrefixWithdraw = "WITHDRAW"
)

// Wallet is a customer's store-credit balance. One per user; the balance
// equals completed deposits minus completed withdrawals at all times.
type Wallet struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletTransaction is one append-only entry in the wallet ledger.
type WalletTransaction struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	WalletID      string            `json:"wallet_id" gorm:"type:varchar(36);index"`
	TransactionID string            `json:"transaction_id" gorm:"uniqueIndex;type:varchar(100)"`
	Type          TransactionType   `json:"type" gorm:"type:varchar(20)"`
	Amount        int64             `json:"amount"`
	Status        TransactionStatus `json:"status" gorm:"type:varchar(20)"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewTransactionID builds a ledger transaction id of the form
// PREFIX-REF-XXXXXX (ref omitted when empty), with a random upper-hex
// suffix for uniqueness.
func NewTransactionID(prefix, ref string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	if ref == "" {
		return fmt.Sprintf("%s-%s", prefix, suffix)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, ref, suffix)
}
