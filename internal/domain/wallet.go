package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Wallet: mỗi người dùng một ví, balance không bao giờ âm.
// Balance chỉ được thay đổi cùng lúc với một WalletTransaction trong cùng transaction DB.
type Wallet struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TxCredit TransactionType = "credit"
	TxDebit  TransactionType = "debit"
)

// WalletTransaction là một dòng trong sổ cái append-only, không bao giờ sửa hay xóa.
type WalletTransaction struct {
	ID        int64           `json:"id"`
	WalletID  int             `json:"wallet_id"`
	Type      TransactionType `json:"type"`
	Amount    float64         `json:"amount"` // > 0
	Reason    string          `json:"reason"`
	BookingID null.Int        `json:"booking_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type TopUpDTO struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
