package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

type pgWalletRepository struct {
	db *sql.DB
}

func NewPgWalletRepository(db *sql.DB) repository.WalletRepository {
	return &pgWalletRepository{db: db}
}

func (r *pgWalletRepository) FindByUserID(ctx context.Context, userID int) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	query := `SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("WalletRepository.FindByUserID: %w", err)
	}
	w.CreatedAt = w.CreatedAt.In(time.UTC)
	w.UpdatedAt = w.UpdatedAt.In(time.UTC)
	return w, nil
}

func (r *pgWalletRepository) insertTransaction(ctx context.Context, tx *sql.Tx, walletID int, txType domain.TransactionType, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	wt := &domain.WalletTransaction{WalletID: walletID, Type: txType, Amount: amount, Reason: reason}
	var bookingIDVal sql.NullInt64
	if bookingID != nil {
		bookingIDVal = sql.NullInt64{Int64: int64(*bookingID), Valid: true}
		wt.BookingID.SetValid(int64(*bookingID))
	}
	query := `INSERT INTO wallet_transactions (wallet_id, type, amount, reason, booking_id, created_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, walletID, txType, amount, reason, bookingIDVal).
		Scan(&wt.ID, &wt.CreatedAt)
	if err != nil {
		return nil, err
	}
	wt.CreatedAt = wt.CreatedAt.In(time.UTC)
	return wt, nil
}

// Credit cộng tiền và ghi dòng sổ cái trong cùng một transaction DB.
// Ví chưa tồn tại thì được tạo luôn (fetch-or-create).
func (r *pgWalletRepository) Credit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("WalletRepository.Credit: số tiền phải > 0")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("WalletRepository.Credit (begin tx): %w", err)
	}
	defer tx.Rollback()

	var walletID int
	query := `INSERT INTO wallets (user_id, balance, created_at, updated_at)
	           VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           ON CONFLICT (user_id)
	           DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = CURRENT_TIMESTAMP
	           RETURNING id`
	if err := tx.QueryRowContext(ctx, query, userID, amount).Scan(&walletID); err != nil {
		return nil, fmt.Errorf("WalletRepository.Credit: %w", err)
	}

	wt, err := r.insertTransaction(ctx, tx, walletID, domain.TxCredit, amount, reason, bookingID)
	if err != nil {
		return nil, fmt.Errorf("WalletRepository.Credit (inserting transaction): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("WalletRepository.Credit (commit): %w", err)
	}
	return wt, nil
}

// Debit trừ tiền với điều kiện balance >= amount nằm ngay trong WHERE của UPDATE,
// nên không bao giờ trừ một phần và không bao giờ làm balance âm.
func (r *pgWalletRepository) Debit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("WalletRepository.Debit: số tiền phải > 0")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("WalletRepository.Debit (begin tx): %w", err)
	}
	defer tx.Rollback()

	var walletID int
	query := `UPDATE wallets
	           SET balance = balance - $2, updated_at = CURRENT_TIMESTAMP
	           WHERE user_id = $1 AND balance >= $2
	           RETURNING id`
	err = tx.QueryRowContext(ctx, query, userID, amount).Scan(&walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Phân biệt ví không tồn tại với ví không đủ tiền.
			var exists bool
			if checkErr := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); checkErr != nil {
				return nil, fmt.Errorf("WalletRepository.Debit (checking wallet): %w", checkErr)
			}
			if !exists {
				return nil, repository.ErrNotFound
			}
			return nil, repository.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("WalletRepository.Debit: %w", err)
	}

	wt, err := r.insertTransaction(ctx, tx, walletID, domain.TxDebit, amount, reason, bookingID)
	if err != nil {
		return nil, fmt.Errorf("WalletRepository.Debit (inserting transaction): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("WalletRepository.Debit (commit): %w", err)
	}
	return wt, nil
}

func (r *pgWalletRepository) Transactions(ctx context.Context, walletID int, limit, offset int) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, wallet_id, type, amount, reason, booking_id, created_at
	           FROM wallet_transactions
	           WHERE wallet_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("WalletRepository.Transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.WalletTransaction
	for rows.Next() {
		var wt domain.WalletTransaction
		if err := rows.Scan(&wt.ID, &wt.WalletID, &wt.Type, &wt.Amount, &wt.Reason, &wt.BookingID, &wt.CreatedAt); err != nil {
			return nil, fmt.Errorf("WalletRepository.Transactions (scanning row): %w", err)
		}
		wt.CreatedAt = wt.CreatedAt.In(time.UTC)
		transactions = append(transactions, wt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("WalletRepository.Transactions (rows error): %w", err)
	}
	return transactions, nil
}
