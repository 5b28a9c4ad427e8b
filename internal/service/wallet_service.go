package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

var ErrInvalidAmount = errors.New("số tiền không hợp lệ")

// WalletService là nơi duy nhất được phép đổi balance của ví. Repo đảm bảo mỗi
// thay đổi balance đi kèm đúng một dòng wallet_transactions trong cùng transaction,
// nên bất biến balance == Σcredit − Σdebit luôn kiểm chứng được từ sổ cái.
type WalletService struct {
	walletRepo repository.WalletRepository
}

func NewWalletService(walletRepo repository.WalletRepository) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

func (s *WalletService) Credit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: số tiền credit phải > 0", ErrInvalidAmount)
	}
	return s.walletRepo.Credit(ctx, userID, amount, reason, bookingID)
}

func (s *WalletService) Debit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: số tiền debit phải > 0", ErrInvalidAmount)
	}
	return s.walletRepo.Debit(ctx, userID, amount, reason, bookingID)
}

func (s *WalletService) GetWallet(ctx context.Context, userID int) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Ví chưa có giao dịch nào: trả về ví rỗng thay vì 404.
			return &domain.Wallet{UserID: userID, Balance: 0}, nil
		}
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]domain.WalletTransaction, error) {
	wallet, err := s.walletRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.WalletTransaction{}, nil
		}
		return nil, err
	}
	return s.walletRepo.Transactions(ctx, wallet.ID, limit, offset)
}
