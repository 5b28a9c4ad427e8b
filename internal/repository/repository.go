package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")

// ErrSpotNotAcquired là kết quả "không giành được chỗ" khi hold/occupy thất bại
// vì thua cuộc đua hoặc chỗ đang occupied/closed. Đây không phải lỗi hệ thống.
var ErrSpotNotAcquired = errors.New("chỗ đỗ không còn khả dụng để giữ")

var ErrInsufficientFunds = errors.New("số dư ví không đủ")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int) (*domain.Vehicle, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Vehicle, error)
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	Delete(ctx context.Context, id int) error
}

type ParkingSpotRepository interface {
	Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error)
	Delete(ctx context.Context, id int) error

	// HoldIfAvailable là một UPDATE có điều kiện duy nhất: chỉ thành công khi chỗ
	// đang available, hoặc đang held nhưng hold đã hết hạn (hết hạn lười — không có
	// timer nào xóa hold cũ). Thua cuộc đua trả về ErrSpotNotAcquired.
	HoldIfAvailable(ctx context.Context, id int, userID int, expiresAt time.Time, now time.Time) (*domain.ParkingSpot, error)
	// OccupyHeld: held -> occupied, xóa held_by/hold_expires_at.
	OccupyHeld(ctx context.Context, id int) (*domain.ParkingSpot, error)
	// Release: occupied hoặc held (bất kỳ ai giữ) -> available.
	Release(ctx context.Context, id int) (*domain.ParkingSpot, error)
	// CloseSpot từ chối đóng chỗ đang occupied. ReopenSpot chỉ mở chỗ đang closed.
	CloseSpot(ctx context.Context, id int) (*domain.ParkingSpot, error)
	ReopenSpot(ctx context.Context, id int) (*domain.ParkingSpot, error)

	CountByStatus(ctx context.Context, lotID int) (*domain.LotAvailability, error)
}

type FestivalRepository interface {
	Create(ctx context.Context, festival *domain.Festival) (*domain.Festival, error)
	FindAll(ctx context.Context) ([]domain.Festival, error)
	// FindActiveOn trả về festival (nếu có) mà [start_date, end_date] chứa thời điểm t.
	FindActiveOn(ctx context.Context, t time.Time) (*domain.Festival, error)
	Delete(ctx context.Context, id int) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id int) (*domain.Booking, error)
	Find(ctx context.Context, filter domain.BookingFilterDTO) ([]domain.Booking, error)
	// FindOverdueActive trả về các booking active có end_time < now (cho sweeper).
	FindOverdueActive(ctx context.Context, now time.Time) ([]domain.Booking, error)

	// Các chuyển trạng thái đều là UPDATE có điều kiện trên status; trả về false
	// khi trạng thái hiện tại không cho phép chuyển (đã bị claim bởi bên khác).
	MarkActive(ctx context.Context, id int, checkedInAt time.Time) (bool, error)
	// CompleteIfActive là bước "claim" của check-out: active -> completed.
	CompleteIfActive(ctx context.Context, id int, at time.Time) (bool, error)
	CancelIfOpen(ctx context.Context, id int) (bool, error)
	// ExtendIfEndMatches chỉ cập nhật end_time khi nó vẫn bằng oldEnd (chặn hai
	// lần gia hạn đồng thời cùng tính tiền trên một khoảng).
	ExtendIfEndMatches(ctx context.Context, id int, oldEnd, newEnd time.Time, extraAmount float64) (bool, error)

	AddExtraAmount(ctx context.Context, id int, amount float64) error
	SetPaymentStatus(ctx context.Context, id int, status string) error
}

type WalletRepository interface {
	FindByUserID(ctx context.Context, userID int) (*domain.Wallet, error)
	// Credit/Debit thay đổi balance và chèn WalletTransaction trong cùng một
	// transaction DB — không bao giờ có cái này mà thiếu cái kia.
	Credit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error)
	// Debit trả về ErrInsufficientFunds khi balance < amount; không trừ một phần.
	Debit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error)
	Transactions(ctx context.Context, walletID int, limit, offset int) ([]domain.WalletTransaction, error)
}
