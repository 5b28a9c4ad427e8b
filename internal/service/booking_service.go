package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidTimeRange = errors.New("khoảng thời gian không hợp lệ")
var ErrExtensionTooLong = errors.New("gia hạn vượt quá giới hạn cho phép")
var ErrVehicleNotOwned = errors.New("xe không thuộc về người dùng này")
var ErrBookingNotOpen = errors.New("booking không ở trạng thái confirmed hoặc active")
var ErrBookingNotActive = errors.New("booking không ở trạng thái active")
var ErrBookingNotConfirmed = errors.New("booking không ở trạng thái confirmed")
var ErrBookingNotOwned = errors.New("booking không thuộc về người dùng này")

const (
	reasonBookingPayment  = "booking_payment"
	reasonBookingRefund   = "booking_refund"
	reasonExtensionCharge = "extension_charge"
	reasonOvertimeCharge  = "overtime_charge"
)

// BookingService điều phối SpotAllocator + PricingService + WalletService để đưa
// booking qua máy trạng thái confirmed -> active -> completed (cancelled đi từ
// confirmed hoặc active). Booking chỉ được tạo/sửa qua service này.
type BookingService struct {
	bookingRepo repository.BookingRepository
	lotRepo     repository.ParkingLotRepository
	vehicleRepo repository.VehicleRepository
	allocator   *SpotAllocator
	pricing     *PricingService
	wallet      *WalletService
	events      EventPublisher

	holdMinutes         int
	extensionCap        time.Duration
	refundCutoffMinutes int
	now                 func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	lotRepo repository.ParkingLotRepository,
	vehicleRepo repository.VehicleRepository,
	allocator *SpotAllocator,
	pricing *PricingService,
	wallet *WalletService,
	events EventPublisher,
	holdMinutes int,
	extensionCap time.Duration,
	refundCutoffMinutes int,
) *BookingService {
	return &BookingService{
		bookingRepo:         bookingRepo,
		lotRepo:             lotRepo,
		vehicleRepo:         vehicleRepo,
		allocator:           allocator,
		pricing:             pricing,
		wallet:              wallet,
		events:              events,
		holdMinutes:         holdMinutes,
		extensionCap:        extensionCap,
		refundCutoffMinutes: refundCutoffMinutes,
		now:                 time.Now,
	}
}

func (s *BookingService) publish(b *domain.Booking) {
	if s.events != nil {
		s.events.PublishBookingUpdate(b)
	}
}

// Create: kiểm tra quyền sở hữu xe -> hold chỗ -> tính tiền -> trừ ví -> ghi
// booking (confirmed) -> occupy. Mỗi bước thất bại đều bù trừ ngược lại các bước
// trước đó; không bao giờ để chỗ bị giữ hoặc tiền bị trừ mà không có booking.
func (s *BookingService) Create(ctx context.Context, userID int, dto domain.CreateBookingDTO, startTime, endTime time.Time) (*domain.Booking, error) {
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("%w: end_time phải sau start_time", ErrInvalidTimeRange)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, dto.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: xe %d không tồn tại", repository.ErrNotFound, dto.VehicleID)
		}
		return nil, fmt.Errorf("lỗi kiểm tra xe: %w", err)
	}
	if vehicle.UserID != userID {
		return nil, ErrVehicleNotOwned
	}

	// Hold là một UPDATE có điều kiện duy nhất; thua cuộc đua thì trả conflict
	// ngay cho caller, không retry trong core.
	spot, err := s.allocator.Hold(ctx, dto.SpotID, userID, s.holdMinutes)
	if err != nil {
		return nil, err
	}

	lot, err := s.lotRepo.FindByID(ctx, spot.LotID)
	if err != nil {
		s.rollbackHold(ctx, spot.ID)
		return nil, fmt.Errorf("lỗi lấy thông tin bãi %d: %w", spot.LotID, err)
	}

	amount, err := s.pricing.Amount(ctx, lot, startTime, endTime)
	if err != nil {
		s.rollbackHold(ctx, spot.ID)
		return nil, err
	}

	if amount > 0 {
		if _, err := s.wallet.Debit(ctx, userID, amount, reasonBookingPayment, nil); err != nil {
			s.rollbackHold(ctx, spot.ID)
			return nil, err
		}
	}

	booking := &domain.Booking{
		Code:          uuid.NewString(),
		UserID:        userID,
		LotID:         lot.ID,
		SpotID:        spot.ID,
		VehicleID:     vehicle.ID,
		StartTime:     startTime.UTC(),
		EndTime:       endTime.UTC(),
		Status:        domain.BookingConfirmed,
		AmountPaid:    amount,
		PaymentStatus: domain.PaymentPaid,
	}
	booking, err = s.bookingRepo.Create(ctx, booking)
	if err != nil {
		s.refund(ctx, userID, amount, nil)
		s.rollbackHold(ctx, spot.ID)
		return nil, fmt.Errorf("lỗi tạo booking: %w", err)
	}

	if _, err := s.allocator.Occupy(ctx, spot.ID); err != nil {
		// Occupy thất bại sau khi hold thành công: bắt buộc phải nhả chỗ và hoàn tiền.
		log.Printf("Occupy chỗ %d thất bại sau khi đã tạo booking %d: %v. Đang rollback.", spot.ID, booking.ID, err)
		if _, cancelErr := s.bookingRepo.CancelIfOpen(ctx, booking.ID); cancelErr != nil {
			log.Printf("Lỗi hủy booking %d khi rollback: %v", booking.ID, cancelErr)
		}
		s.refund(ctx, userID, amount, &booking.ID)
		s.rollbackHold(ctx, spot.ID)
		return nil, fmt.Errorf("không thể chốt chỗ đỗ: %w", err)
	}

	log.Printf("Đã tạo booking %d (code %s): user %d, chỗ %d, %.2f", booking.ID, booking.Code, userID, spot.ID, amount)
	s.publish(booking)
	return booking, nil
}

func (s *BookingService) rollbackHold(ctx context.Context, spotID int) {
	if _, err := s.allocator.Free(ctx, spotID); err != nil {
		log.Printf("Lỗi nhả chỗ %d khi rollback: %v", spotID, err)
	}
}

func (s *BookingService) refund(ctx context.Context, userID int, amount float64, bookingID *int) {
	if amount <= 0 {
		return
	}
	if _, err := s.wallet.Credit(ctx, userID, amount, reasonBookingRefund, bookingID); err != nil {
		log.Printf("Lỗi hoàn tiền %.2f cho user %d: %v. Cần đối soát thủ công.", amount, userID, err)
	}
}

// CheckIn: confirmed -> active. Chuyển trạng thái là UPDATE có điều kiện nên hai
// lần check-in đồng thời chỉ một lần thành công.
func (s *BookingService) CheckIn(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.MarkActive(ctx, booking.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookingNotConfirmed
	}

	booking, err = s.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publish(booking)
	return booking, nil
}

// Extend: trừ tiền trước, chỉ cập nhật end_time sau khi debit thành công —
// debit thất bại thì end_time giữ nguyên (all-or-nothing). Nếu một lần gia hạn
// đồng thời khác thắng trước, tiền đã trừ được hoàn lại và trả về conflict.
func (s *BookingService) Extend(ctx context.Context, bookingID, userID int, newEndTime time.Time) (*domain.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingConfirmed && booking.Status != domain.BookingActive {
		return nil, ErrBookingNotOpen
	}

	newEndTime = newEndTime.UTC()
	if !newEndTime.After(booking.EndTime) {
		return nil, fmt.Errorf("%w: thời gian mới phải sau end_time hiện tại", ErrInvalidTimeRange)
	}
	if newEndTime.Sub(booking.EndTime) > s.extensionCap {
		return nil, fmt.Errorf("%w: tối đa %s mỗi lần", ErrExtensionTooLong, s.extensionCap)
	}

	lot, err := s.lotRepo.FindByID(ctx, booking.LotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi lấy thông tin bãi %d: %w", booking.LotID, err)
	}
	cost, err := s.pricing.Amount(ctx, lot, booking.EndTime, newEndTime)
	if err != nil {
		return nil, err
	}

	if cost > 0 {
		if _, err := s.wallet.Debit(ctx, userID, cost, reasonExtensionCharge, &booking.ID); err != nil {
			return nil, err
		}
	}

	ok, err := s.bookingRepo.ExtendIfEndMatches(ctx, booking.ID, booking.EndTime, newEndTime, cost)
	if err != nil {
		s.refund(ctx, userID, cost, &booking.ID)
		return nil, err
	}
	if !ok {
		// end_time đã bị đổi bởi một gia hạn đồng thời khác — hoàn tiền, báo conflict.
		s.refund(ctx, userID, cost, &booking.ID)
		return nil, ErrBookingNotOpen
	}

	booking, err = s.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publish(booking)
	return booking, nil
}

// CheckOut kết thúc booking đang active theo yêu cầu của người dùng.
func (s *BookingService) CheckOut(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, booking)
}

// SettleOverdue được sweeper gọi cho booking quá hạn — cùng một đường settle với
// CheckOut, chỉ khác bên khởi phát.
func (s *BookingService) SettleOverdue(ctx context.Context, bookingID int) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, booking)
}

// settle: claim bằng CAS active -> completed rồi mới tính tiền quá giờ và nhả chỗ.
// Chỉ bên claim được mới chạy phần thanh toán/nhả chỗ, nên hai sweep chồng nhau
// hoặc user check-out đua với sweeper không bao giờ double-bill hay double-free.
// Trừ tiền quá giờ thất bại KHÔNG chặn hoàn tất: chỗ đỗ luôn được nhả, khoản nợ
// được đánh dấu overtime_due để đối soát sau.
func (s *BookingService) settle(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if booking.Status != domain.BookingActive {
		return nil, ErrBookingNotActive
	}

	now := s.now().UTC()
	claimed, err := s.bookingRepo.CompleteIfActive(ctx, booking.ID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrBookingNotActive
	}

	if now.After(booking.EndTime) {
		lot, err := s.lotRepo.FindByID(ctx, booking.LotID)
		if err != nil {
			log.Printf("Lỗi lấy bãi %d để tính quá giờ cho booking %d: %v", booking.LotID, booking.ID, err)
			s.flagOvertimeDue(ctx, booking.ID)
		} else {
			overtime, err := s.pricing.Amount(ctx, lot, booking.EndTime, now)
			if err != nil {
				log.Printf("Lỗi tính tiền quá giờ cho booking %d: %v", booking.ID, err)
				s.flagOvertimeDue(ctx, booking.ID)
			} else if overtime > 0 {
				if _, err := s.wallet.Debit(ctx, booking.UserID, overtime, reasonOvertimeCharge, &booking.ID); err != nil {
					// Không retry tại chỗ — ghi nhận để đối soát, vẫn tiếp tục nhả chỗ.
					log.Printf("Trừ tiền quá giờ %.2f cho booking %d thất bại: %v", overtime, booking.ID, err)
					s.flagOvertimeDue(ctx, booking.ID)
				} else if err := s.bookingRepo.AddExtraAmount(ctx, booking.ID, overtime); err != nil {
					log.Printf("Lỗi ghi extra_amount_paid cho booking %d: %v", booking.ID, err)
				}
			}
		}
	}

	if _, err := s.allocator.Free(ctx, booking.SpotID); err != nil {
		log.Printf("Lỗi nhả chỗ %d cho booking %d: %v", booking.SpotID, booking.ID, err)
	}

	booking, err = s.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publish(booking)
	return booking, nil
}

func (s *BookingService) flagOvertimeDue(ctx context.Context, bookingID int) {
	if err := s.bookingRepo.SetPaymentStatus(ctx, bookingID, domain.PaymentOvertimeDue); err != nil {
		log.Printf("Lỗi đánh dấu overtime_due cho booking %d: %v", bookingID, err)
	}
}

// Cancel hủy booking confirmed hoặc active. Chính sách hoàn tiền nhị phân: hủy
// trước start_time ít nhất refundCutoffMinutes phút thì hoàn 100% amount_paid,
// muộn hơn thì không hoàn đồng nào.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingConfirmed && booking.Status != domain.BookingActive {
		return nil, ErrBookingNotOpen
	}

	ok, err := s.bookingRepo.CancelIfOpen(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookingNotOpen
	}

	now := s.now().UTC()
	cutoff := booking.StartTime.Add(-time.Duration(s.refundCutoffMinutes) * time.Minute)
	if !now.After(cutoff) && booking.AmountPaid > 0 {
		if _, err := s.wallet.Credit(ctx, booking.UserID, booking.AmountPaid, reasonBookingRefund, &booking.ID); err != nil {
			log.Printf("Lỗi hoàn tiền hủy booking %d: %v. Cần đối soát thủ công.", booking.ID, err)
		} else if err := s.bookingRepo.SetPaymentStatus(ctx, booking.ID, domain.PaymentRefunded); err != nil {
			log.Printf("Lỗi đánh dấu refunded cho booking %d: %v", booking.ID, err)
		}
	}

	if _, err := s.allocator.Free(ctx, booking.SpotID); err != nil {
		log.Printf("Lỗi nhả chỗ %d khi hủy booking %d: %v", booking.SpotID, booking.ID, err)
	}

	booking, err = s.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publish(booking)
	return booking, nil
}

func (s *BookingService) GetByID(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return s.bookingRepo.FindByID(ctx, bookingID)
}

func (s *BookingService) Find(ctx context.Context, filter domain.BookingFilterDTO) ([]domain.Booking, error) {
	return s.bookingRepo.Find(ctx, filter)
}

func (s *BookingService) FindOverdue(ctx context.Context) ([]domain.Booking, error) {
	return s.bookingRepo.FindOverdueActive(ctx, s.now().UTC())
}

// ownedBooking lấy booking và kiểm tra nó thuộc về userID (userID = 0 bỏ qua
// kiểm tra — dùng cho admin và sweeper).
func (s *BookingService) ownedBooking(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && booking.UserID != userID {
		return nil, ErrBookingNotOwned
	}
	return booking, nil
}
