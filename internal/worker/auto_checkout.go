package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/service"
)

// BookingSettler là phần của BookingService mà sweeper cần.
type BookingSettler interface {
	FindOverdue(ctx context.Context) ([]domain.Booking, error)
	SettleOverdue(ctx context.Context, bookingID int) (*domain.Booking, error)
}

// AutoCheckoutSweeper quét định kỳ các booking active đã quá end_time và đưa
// chúng về completed qua cùng đường settle với check-out thủ công. Mỗi booking
// được claim bằng CAS trong settle, nên hai chu kỳ quét chồng nhau không bao giờ
// xử lý trùng một booking.
type AutoCheckoutSweeper struct {
	bookings BookingSettler
	notifier service.NotificationSink
	interval time.Duration
}

func NewAutoCheckoutSweeper(bookings BookingSettler, notifier service.NotificationSink, interval time.Duration) *AutoCheckoutSweeper {
	return &AutoCheckoutSweeper{
		bookings: bookings,
		notifier: notifier,
		interval: interval,
	}
}

// Start chạy đến khi ctx bị hủy. Chu kỳ đang chạy dừng giữa chừng khi shutdown;
// booking chưa claim sẽ được chu kỳ sau (hoặc tiến trình khác) xử lý lại.
func (s *AutoCheckoutSweeper) Start(ctx context.Context) {
	log.Printf("AutoCheckoutSweeper bắt đầu, chu kỳ %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("AutoCheckoutSweeper: context cancelled, dừng.")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep là một chu kỳ quét. Lỗi của từng booking chỉ được log — một booking hỏng
// không chặn các booking còn lại.
func (s *AutoCheckoutSweeper) Sweep(ctx context.Context) {
	overdue, err := s.bookings.FindOverdue(ctx)
	if err != nil {
		log.Printf("AutoCheckoutSweeper: lỗi truy vấn booking quá hạn: %v", err)
		return
	}
	if len(overdue) == 0 {
		return
	}
	log.Printf("AutoCheckoutSweeper: tìm thấy %d booking quá hạn", len(overdue))

	for _, b := range overdue {
		select {
		case <-ctx.Done():
			return
		default:
		}

		settled, err := s.bookings.SettleOverdue(ctx, b.ID)
		if err != nil {
			if errors.Is(err, service.ErrBookingNotActive) {
				// Đã bị claim bởi chu kỳ khác hoặc user vừa check-out — bỏ qua.
				continue
			}
			log.Printf("AutoCheckoutSweeper: lỗi settle booking %d: %v", b.ID, err)
			continue
		}
		log.Printf("AutoCheckoutSweeper: đã auto-checkout booking %d (phụ trội %.2f)", settled.ID, settled.ExtraAmountPaid)

		// Thông báo là best-effort: thất bại không ảnh hưởng trạng thái booking.
		if s.notifier != nil {
			if err := s.notifier.Send(ctx, "booking_auto_checkout", settled); err != nil {
				log.Printf("AutoCheckoutSweeper: lỗi gửi thông báo cho booking %d: %v", settled.ID, err)
			}
		}
	}
}
