package service

import (
	"context"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
)

// EventPublisher được inject qua constructor thay vì dùng emitter toàn cục.
// Publish là best-effort: lỗi broadcast không ảnh hưởng trạng thái nghiệp vụ.
type EventPublisher interface {
	PublishSpotUpdate(spot *domain.ParkingSpot)
	PublishBookingUpdate(booking *domain.Booking)
}

// NotificationSink gửi thông báo cho người dùng (email/push — bên ngoài hệ thống).
// Gửi thất bại chỉ được log, không bao giờ chặn luồng nghiệp vụ.
type NotificationSink interface {
	Send(ctx context.Context, event string, payload any) error
}

// NoopPublisher dùng khi không có kênh realtime (test, tool CLI).
type NoopPublisher struct{}

func (NoopPublisher) PublishSpotUpdate(*domain.ParkingSpot) {}

func (NoopPublisher) PublishBookingUpdate(*domain.Booking) {}
