package domain

// Các sự kiện realtime được broadcast sau mỗi lần đổi trạng thái thành công.
// Giao hàng at-least-once là chấp nhận được.

const (
	EventSpotUpdate    = "spot_update"
	EventBookingUpdate = "booking_update"
)

type SpotUpdateEvent struct {
	Type   string     `json:"type"` // EventSpotUpdate
	SpotID int        `json:"spot_id"`
	LotID  int        `json:"lot_id"`
	Status SpotStatus `json:"status"`
}

type BookingUpdateEvent struct {
	Type    string   `json:"type"` // EventBookingUpdate
	Booking *Booking `json:"booking"`
}
