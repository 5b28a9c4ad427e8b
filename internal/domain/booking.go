package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Trạng thái thanh toán của booking. "overtime_due" nghĩa là trừ tiền phụ trội
// thất bại lúc check-out và cần đối soát lại sau.
const (
	PaymentPaid        = "paid"
	PaymentRefunded    = "refunded"
	PaymentOvertimeDue = "overtime_due"
)

// Booking chỉ được tạo và cập nhật qua BookingService. Chuyển trạng thái một chiều:
// confirmed -> active -> completed, cancelled chỉ đi từ confirmed hoặc active.
type Booking struct {
	ID              int           `json:"id"`
	Code            string        `json:"code"` // mã tham chiếu cho người dùng (uuid)
	UserID          int           `json:"user_id"`
	LotID           int           `json:"lot_id"`
	SpotID          int           `json:"spot_id"`
	VehicleID       int           `json:"vehicle_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Status          BookingStatus `json:"status"`
	AmountPaid      float64       `json:"amount_paid"`       // ghi một lần lúc tạo, không đổi
	ExtraAmountPaid float64       `json:"extra_amount_paid"` // phụ trội (gia hạn, quá giờ)
	PaymentStatus   string        `json:"payment_status"`
	CheckedInAt     null.Time     `json:"checked_in_at,omitempty"`
	CheckedOutAt    null.Time     `json:"checked_out_at,omitempty"`
	ActualEndTime   null.Time     `json:"actual_end_time,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type CreateBookingDTO struct {
	SpotID    int    `json:"spot_id" binding:"required"`
	VehicleID int    `json:"vehicle_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"` // RFC3339
	EndTime   string `json:"end_time" binding:"required"`
}

type ExtendBookingDTO struct {
	NewEndTime string `json:"new_end_time" binding:"required"` // RFC3339
}

type BookingFilterDTO struct {
	UserID *int    `form:"userId"`
	LotID  *int    `form:"lotId"`
	Status *string `form:"status"`
}
