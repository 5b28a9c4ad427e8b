package domain

import "time"

type ParkingLot struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Address            string    `json:"address,omitempty"`
	BaseRate           float64   `json:"base_rate"`           // đơn giá theo giờ, > 0
	WeekendMultiplier  float64   `json:"weekend_multiplier"`  // >= 1
	FestivalMultiplier float64   `json:"festival_multiplier"` // >= 1
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ParkingLotDTO struct {
	Name               string  `json:"name" binding:"required"`
	Address            string  `json:"address"`
	BaseRate           float64 `json:"base_rate" binding:"required,gt=0"`
	WeekendMultiplier  float64 `json:"weekend_multiplier" binding:"omitempty,gte=1"`
	FestivalMultiplier float64 `json:"festival_multiplier" binding:"omitempty,gte=1"`
}

// LotAvailability là kết quả đếm chỗ đỗ theo trạng thái, tính trực tiếp từ bảng
// parking_spots thay vì giữ counter trên bảng parking_lots.
type LotAvailability struct {
	LotID     int `json:"lot_id"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Occupied  int `json:"occupied"`
	Closed    int `json:"closed"`
}
