package domain

import "time"

// Festival ghi đè giá cho một khoảng ngày [StartDate, EndDate].
// Multiplier của festival (nếu > 0) được ưu tiên hơn FestivalMultiplier của bãi.
type Festival struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"` // >= StartDate
	Multiplier float64   `json:"multiplier"`
	CreatedAt  time.Time `json:"created_at"`
}

type FestivalDTO struct {
	Name       string  `json:"name" binding:"required"`
	StartDate  string  `json:"start_date" binding:"required"` // RFC3339
	EndDate    string  `json:"end_date" binding:"required"`
	Multiplier float64 `json:"multiplier" binding:"omitempty,gte=1"`
}
