package domain

import "time"

type Vehicle struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	PlateNumber string    `json:"plate_number"`
	Model       string    `json:"model,omitempty"`
	IsEV        bool      `json:"is_ev"`
	CreatedAt   time.Time `json:"created_at"`
}

type VehicleDTO struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	Model       string `json:"model"`
	IsEV        bool   `json:"is_ev"`
}
