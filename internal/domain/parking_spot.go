package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SpotStatus string

const (
	SpotAvailable SpotStatus = "available"
	SpotHeld      SpotStatus = "held"
	SpotOccupied  SpotStatus = "occupied"
	SpotClosed    SpotStatus = "closed"
)

type ParkingSpot struct {
	ID            int        `json:"id"`
	LotID         int        `json:"lot_id"`
	Label         string     `json:"label"` // ví dụ "A-12", duy nhất trong một bãi
	IsEV          bool       `json:"is_ev"`
	Status        SpotStatus `json:"status"`
	HeldBy        null.Int   `json:"held_by,omitempty"`
	HoldExpiresAt null.Time  `json:"hold_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ParkingSpotDTO struct {
	LotID int    `json:"lot_id" binding:"required"`
	Label string `json:"label" binding:"required"`
	IsEV  bool   `json:"is_ev"`
}
