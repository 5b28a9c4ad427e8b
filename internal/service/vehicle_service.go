package service

import (
	"context"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

type VehicleService struct {
	vehicleRepo repository.VehicleRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo}
}

func (s *VehicleService) Register(ctx context.Context, userID int, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{
		UserID:      userID,
		PlateNumber: dto.PlateNumber,
		Model:       dto.Model,
		IsEV:        dto.IsEV,
	}
	return s.vehicleRepo.Create(ctx, vehicle)
}

func (s *VehicleService) GetUserVehicles(ctx context.Context, userID int) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindByUserID(ctx, userID)
}
