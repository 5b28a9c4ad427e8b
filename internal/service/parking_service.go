package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

var ErrInvalidDateRange = errors.New("khoảng ngày không hợp lệ")

// ParkingService quản lý danh mục bãi/chỗ đỗ và festival. Thay đổi trạng thái
// chỗ đỗ (hold/occupy/release/close) không ở đây mà đi qua SpotAllocator.
type ParkingService struct {
	lotRepo      repository.ParkingLotRepository
	spotRepo     repository.ParkingSpotRepository
	festivalRepo repository.FestivalRepository
}

func NewParkingService(lotRepo repository.ParkingLotRepository, spotRepo repository.ParkingSpotRepository, festivalRepo repository.FestivalRepository) *ParkingService {
	return &ParkingService{
		lotRepo:      lotRepo,
		spotRepo:     spotRepo,
		festivalRepo: festivalRepo,
	}
}

func (s *ParkingService) CreateParkingLot(ctx context.Context, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{
		Name:               dto.Name,
		Address:            dto.Address,
		BaseRate:           dto.BaseRate,
		WeekendMultiplier:  dto.WeekendMultiplier,
		FestivalMultiplier: dto.FestivalMultiplier,
	}
	if lot.WeekendMultiplier == 0 {
		lot.WeekendMultiplier = 1
	}
	if lot.FestivalMultiplier == 0 {
		lot.FestivalMultiplier = 1
	}
	return s.lotRepo.Create(ctx, lot)
}

func (s *ParkingService) GetParkingLotByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	return s.lotRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetAllParkingLots(ctx context.Context) ([]domain.ParkingLot, error) {
	return s.lotRepo.FindAll(ctx)
}

func (s *ParkingService) UpdateParkingLot(ctx context.Context, id int, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.Name = dto.Name
	lot.Address = dto.Address
	lot.BaseRate = dto.BaseRate
	if dto.WeekendMultiplier > 0 {
		lot.WeekendMultiplier = dto.WeekendMultiplier
	}
	if dto.FestivalMultiplier > 0 {
		lot.FestivalMultiplier = dto.FestivalMultiplier
	}
	return s.lotRepo.Update(ctx, lot)
}

func (s *ParkingService) DeleteParkingLot(ctx context.Context, id int) error {
	return s.lotRepo.Delete(ctx, id)
}

// GetLotAvailability đếm chỗ theo trạng thái trực tiếp từ bảng parking_spots.
// Số này có thể lệch một nhịp với thực tế dưới tải, chỉ dùng để hiển thị.
func (s *ParkingService) GetLotAvailability(ctx context.Context, lotID int) (*domain.LotAvailability, error) {
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		return nil, err
	}
	return s.spotRepo.CountByStatus(ctx, lotID)
}

func (s *ParkingService) CreateParkingSpot(ctx context.Context, dto domain.ParkingSpotDTO) (*domain.ParkingSpot, error) {
	if _, err := s.lotRepo.FindByID(ctx, dto.LotID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("bãi đỗ %d không tồn tại: %w", dto.LotID, err)
		}
		return nil, err
	}
	spot := &domain.ParkingSpot{
		LotID:  dto.LotID,
		Label:  dto.Label,
		IsEV:   dto.IsEV,
		Status: domain.SpotAvailable,
	}
	return s.spotRepo.Create(ctx, spot)
}

func (s *ParkingService) GetParkingSpotByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	return s.spotRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetSpotsByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error) {
	return s.spotRepo.FindByLotID(ctx, lotID)
}

func (s *ParkingService) DeleteParkingSpot(ctx context.Context, id int) error {
	return s.spotRepo.Delete(ctx, id)
}

func (s *ParkingService) CreateFestival(ctx context.Context, dto domain.FestivalDTO) (*domain.Festival, error) {
	startDate, err := time.Parse(time.RFC3339, dto.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date phải theo RFC3339", ErrInvalidDateRange)
	}
	endDate, err := time.Parse(time.RFC3339, dto.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date phải theo RFC3339", ErrInvalidDateRange)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end_date phải >= start_date", ErrInvalidDateRange)
	}

	festival := &domain.Festival{
		Name:       dto.Name,
		StartDate:  startDate,
		EndDate:    endDate,
		Multiplier: dto.Multiplier,
	}
	return s.festivalRepo.Create(ctx, festival)
}

func (s *ParkingService) GetAllFestivals(ctx context.Context) ([]domain.Festival, error) {
	return s.festivalRepo.FindAll(ctx)
}

func (s *ParkingService) DeleteFestival(ctx context.Context, id int) error {
	return s.festivalRepo.Delete(ctx, id)
}
