package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

// PricingService tính giá theo giờ của một bãi tại một thời điểm.
// Thứ tự ưu tiên: festival > cuối tuần > giá cơ bản.
type PricingService struct {
	festivalRepo repository.FestivalRepository
}

func NewPricingService(festivalRepo repository.FestivalRepository) *PricingService {
	return &PricingService{festivalRepo: festivalRepo}
}

// HourlyRate trả về đơn giá theo giờ tại thời điểm at. Ngày vừa là festival vừa là
// cuối tuần thì áp giá festival. Multiplier của bản ghi festival (nếu > 0) được ưu
// tiên hơn FestivalMultiplier cấu hình trên bãi.
func (s *PricingService) HourlyRate(ctx context.Context, lot *domain.ParkingLot, at time.Time) (float64, error) {
	festival, err := s.festivalRepo.FindActiveOn(ctx, at)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("lỗi tra cứu festival: %w", err)
	}
	if festival != nil {
		multiplier := festival.Multiplier
		if multiplier <= 0 {
			multiplier = lot.FestivalMultiplier
		}
		return lot.BaseRate * multiplier, nil
	}

	weekday := at.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return lot.BaseRate * lot.WeekendMultiplier, nil
	}
	return lot.BaseRate, nil
}

// Amount tính tiền cho khoảng [from, to). Đơn giá được chốt một lần tại thời điểm
// from cho cả khoảng — không đổi giá giữa chừng dù khoảng vắt qua nửa đêm.
// Số phút được làm tròn lên.
func (s *PricingService) Amount(ctx context.Context, lot *domain.ParkingLot, from, to time.Time) (float64, error) {
	if !to.After(from) {
		return 0, nil
	}
	rate, err := s.HourlyRate(ctx, lot, from)
	if err != nil {
		return 0, err
	}
	minutes := math.Ceil(to.Sub(from).Minutes())
	return minutes * rate / 60, nil
}
