package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

// SpotAllocator là nơi duy nhất được phép đổi trạng thái ParkingSpot.
// Mọi chuyển trạng thái đều đi qua UPDATE có điều kiện của repo — không có
// read-then-write, không có lock trong bộ nhớ.
type SpotAllocator struct {
	spotRepo repository.ParkingSpotRepository
	events   EventPublisher
	now      func() time.Time
}

func NewSpotAllocator(spotRepo repository.ParkingSpotRepository, events EventPublisher) *SpotAllocator {
	return &SpotAllocator{
		spotRepo: spotRepo,
		events:   events,
		now:      time.Now,
	}
}

func (a *SpotAllocator) publish(spot *domain.ParkingSpot) {
	if a.events != nil {
		a.events.PublishSpotUpdate(spot)
	}
}

// Hold giữ chỗ tạm trong holdMinutes phút. Chỉ thành công khi chỗ đang available
// hoặc đang held với hold đã quá hạn (thu hồi lười). Thua cuộc đua trả về
// repository.ErrSpotNotAcquired — caller chọn chỗ khác, không retry ở đây.
func (a *SpotAllocator) Hold(ctx context.Context, spotID, userID, holdMinutes int) (*domain.ParkingSpot, error) {
	now := a.now().UTC()
	expiresAt := now.Add(time.Duration(holdMinutes) * time.Minute)
	spot, err := a.spotRepo.HoldIfAvailable(ctx, spotID, userID, expiresAt, now)
	if err != nil {
		return nil, err
	}
	log.Printf("Đã giữ chỗ %d cho user %d đến %s", spot.ID, userID, expiresAt.Format(time.RFC3339))
	a.publish(spot)
	return spot, nil
}

// Occupy chuyển held -> occupied sau khi booking đã được ghi bền vững.
func (a *SpotAllocator) Occupy(ctx context.Context, spotID int) (*domain.ParkingSpot, error) {
	spot, err := a.spotRepo.OccupyHeld(ctx, spotID)
	if err != nil {
		return nil, err
	}
	a.publish(spot)
	return spot, nil
}

// Free trả chỗ về available khi hủy, hoàn tất booking, hoặc dọn hold.
func (a *SpotAllocator) Free(ctx context.Context, spotID int) (*domain.ParkingSpot, error) {
	spot, err := a.spotRepo.Release(ctx, spotID)
	if err != nil {
		return nil, err
	}
	a.publish(spot)
	return spot, nil
}

// Close đóng chỗ (thao tác của chủ bãi, ngoài luồng booking). Chỗ đang occupied
// thì bị từ chối.
func (a *SpotAllocator) Close(ctx context.Context, spotID int) (*domain.ParkingSpot, error) {
	spot, err := a.spotRepo.CloseSpot(ctx, spotID)
	if err != nil {
		if err == repository.ErrSpotNotAcquired {
			return nil, fmt.Errorf("%w: không thể đóng chỗ đang có xe", repository.ErrSpotNotAcquired)
		}
		return nil, err
	}
	a.publish(spot)
	return spot, nil
}

func (a *SpotAllocator) Reopen(ctx context.Context, spotID int) (*domain.ParkingSpot, error) {
	spot, err := a.spotRepo.ReopenSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	a.publish(spot)
	return spot, nil
}
