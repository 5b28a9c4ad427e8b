package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

func TestHoldConcurrentSingleWinner(t *testing.T) {
	spotRepo := newFakeSpotRepo()
	spot := spotRepo.addSpot(1, domain.SpotAvailable)
	allocator := NewSpotAllocator(spotRepo, NoopPublisher{})

	const callers = 20
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := allocator.Hold(context.Background(), spot.ID, userID, 5)
			if err == nil {
				atomic.AddInt64(&wins, 1)
			} else if !errors.Is(err, repository.ErrSpotNotAcquired) {
				t.Errorf("lỗi không mong đợi từ Hold: %v", err)
			}
		}(i + 1)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("đúng một caller phải giữ được chỗ, có %d", wins)
	}
}

func TestHoldExpiredReclaim(t *testing.T) {
	spotRepo := newFakeSpotRepo()
	spot := spotRepo.addSpot(1, domain.SpotAvailable)
	allocator := NewSpotAllocator(spotRepo, NoopPublisher{})

	t0 := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	allocator.now = func() time.Time { return t0 }

	if _, err := allocator.Hold(context.Background(), spot.ID, 1, 5); err != nil {
		t.Fatalf("hold đầu tiên phải thành công: %v", err)
	}

	// Hold còn hiệu lực: người khác không giành được.
	allocator.now = func() time.Time { return t0.Add(2 * time.Minute) }
	if _, err := allocator.Hold(context.Background(), spot.ID, 2, 5); !errors.Is(err, repository.ErrSpotNotAcquired) {
		t.Fatalf("hold còn hiệu lực phải chặn người khác, nhận được: %v", err)
	}

	// Quá hạn: chỗ được thu hồi lười cho người đến sau.
	allocator.now = func() time.Time { return t0.Add(6 * time.Minute) }
	held, err := allocator.Hold(context.Background(), spot.ID, 2, 5)
	if err != nil {
		t.Fatalf("hold quá hạn phải được thu hồi: %v", err)
	}
	if !held.HeldBy.Valid || held.HeldBy.Int64 != 2 {
		t.Fatalf("chỗ phải thuộc về user 2 sau khi thu hồi, held_by = %v", held.HeldBy)
	}
}

func TestCloseRejectsOccupied(t *testing.T) {
	spotRepo := newFakeSpotRepo()
	spot := spotRepo.addSpot(1, domain.SpotOccupied)
	allocator := NewSpotAllocator(spotRepo, NoopPublisher{})

	if _, err := allocator.Close(context.Background(), spot.ID); !errors.Is(err, repository.ErrSpotNotAcquired) {
		t.Fatalf("đóng chỗ đang occupied phải bị từ chối, nhận được: %v", err)
	}

	got, err := spotRepo.FindByID(context.Background(), spot.ID)
	if err != nil {
		t.Fatalf("FindByID trả về lỗi: %v", err)
	}
	if got.Status != domain.SpotOccupied {
		t.Fatalf("trạng thái chỗ không được đổi, đang là %s", got.Status)
	}
}

func TestCloseThenReopen(t *testing.T) {
	spotRepo := newFakeSpotRepo()
	spot := spotRepo.addSpot(1, domain.SpotAvailable)
	allocator := NewSpotAllocator(spotRepo, NoopPublisher{})
	ctx := context.Background()

	closed, err := allocator.Close(ctx, spot.ID)
	if err != nil {
		t.Fatalf("đóng chỗ available phải thành công: %v", err)
	}
	if closed.Status != domain.SpotClosed {
		t.Fatalf("muốn closed, nhận được %s", closed.Status)
	}

	// Chỗ đã đóng không hold được.
	if _, err := allocator.Hold(ctx, spot.ID, 1, 5); !errors.Is(err, repository.ErrSpotNotAcquired) {
		t.Fatalf("hold chỗ closed phải thất bại, nhận được: %v", err)
	}

	reopened, err := allocator.Reopen(ctx, spot.ID)
	if err != nil {
		t.Fatalf("mở lại chỗ closed phải thành công: %v", err)
	}
	if reopened.Status != domain.SpotAvailable {
		t.Fatalf("muốn available sau reopen, nhận được %s", reopened.Status)
	}
}
