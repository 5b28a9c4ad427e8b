package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/service"
)

type fakeSettler struct {
	mu       sync.Mutex
	overdue  []domain.Booking
	settled  []int
	failFor  map[int]error
	findErr  error
	statuses map[int]domain.BookingStatus
}

func newFakeSettler(overdue ...domain.Booking) *fakeSettler {
	s := &fakeSettler{
		overdue:  overdue,
		failFor:  make(map[int]error),
		statuses: make(map[int]domain.BookingStatus),
	}
	for _, b := range overdue {
		s.statuses[b.ID] = b.Status
	}
	return s
}

func (s *fakeSettler) FindOverdue(ctx context.Context) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]domain.Booking, len(s.overdue))
	copy(out, s.overdue)
	return out, nil
}

func (s *fakeSettler) SettleOverdue(ctx context.Context, bookingID int) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[bookingID]; ok {
		return nil, err
	}
	if s.statuses[bookingID] != domain.BookingActive {
		return nil, service.ErrBookingNotActive
	}
	s.statuses[bookingID] = domain.BookingCompleted
	s.settled = append(s.settled, bookingID)
	return &domain.Booking{ID: bookingID, Status: domain.BookingCompleted}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (n *recordingNotifier) Send(ctx context.Context, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func activeBooking(id int) domain.Booking {
	return domain.Booking{ID: id, Status: domain.BookingActive, EndTime: time.Now().Add(-time.Hour)}
}

func TestSweepSettlesOverdueBookings(t *testing.T) {
	settler := newFakeSettler(activeBooking(1), activeBooking(2), activeBooking(3))
	notifier := &recordingNotifier{}
	sweeper := NewAutoCheckoutSweeper(settler, notifier, time.Minute)

	sweeper.Sweep(context.Background())

	if len(settler.settled) != 3 {
		t.Fatalf("cả 3 booking quá hạn phải được settle, có %d", len(settler.settled))
	}
	for id, status := range settler.statuses {
		if status != domain.BookingCompleted {
			t.Fatalf("booking %d phải completed, đang là %s", id, status)
		}
	}
	if len(notifier.events) != 3 {
		t.Fatalf("phải có 3 thông báo auto-checkout, có %d", len(notifier.events))
	}
	for _, event := range notifier.events {
		if event != "booking_auto_checkout" {
			t.Fatalf("sự kiện không đúng: %s", event)
		}
	}
}

func TestSweepSkipsAlreadyClaimed(t *testing.T) {
	// Booking 2 đã bị user check-out giữa lúc quét: settle trả ErrBookingNotActive.
	settler := newFakeSettler(activeBooking(1), activeBooking(2), activeBooking(3))
	settler.statuses[2] = domain.BookingCompleted
	sweeper := NewAutoCheckoutSweeper(settler, &recordingNotifier{}, time.Minute)

	sweeper.Sweep(context.Background())

	if len(settler.settled) != 2 {
		t.Fatalf("2 booking còn active phải được settle, có %d", len(settler.settled))
	}
	for _, id := range settler.settled {
		if id == 2 {
			t.Fatal("booking đã claim không được settle lại")
		}
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	settler := newFakeSettler(activeBooking(1), activeBooking(2), activeBooking(3))
	settler.failFor[1] = errors.New("db timeout")
	sweeper := NewAutoCheckoutSweeper(settler, &recordingNotifier{}, time.Minute)

	sweeper.Sweep(context.Background())

	if len(settler.settled) != 2 {
		t.Fatalf("lỗi của một booking không được chặn các booking khác: settle được %d", len(settler.settled))
	}
}

func TestSweepNotifierFailureIsBestEffort(t *testing.T) {
	settler := newFakeSettler(activeBooking(1))
	notifier := &recordingNotifier{err: errors.New("sqs unavailable")}
	sweeper := NewAutoCheckoutSweeper(settler, notifier, time.Minute)

	sweeper.Sweep(context.Background())

	if len(settler.settled) != 1 {
		t.Fatalf("thông báo thất bại không được chặn settle, settle được %d", len(settler.settled))
	}
	if settler.statuses[1] != domain.BookingCompleted {
		t.Fatalf("booking phải completed, đang là %s", settler.statuses[1])
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	settler := newFakeSettler()
	sweeper := NewAutoCheckoutSweeper(settler, &recordingNotifier{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper phải dừng khi context bị hủy")
	}
}
