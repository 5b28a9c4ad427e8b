package service

import (
	"context"
	"sync"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"

	"gopkg.in/guregu/null.v4"
)

// Các fake in-memory dưới đây giữ đúng ngữ nghĩa UPDATE có điều kiện của repo
// Postgres: mọi chuyển trạng thái đều kiểm tra-và-đổi dưới cùng một mutex.

type fakeSpotRepo struct {
	mu         sync.Mutex
	spots      map[int]*domain.ParkingSpot
	nextID     int
	failOccupy bool
}

func newFakeSpotRepo() *fakeSpotRepo {
	return &fakeSpotRepo{spots: make(map[int]*domain.ParkingSpot), nextID: 1}
}

func (r *fakeSpotRepo) addSpot(lotID int, status domain.SpotStatus) *domain.ParkingSpot {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot := &domain.ParkingSpot{ID: r.nextID, LotID: lotID, Label: "A-1", Status: status}
	r.spots[spot.ID] = spot
	r.nextID++
	copied := *spot
	return &copied
}

func (r *fakeSpotRepo) Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot.ID = r.nextID
	r.nextID++
	stored := *spot
	r.spots[spot.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeSpotRepo) FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot, ok := r.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *spot
	return &copied, nil
}

func (r *fakeSpotRepo) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ParkingSpot
	for _, spot := range r.spots {
		if spot.LotID == lotID {
			out = append(out, *spot)
		}
	}
	return out, nil
}

func (r *fakeSpotRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.spots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.spots, id)
	return nil
}

func (r *fakeSpotRepo) HoldIfAvailable(ctx context.Context, id int, userID int, expiresAt time.Time, now time.Time) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot, ok := r.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	expiredHold := spot.Status == domain.SpotHeld &&
		spot.HoldExpiresAt.Valid && spot.HoldExpiresAt.Time.Before(now)
	if spot.Status != domain.SpotAvailable && !expiredHold {
		return nil, repository.ErrSpotNotAcquired
	}
	spot.Status = domain.SpotHeld
	spot.HeldBy = null.IntFrom(int64(userID))
	spot.HoldExpiresAt = null.TimeFrom(expiresAt)
	copied := *spot
	return &copied, nil
}

func (r *fakeSpotRepo) OccupyHeld(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOccupy {
		return nil, repository.ErrSpotNotAcquired
	}
	spot, ok := r.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if spot.Status != domain.SpotHeld {
		return nil, repository.ErrSpotNotAcquired
	}
	spot.Status = domain.SpotOccupied
	spot.HeldBy = null.Int{}
	spot.HoldExpiresAt = null.Time{}
	copied := *spot
	return &copied, nil
}

func (r *fakeSpotRepo) Release(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot, ok := r.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if spot.Status != domain.SpotOccupied && spot.Status != domain.SpotHeld {
		return nil, repository.ErrSpotNotAcquired
	}
	spot.Status = domain.SpotAvailable
	spot.HeldBy = null.Int{}
	spot.HoldExpiresAt = null.Time{}
	copied := *spot
	return &copied, nil
}

func (r *fakeSpotRepo) CloseSpot(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot, ok := r.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if spot.Status != domain.SpotAvailable && spot.Status != domain.SpotHeld {
		return nil, repository.ErrSpotNotAcquired
	}
	spot.Status = domain.SpotClosed
	spot.HeldBy = null.Int{}
	spot.HoldExpiresAt = null.Time{}
	copied := *spot
	return &copied, nil
}

func (r *fakeSpotRepo) ReopenSpot(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot, ok := r.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if spot.Status != domain.SpotClosed {
		return nil, repository.ErrSpotNotAcquired
	}
	spot.Status = domain.SpotAvailable
	copied := *spot
	return &copied, nil
}

func (r *fakeSpotRepo) CountByStatus(ctx context.Context, lotID int) (*domain.LotAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	availability := &domain.LotAvailability{LotID: lotID}
	for _, spot := range r.spots {
		if spot.LotID != lotID {
			continue
		}
		switch spot.Status {
		case domain.SpotAvailable:
			availability.Available++
		case domain.SpotHeld:
			availability.Held++
		case domain.SpotOccupied:
			availability.Occupied++
		case domain.SpotClosed:
			availability.Closed++
		}
	}
	return availability, nil
}

type fakeLotRepo struct {
	mu     sync.Mutex
	lots   map[int]*domain.ParkingLot
	nextID int
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[int]*domain.ParkingLot), nextID: 1}
}

func (r *fakeLotRepo) addLot(baseRate, weekendMult, festivalMult float64) *domain.ParkingLot {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot := &domain.ParkingLot{
		ID:                 r.nextID,
		Name:               "Bãi trung tâm",
		BaseRate:           baseRate,
		WeekendMultiplier:  weekendMult,
		FestivalMultiplier: festivalMult,
	}
	r.lots[lot.ID] = lot
	r.nextID++
	copied := *lot
	return &copied
}

func (r *fakeLotRepo) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot.ID = r.nextID
	r.nextID++
	stored := *lot
	r.lots[lot.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeLotRepo) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *lot
	return &copied, nil
}

func (r *fakeLotRepo) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ParkingLot
	for _, lot := range r.lots {
		out = append(out, *lot)
	}
	return out, nil
}

func (r *fakeLotRepo) Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[lot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	stored := *lot
	r.lots[lot.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeLotRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.lots, id)
	return nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[int]*domain.Vehicle
	nextID   int
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[int]*domain.Vehicle), nextID: 1}
}

func (r *fakeVehicleRepo) addVehicle(userID int) *domain.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle := &domain.Vehicle{ID: r.nextID, UserID: userID, PlateNumber: "51H-12345"}
	r.vehicles[vehicle.ID] = vehicle
	r.nextID++
	copied := *vehicle
	return &copied
}

func (r *fakeVehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle.ID = r.nextID
	r.nextID++
	stored := *vehicle
	r.vehicles[vehicle.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeVehicleRepo) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (r *fakeVehicleRepo) FindByUserID(ctx context.Context, userID int) ([]domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Vehicle
	for _, vehicle := range r.vehicles {
		if vehicle.UserID == userID {
			out = append(out, *vehicle)
		}
	}
	return out, nil
}

type fakeFestivalRepo struct {
	mu        sync.Mutex
	festivals []domain.Festival
	nextID    int
}

func newFakeFestivalRepo() *fakeFestivalRepo {
	return &fakeFestivalRepo{nextID: 1}
}

func (r *fakeFestivalRepo) addFestival(start, end time.Time, multiplier float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.festivals = append(r.festivals, domain.Festival{
		ID: r.nextID, Name: "Tết", StartDate: start, EndDate: end, Multiplier: multiplier,
	})
	r.nextID++
}

func (r *fakeFestivalRepo) Create(ctx context.Context, festival *domain.Festival) (*domain.Festival, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	festival.ID = r.nextID
	r.nextID++
	r.festivals = append(r.festivals, *festival)
	copied := *festival
	return &copied, nil
}

func (r *fakeFestivalRepo) FindAll(ctx context.Context) ([]domain.Festival, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Festival, len(r.festivals))
	copy(out, r.festivals)
	return out, nil
}

func (r *fakeFestivalRepo) FindActiveOn(ctx context.Context, t time.Time) (*domain.Festival, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, festival := range r.festivals {
		if !t.Before(festival.StartDate) && !t.After(festival.EndDate) {
			copied := festival
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeFestivalRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, festival := range r.festivals {
		if festival.ID == id {
			r.festivals = append(r.festivals[:i], r.festivals[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[int]*domain.Booking
	nextID   int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[int]*domain.Booking), nextID: 1}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = r.nextID
	r.nextID++
	stored := *booking
	r.bookings[booking.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id int) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) Find(ctx context.Context, filter domain.BookingFilterDTO) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Booking
	for _, booking := range r.bookings {
		if filter.UserID != nil && booking.UserID != *filter.UserID {
			continue
		}
		if filter.LotID != nil && booking.LotID != *filter.LotID {
			continue
		}
		if filter.Status != nil && string(booking.Status) != *filter.Status {
			continue
		}
		out = append(out, *booking)
	}
	return out, nil
}

func (r *fakeBookingRepo) FindOverdueActive(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Booking
	for _, booking := range r.bookings {
		if booking.Status == domain.BookingActive && booking.EndTime.Before(now) {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) MarkActive(ctx context.Context, id int, checkedInAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != domain.BookingConfirmed {
		return false, nil
	}
	booking.Status = domain.BookingActive
	booking.CheckedInAt = null.TimeFrom(checkedInAt)
	return true, nil
}

func (r *fakeBookingRepo) CompleteIfActive(ctx context.Context, id int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != domain.BookingActive {
		return false, nil
	}
	booking.Status = domain.BookingCompleted
	booking.CheckedOutAt = null.TimeFrom(at)
	booking.ActualEndTime = null.TimeFrom(at)
	return true, nil
}

func (r *fakeBookingRepo) CancelIfOpen(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || (booking.Status != domain.BookingConfirmed && booking.Status != domain.BookingActive) {
		return false, nil
	}
	booking.Status = domain.BookingCancelled
	return true, nil
}

func (r *fakeBookingRepo) ExtendIfEndMatches(ctx context.Context, id int, oldEnd, newEnd time.Time, extraAmount float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return false, nil
	}
	if booking.Status != domain.BookingConfirmed && booking.Status != domain.BookingActive {
		return false, nil
	}
	if !booking.EndTime.Equal(oldEnd) {
		return false, nil
	}
	booking.EndTime = newEnd
	booking.ExtraAmountPaid += extraAmount
	return true, nil
}

func (r *fakeBookingRepo) AddExtraAmount(ctx context.Context, id int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.ExtraAmountPaid += amount
	return nil
}

func (r *fakeBookingRepo) SetPaymentStatus(ctx context.Context, id int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.PaymentStatus = status
	return nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[int]*domain.Wallet // key: userID
	txs     []domain.WalletTransaction
	nextID  int
	nextTx  int64
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[int]*domain.Wallet), nextID: 1, nextTx: 1}
}

func (r *fakeWalletRepo) FindByUserID(ctx context.Context, userID int) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Credit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		wallet = &domain.Wallet{ID: r.nextID, UserID: userID}
		r.nextID++
		r.wallets[userID] = wallet
	}
	wallet.Balance += amount
	return r.appendTx(wallet.ID, domain.TxCredit, amount, reason, bookingID), nil
}

func (r *fakeWalletRepo) Debit(ctx context.Context, userID int, amount float64, reason string, bookingID *int) (*domain.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if wallet.Balance < amount {
		return nil, repository.ErrInsufficientFunds
	}
	wallet.Balance -= amount
	return r.appendTx(wallet.ID, domain.TxDebit, amount, reason, bookingID), nil
}

func (r *fakeWalletRepo) appendTx(walletID int, txType domain.TransactionType, amount float64, reason string, bookingID *int) *domain.WalletTransaction {
	tx := domain.WalletTransaction{
		ID: r.nextTx, WalletID: walletID, Type: txType, Amount: amount, Reason: reason,
	}
	if bookingID != nil {
		tx.BookingID = null.IntFrom(int64(*bookingID))
	}
	r.nextTx++
	r.txs = append(r.txs, tx)
	return &tx
}

func (r *fakeWalletRepo) Transactions(ctx context.Context, walletID int, limit, offset int) ([]domain.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WalletTransaction
	for _, tx := range r.txs {
		if tx.WalletID == walletID {
			out = append(out, tx)
		}
	}
	if offset >= len(out) {
		return []domain.WalletTransaction{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeWalletRepo) balanceOf(userID int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[userID]
	if !ok {
		return 0
	}
	return wallet.Balance
}
