package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

const bookingColumns = `id, code, user_id, lot_id, spot_id, vehicle_id, start_time, end_time, status,
	amount_paid, extra_amount_paid, payment_status, checked_in_at, checked_out_at, actual_end_time,
	created_at, updated_at`

type pgBookingRepository struct {
	db *sql.DB
}

func NewPgBookingRepository(db *sql.DB) repository.BookingRepository {
	return &pgBookingRepository{db: db}
}

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.Code, &b.UserID, &b.LotID, &b.SpotID, &b.VehicleID,
		&b.StartTime, &b.EndTime, &b.Status,
		&b.AmountPaid, &b.ExtraAmountPaid, &b.PaymentStatus,
		&b.CheckedInAt, &b.CheckedOutAt, &b.ActualEndTime,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.StartTime = b.StartTime.In(time.UTC)
	b.EndTime = b.EndTime.In(time.UTC)
	if b.CheckedInAt.Valid {
		b.CheckedInAt.Time = b.CheckedInAt.Time.In(time.UTC)
	}
	if b.CheckedOutAt.Valid {
		b.CheckedOutAt.Time = b.CheckedOutAt.Time.In(time.UTC)
	}
	if b.ActualEndTime.Valid {
		b.ActualEndTime.Time = b.ActualEndTime.Time.In(time.UTC)
	}
	b.CreatedAt = b.CreatedAt.In(time.UTC)
	b.UpdatedAt = b.UpdatedAt.In(time.UTC)
	return b, nil
}

func (r *pgBookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	query := `INSERT INTO bookings
	           (code, user_id, lot_id, spot_id, vehicle_id, start_time, end_time, status,
	            amount_paid, extra_amount_paid, payment_status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		booking.Code, booking.UserID, booking.LotID, booking.SpotID, booking.VehicleID,
		booking.StartTime, booking.EndTime, booking.Status,
		booking.AmountPaid, booking.ExtraAmountPaid, booking.PaymentStatus,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.Create: %w", err)
	}
	booking.CreatedAt = booking.CreatedAt.In(time.UTC)
	booking.UpdatedAt = booking.UpdatedAt.In(time.UTC)
	return booking, nil
}

func (r *pgBookingRepository) FindByID(ctx context.Context, id int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("BookingRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBookingRepository) Find(ctx context.Context, filter domain.BookingFilterDTO) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var conditions []string
	var args []any
	argID := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
		args = append(args, *filter.UserID)
		argID++
	}
	if filter.LotID != nil {
		conditions = append(conditions, fmt.Sprintf("lot_id = $%d", argID))
		args = append(args, *filter.LotID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.Find: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("BookingRepository.Find (scanning row): %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("BookingRepository.Find (rows error): %w", err)
	}
	return bookings, nil
}

func (r *pgBookingRepository) FindOverdueActive(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE status = $1 AND end_time < $2 ORDER BY end_time`
	rows, err := r.db.QueryContext(ctx, query, domain.BookingActive, now)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.FindOverdueActive: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("BookingRepository.FindOverdueActive (scanning row): %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("BookingRepository.FindOverdueActive (rows error): %w", err)
	}
	return bookings, nil
}

// conditionalUpdate chạy một UPDATE có điều kiện trên status và báo lại có claim
// được hay không qua RowsAffected.
func (r *pgBookingRepository) conditionalUpdate(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *pgBookingRepository) MarkActive(ctx context.Context, id int, checkedInAt time.Time) (bool, error) {
	query := `UPDATE bookings
	           SET status = $2, checked_in_at = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status = $4`
	ok, err := r.conditionalUpdate(ctx, query, id, domain.BookingActive, checkedInAt, domain.BookingConfirmed)
	if err != nil {
		return false, fmt.Errorf("BookingRepository.MarkActive: %w", err)
	}
	return ok, nil
}

func (r *pgBookingRepository) CompleteIfActive(ctx context.Context, id int, at time.Time) (bool, error) {
	query := `UPDATE bookings
	           SET status = $2, checked_out_at = $3, actual_end_time = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status = $4`
	ok, err := r.conditionalUpdate(ctx, query, id, domain.BookingCompleted, at, domain.BookingActive)
	if err != nil {
		return false, fmt.Errorf("BookingRepository.CompleteIfActive: %w", err)
	}
	return ok, nil
}

func (r *pgBookingRepository) CancelIfOpen(ctx context.Context, id int) (bool, error) {
	query := `UPDATE bookings
	           SET status = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status IN ($3, $4)`
	ok, err := r.conditionalUpdate(ctx, query, id, domain.BookingCancelled, domain.BookingConfirmed, domain.BookingActive)
	if err != nil {
		return false, fmt.Errorf("BookingRepository.CancelIfOpen: %w", err)
	}
	return ok, nil
}

func (r *pgBookingRepository) ExtendIfEndMatches(ctx context.Context, id int, oldEnd, newEnd time.Time, extraAmount float64) (bool, error) {
	query := `UPDATE bookings
	           SET end_time = $2, extra_amount_paid = extra_amount_paid + $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND end_time = $4 AND status IN ($5, $6)`
	ok, err := r.conditionalUpdate(ctx, query, id, newEnd, extraAmount, oldEnd, domain.BookingConfirmed, domain.BookingActive)
	if err != nil {
		return false, fmt.Errorf("BookingRepository.ExtendIfEndMatches: %w", err)
	}
	return ok, nil
}

func (r *pgBookingRepository) AddExtraAmount(ctx context.Context, id int, amount float64) error {
	query := `UPDATE bookings
	           SET extra_amount_paid = extra_amount_paid + $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("BookingRepository.AddExtraAmount: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("BookingRepository.AddExtraAmount (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgBookingRepository) SetPaymentStatus(ctx context.Context, id int, status string) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("BookingRepository.SetPaymentStatus: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("BookingRepository.SetPaymentStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
