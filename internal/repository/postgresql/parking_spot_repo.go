package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"

	"github.com/lib/pq"
)

const spotColumns = `id, lot_id, label, is_ev, status, held_by, hold_expires_at, created_at, updated_at`

type pgParkingSpotRepository struct {
	db *sql.DB
}

func NewPgParkingSpotRepository(db *sql.DB) repository.ParkingSpotRepository {
	return &pgParkingSpotRepository{db: db}
}

func scanSpot(row interface{ Scan(...any) error }) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	err := row.Scan(
		&spot.ID, &spot.LotID, &spot.Label, &spot.IsEV, &spot.Status,
		&spot.HeldBy, &spot.HoldExpiresAt, &spot.CreatedAt, &spot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if spot.HoldExpiresAt.Valid {
		spot.HoldExpiresAt.Time = spot.HoldExpiresAt.Time.In(time.UTC)
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	query := `INSERT INTO parking_spots (lot_id, label, is_ev, status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		spot.LotID, spot.Label, spot.IsEV, spot.Status,
	).Scan(&spot.ID, &spot.CreatedAt, &spot.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: chỗ đỗ '%s' đã tồn tại trong bãi %d", repository.ErrDuplicateEntry, spot.Label, spot.LotID)
		}
		return nil, fmt.Errorf("ParkingSpotRepository.Create: %w", err)
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE id = $1`
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindByID: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error) {
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE lot_id = $1 ORDER BY label`
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID: %w", err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID (scanning row): %w", err)
		}
		spots = append(spots, *spot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID (rows error): %w", err)
	}
	return spots, nil
}

// HoldIfAvailable là primitive chống double-booking: toàn bộ điều kiện nằm trong
// WHERE của một câu UPDATE duy nhất, nên với N request đồng thời chỉ đúng một
// request thấy RowsAffected = 1. Hold hết hạn được thu hồi ngay tại đây (lazy).
func (r *pgParkingSpotRepository) HoldIfAvailable(ctx context.Context, id int, userID int, expiresAt time.Time, now time.Time) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET status = $2, held_by = $3, hold_expires_at = $4, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1
	             AND (status = $5 OR (status = $2 AND hold_expires_at < $6))
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query,
		id, domain.SpotHeld, userID, expiresAt, domain.SpotAvailable, now,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Thua cuộc đua hoặc chỗ occupied/closed — caller tự quyết định chọn chỗ khác.
			return nil, repository.ErrSpotNotAcquired
		}
		return nil, fmt.Errorf("ParkingSpotRepository.HoldIfAvailable: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) OccupyHeld(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET status = $2, held_by = NULL, hold_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status = $3
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, id, domain.SpotOccupied, domain.SpotHeld))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSpotNotAcquired
		}
		return nil, fmt.Errorf("ParkingSpotRepository.OccupyHeld: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) Release(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET status = $2, held_by = NULL, hold_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status IN ($3, $4)
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query,
		id, domain.SpotAvailable, domain.SpotOccupied, domain.SpotHeld,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.Release: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) CloseSpot(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	// Không cho đóng chỗ đang occupied.
	query := `UPDATE parking_spots
	           SET status = $2, held_by = NULL, hold_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status IN ($3, $4)
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query,
		id, domain.SpotClosed, domain.SpotAvailable, domain.SpotHeld,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSpotNotAcquired
		}
		return nil, fmt.Errorf("ParkingSpotRepository.CloseSpot: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) ReopenSpot(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET status = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 AND status = $3
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, id, domain.SpotAvailable, domain.SpotClosed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSpotNotAcquired
		}
		return nil, fmt.Errorf("ParkingSpotRepository.ReopenSpot: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) CountByStatus(ctx context.Context, lotID int) (*domain.LotAvailability, error) {
	query := `SELECT status, COUNT(*) FROM parking_spots WHERE lot_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.CountByStatus: %w", err)
	}
	defer rows.Close()

	avail := &domain.LotAvailability{LotID: lotID}
	for rows.Next() {
		var status domain.SpotStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("ParkingSpotRepository.CountByStatus (scanning row): %w", err)
		}
		switch status {
		case domain.SpotAvailable:
			avail.Available = count
		case domain.SpotHeld:
			avail.Held = count
		case domain.SpotOccupied:
			avail.Occupied = count
		case domain.SpotClosed:
			avail.Closed = count
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.CountByStatus (rows error): %w", err)
	}
	return avail, nil
}

func (r *pgParkingSpotRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
