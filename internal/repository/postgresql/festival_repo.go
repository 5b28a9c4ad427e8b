package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
)

type pgFestivalRepository struct {
	db *sql.DB
}

func NewPgFestivalRepository(db *sql.DB) repository.FestivalRepository {
	return &pgFestivalRepository{db: db}
}

func (r *pgFestivalRepository) Create(ctx context.Context, festival *domain.Festival) (*domain.Festival, error) {
	query := `INSERT INTO festivals (name, start_date, end_date, multiplier, created_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		festival.Name, festival.StartDate, festival.EndDate, festival.Multiplier,
	).Scan(&festival.ID, &festival.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("FestivalRepository.Create: %w", err)
	}
	festival.CreatedAt = festival.CreatedAt.In(time.UTC)
	return festival, nil
}

func (r *pgFestivalRepository) FindAll(ctx context.Context) ([]domain.Festival, error) {
	query := `SELECT id, name, start_date, end_date, multiplier, created_at FROM festivals ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("FestivalRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var festivals []domain.Festival
	for rows.Next() {
		var f domain.Festival
		if err := rows.Scan(&f.ID, &f.Name, &f.StartDate, &f.EndDate, &f.Multiplier, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("FestivalRepository.FindAll (scanning row): %w", err)
		}
		f.StartDate = f.StartDate.In(time.UTC)
		f.EndDate = f.EndDate.In(time.UTC)
		festivals = append(festivals, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("FestivalRepository.FindAll (rows error): %w", err)
	}
	return festivals, nil
}

func (r *pgFestivalRepository) FindActiveOn(ctx context.Context, t time.Time) (*domain.Festival, error) {
	// Festival được giả định không chồng nhau; lấy bản ghi đầu tiên khớp.
	query := `SELECT id, name, start_date, end_date, multiplier, created_at
	           FROM festivals
	           WHERE start_date <= $1 AND end_date >= $1
	           ORDER BY start_date LIMIT 1`
	f := &domain.Festival{}
	err := r.db.QueryRowContext(ctx, query, t).Scan(
		&f.ID, &f.Name, &f.StartDate, &f.EndDate, &f.Multiplier, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("FestivalRepository.FindActiveOn: %w", err)
	}
	f.StartDate = f.StartDate.In(time.UTC)
	f.EndDate = f.EndDate.In(time.UTC)
	return f, nil
}

func (r *pgFestivalRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM festivals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("FestivalRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("FestivalRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
