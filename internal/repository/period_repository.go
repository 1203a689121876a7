package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/walideltayeh/school-booking-api/internal/models"
)

// PeriodRepository manages the period reference data.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns all periods ordered by their number.
func (r *PeriodRepository) List(ctx context.Context) ([]models.Period, error) {
	const query = `SELECT id, period_number, start_time, end_time, created_at FROM periods ORDER BY period_number ASC`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByNumber resolves the human-facing period number to its record.
// Callers map sql.ErrNoRows to a configuration error.
func (r *PeriodRepository) FindByNumber(ctx context.Context, number int) (*models.Period, error) {
	const query = `SELECT id, period_number, start_time, end_time, created_at FROM periods WHERE period_number = $1`
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, number); err != nil {
		return nil, err
	}
	return &period, nil
}

// Create stores a new period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO periods (id, period_number, start_time, end_time, created_at) VALUES (:id, :period_number, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}
