package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// PeriodRepository reads the fixed catalog of daily service windows.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs the repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// ListAll returns every period in the catalog.
func (r *PeriodRepository) ListAll(ctx context.Context) ([]models.Period, error) {
	const query = `SELECT id, name, start_time, end_time FROM periods ORDER BY start_time`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByID fetches a period by ID.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	const query = `SELECT id, name, start_time, end_time FROM periods WHERE id = $1`
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}
