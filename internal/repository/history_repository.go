package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// HistoryRepository reads prior assignments that a roster build needs to see
// for rest/consecutive-day validation, even though they fall before the week
// being built.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListSince returns every assignment dated on or after since, across every
// plan, ordered by date. Callers typically pass weekAnchor minus the
// configured history window.
func (r *HistoryRepository) ListSince(ctx context.Context, since time.Time) ([]models.Assignment, error) {
	const query = `SELECT id, plan_id, shift_id, date, period_id, role, worker_id, created_at
FROM assignments WHERE date >= $1 ORDER BY date ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, since); err != nil {
		return nil, fmt.Errorf("list history assignments: %w", err)
	}
	return assignments, nil
}
