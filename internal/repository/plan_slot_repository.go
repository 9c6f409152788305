package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// PlanSlotRepository manages assignment rows and understaffed gap rows for a plan.
type PlanSlotRepository struct {
	db *sqlx.DB
}

// NewPlanSlotRepository constructs the repository.
func NewPlanSlotRepository(db *sqlx.DB) *PlanSlotRepository {
	return &PlanSlotRepository{db: db}
}

func (r *PlanSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertAssignments inserts or updates every assignment of a plan.
func (r *PlanSlotRepository) UpsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO assignments (id, plan_id, shift_id, date, period_id, role, worker_id, created_at)
VALUES (:id, :plan_id, :shift_id, :date, :period_id, :role, :worker_id, :created_at)
ON CONFLICT (plan_id, shift_id, worker_id) DO NOTHING`

	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, a); err != nil {
			return fmt.Errorf("upsert assignment: %w", err)
		}
	}
	return nil
}

// ListByPlan returns every assignment for a plan, ordered by date/period.
func (r *PlanSlotRepository) ListByPlan(ctx context.Context, planID string) ([]models.Assignment, error) {
	const query = `SELECT id, plan_id, shift_id, date, period_id, role, worker_id, created_at
FROM assignments WHERE plan_id = $1 ORDER BY date ASC, period_id ASC, role ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, planID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// UpsertUnderstaffed inserts or updates every understaffed gap of a plan.
func (r *PlanSlotRepository) UpsertUnderstaffed(ctx context.Context, exec sqlx.ExtContext, gaps []models.UnderstaffedEntry) error {
	if len(gaps) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO understaffed_entries (id, plan_id, shift_id, role, date, period_id, required, assigned)
VALUES (:id, :plan_id, :shift_id, :role, :date, :period_id, :required, :assigned)
ON CONFLICT (plan_id, shift_id) DO UPDATE
SET required = EXCLUDED.required, assigned = EXCLUDED.assigned`

	for i := range gaps {
		g := &gaps[i]
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, g); err != nil {
			return fmt.Errorf("upsert understaffed entry: %w", err)
		}
	}
	return nil
}

// ListUnderstaffedByPlan returns every understaffed gap recorded for a plan.
func (r *PlanSlotRepository) ListUnderstaffedByPlan(ctx context.Context, planID string) ([]models.UnderstaffedEntry, error) {
	const query = `SELECT id, plan_id, shift_id, role, date, period_id, required, assigned
FROM understaffed_entries WHERE plan_id = $1 ORDER BY date ASC, period_id ASC, role ASC`
	var gaps []models.UnderstaffedEntry
	if err := r.db.SelectContext(ctx, &gaps, query, planID); err != nil {
		return nil, fmt.Errorf("list understaffed entries: %w", err)
	}
	return gaps, nil
}
