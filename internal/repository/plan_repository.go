package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/shiftloom/roster-api/internal/models"
)

// PlanRepository persists versioned weekly rosters.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs the repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan, assigning the next version for its week anchor.
func (r *PlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.Plan) error {
	if plan == nil {
		return fmt.Errorf("plan payload is nil")
	}
	if plan.WeekAnchor.IsZero() {
		return fmt.Errorf("week_anchor is required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusDraft
	}
	if len(plan.Meta) == 0 {
		plan.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM plans WHERE week_anchor = $1`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.WeekAnchor); err != nil {
		return fmt.Errorf("compute next plan version: %w", err)
	}

	const insertQuery = `
INSERT INTO plans (id, week_anchor, version, status, meta, created_by, created_at, updated_at)
VALUES (:id, :week_anchor, :version, :status, :meta, :created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// ListByWeekRange returns plan summaries whose week anchor falls within [from, to].
func (r *PlanRepository) ListByWeekRange(ctx context.Context, from, to time.Time) ([]models.PlanSummary, error) {
	const query = `SELECT id, week_anchor, version, status, created_at FROM plans
WHERE week_anchor BETWEEN $1 AND $2 ORDER BY week_anchor DESC, version DESC`
	var plans []models.PlanSummary
	if err := r.db.SelectContext(ctx, &plans, query, from, to); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a plan by its identifier.
func (r *PlanRepository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	const query = `SELECT id, week_anchor, version, status, meta, created_by, created_at, updated_at FROM plans WHERE id = $1`
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete removes a stored plan version.
func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM plans WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus transitions a plan's lifecycle status.
func (r *PlanRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.PlanStatus) error {
	target := r.exec(exec)
	const query = `UPDATE plans SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := target.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update plan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("plan status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
